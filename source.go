package folderhash

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/internal/snapshot"
)

// Source is one side of a diff or apply: a live directory, a snapshot
// document, or a hash tree already in memory.
type Source struct {
	path string
	tree *fhtypes.TreeNode
}

// FromPath returns a Source for a path. A directory is walked and hashed when
// the operation runs; a regular file is loaded as a snapshot.
func FromPath(p string) Source {
	return Source{path: p}
}

// FromTree returns a Source for a hash tree held in memory. Trees have no
// location of their own, so using one as the "to" side needs WithToAnchor.
func FromTree(tree *fhtypes.TreeNode) Source {
	return Source{tree: tree}
}

// String returns the path of the source, or "<tree>" for in-memory trees.
func (s Source) String() string {
	if s.tree != nil {
		return "<tree>"
	}
	return s.path
}

// resolved is a Source turned into a hash tree plus the location its records
// are rooted at. anchor is empty when no location can be derived; for a
// snapshot it is the directory holding the document.
type resolved struct {
	tree   *fhtypes.TreeNode
	anchor string
	live   bool
}

func (c *Client) resolve(ctx context.Context, s Source, progress fhtypes.ProgressFunc) (resolved, error) {
	if s.tree != nil {
		return resolved{tree: s.tree}, nil
	}
	if s.path == "" {
		return resolved{}, fherrors.New(fherrors.CodeInvalidInput, "source has neither a path nor a tree")
	}

	info, err := c.fs.Stat(s.path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return resolved{}, fherrors.WrapWithContext(err, fherrors.CodeNotFound, "source not found",
				map[string]interface{}{"path": s.path})
		}
		return resolved{}, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to stat source",
			map[string]interface{}{"path": s.path})
	}

	if info.IsDir() {
		tree, err := c.hasher.Hash(ctx, s.path, progress)
		if err != nil {
			return resolved{}, err
		}
		c.metrics.Hashed(tree)
		return resolved{tree: tree, anchor: s.path, live: true}, nil
	}

	tree, err := snapshot.Load(c.fs, s.path)
	if err != nil {
		return resolved{}, err
	}
	c.logger.Debug("snapshot loaded", "path", s.path, "hash", tree.Hash)
	return resolved{tree: tree, anchor: filepath.Dir(s.path)}, nil
}
