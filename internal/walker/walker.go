// Package walker performs the depth-first directory traversal behind hashing.
//
// The walker lists one directory at a time, applies the navigator filter and
// ordering, and reports every entry and directory boundary to a visitor whose
// VisitResult decides what ends up in the returned tree. Traversal is strictly
// sequential: no two filesystem reads are in flight for one Navigate call.
package walker

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
)

// Walker traverses directory trees on a filesystem.
type Walker struct {
	filesystem fs.Filesystem
	filter     *Filter
	sort       bool
	logger     *slog.Logger
}

// New creates a walker over filesystem using cfg for filtering and ordering.
// A nil logger discards output.
func New(filesystem fs.Filesystem, cfg fhtypes.NavigatorConfig, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Walker{
		filesystem: filesystem,
		filter:     NewFilter(cfg),
		sort:       cfg.Sort,
		logger:     logger,
	}
}

// Navigate walks root and returns the tree of entries the filter and visitor
// kept. A nil visitor accepts everything.
//
// Errors:
//   - CodeNotFound if root does not exist or is not a directory
//   - CodeIOFailure if a directory cannot be listed or an entry cannot be stat'ed
//   - the context error if ctx is cancelled between entries
func (w *Walker) Navigate(ctx context.Context, root string, visit fhtypes.Visitor) (*fhtypes.TreeNode, error) {
	if visit == nil {
		visit = func(fhtypes.Event) fhtypes.VisitResult { return fhtypes.Continue() }
	}

	isDir, err := fs.IsDir(w.filesystem, root)
	if err != nil {
		return nil, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to stat walk root",
			map[string]interface{}{"path": root})
	}
	if !isDir {
		return nil, fherrors.NewWithContext(fherrors.CodeNotFound, "directory not found",
			map[string]interface{}{"path": root})
	}

	start := time.Now()
	node := &fhtypes.TreeNode{Path: "/"}
	if err := w.navigate(ctx, node, filepath.Clean(root), 0, visit); err != nil {
		return nil, err
	}

	dirs, files := node.Counts()
	w.logger.Debug("walk complete",
		"root", root,
		"dirs", dirs,
		"files", files,
		"duration", time.Since(start))

	return node, nil
}

func (w *Walker) navigate(ctx context.Context, node *fhtypes.TreeNode, dir string, level int, visit fhtypes.Visitor) error {
	r := visit(fhtypes.Event{
		Name:     node.Name,
		FullPath: dir,
		IsDir:    true,
		Level:    level,
		Kind:     fhtypes.FolderEntering,
		Node:     node,
	})
	annotateNode(node, r)

	entries, err := w.filesystem.ReadDir(dir)
	if err != nil {
		return fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to list directory",
			map[string]interface{}{"path": dir})
	}
	if w.sort {
		slices.SortFunc(entries, func(a, b os.FileInfo) int {
			return strings.Compare(a.Name(), b.Name())
		})
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := entry.Name()
		fullPath := filepath.Join(dir, name)

		// Stat rather than Lstat so symbolic links are followed.
		info, err := w.filesystem.Stat(fullPath)
		if err != nil {
			return fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to stat entry",
				map[string]interface{}{"path": fullPath})
		}

		ev := fhtypes.Event{
			Name:     name,
			FullPath: fullPath,
			IsDir:    info.IsDir(),
			Level:    level,
			Node:     node,
			Info:     info,
		}

		if info.IsDir() {
			if err := w.visitDir(ctx, node, ev, visit); err != nil {
				return err
			}
			continue
		}
		w.visitFile(node, ev, visit)
	}

	r = visit(fhtypes.Event{
		Name:     node.Name,
		FullPath: dir,
		IsDir:    true,
		Level:    level,
		Kind:     fhtypes.FolderLeft,
		Node:     node,
	})
	annotateNode(node, r)

	return nil
}

func (w *Walker) visitDir(ctx context.Context, node *fhtypes.TreeNode, ev fhtypes.Event, visit fhtypes.Visitor) error {
	relPath := path.Join(node.Path, ev.Name)

	if w.filter.ExcludeDir(ev.Name, relPath) {
		ev.Kind = fhtypes.FolderIgnored
		visit(ev)
		return nil
	}

	ev.Kind = fhtypes.SubFolderEntering
	if visit(ev).Action == fhtypes.ActionSkip {
		return nil
	}

	child := &fhtypes.TreeNode{Name: ev.Name, Path: relPath}
	if err := w.navigate(ctx, child, ev.FullPath, ev.Level+1, visit); err != nil {
		return err
	}
	node.Dirs = append(node.Dirs, child)
	return nil
}

func (w *Walker) visitFile(node *fhtypes.TreeNode, ev fhtypes.Event, visit fhtypes.Visitor) {
	// Devices, sockets and pipes have no content to fingerprint.
	if !ev.Info.Mode().IsRegular() || w.filter.ExcludeFile(ev.Name) {
		ev.Kind = fhtypes.FileIgnored
		visit(ev)
		return
	}

	ev.Kind = fhtypes.FileEntering
	r := visit(ev)

	entry := fhtypes.FileEntry{Name: ev.Name}
	switch r.Action {
	case fhtypes.ActionSkip:
		return
	case fhtypes.ActionReplace:
		entry = r.Entry
		if entry.Name == "" {
			entry.Name = ev.Name
		}
	case fhtypes.ActionAnnotate:
		if r.Annotation.Hash != "" {
			entry.Hash = r.Annotation.Hash
		}
	}
	node.Files = append(node.Files, entry)
}

func annotateNode(node *fhtypes.TreeNode, r fhtypes.VisitResult) {
	if r.Action == fhtypes.ActionAnnotate && r.Annotation.Hash != "" {
		node.Hash = r.Annotation.Hash
	}
}
