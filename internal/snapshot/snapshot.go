// Package snapshot persists hash trees so they can be diffed later without
// walking the filesystem again.
//
// Snapshots are JSON by default, indented with four spaces. Paths ending in
// ".yaml" or ".yml" are written and read as YAML instead.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const jsonIndent = "    "

// FormatFromPath picks the encoding for a snapshot file name.
func FormatFromPath(p string) Format {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode serializes tree in the given format.
func Encode(tree *fhtypes.TreeNode, format Format) ([]byte, error) {
	if tree == nil {
		return nil, fherrors.New(fherrors.CodeInvalidInput, "cannot encode a nil tree")
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return nil, fherrors.Wrap(err, fherrors.CodeInternal, "failed to encode yaml snapshot")
		}
		if err := enc.Close(); err != nil {
			return nil, fherrors.Wrap(err, fherrors.CodeInternal, "failed to encode yaml snapshot")
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(tree, "", jsonIndent)
		if err != nil {
			return nil, fherrors.Wrap(err, fherrors.CodeInternal, "failed to encode json snapshot")
		}
		return data, nil
	}
}

// Decode parses a snapshot document.
//
// Errors:
//   - CodeInvalidSnapshot if the document is malformed or structurally invalid
func Decode(data []byte, format Format) (*fhtypes.TreeNode, error) {
	var tree *fhtypes.TreeNode

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fherrors.Wrap(err, fherrors.CodeInvalidSnapshot, "failed to parse yaml snapshot")
		}
	default:
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fherrors.Wrap(err, fherrors.CodeInvalidSnapshot, "failed to parse json snapshot")
		}
	}

	if err := Validate(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Validate checks that tree is structurally usable for diffing.
func Validate(tree *fhtypes.TreeNode) error {
	if tree == nil {
		return fherrors.New(fherrors.CodeInvalidSnapshot, "snapshot has no root node")
	}
	return tree.Walk(func(n *fhtypes.TreeNode) error {
		for _, d := range n.Dirs {
			if d == nil || d.Name == "" {
				return fherrors.NewWithContext(fherrors.CodeInvalidSnapshot, "snapshot directory without a name",
					map[string]interface{}{"path": n.Path})
			}
		}
		for _, f := range n.Files {
			if f.Name == "" {
				return fherrors.NewWithContext(fherrors.CodeInvalidSnapshot, "snapshot file without a name",
					map[string]interface{}{"path": n.Path})
			}
		}
		return nil
	})
}

// Save writes tree to path on fsys, creating the parent directory.
func Save(fsys fs.Filesystem, tree *fhtypes.TreeNode, path string) error {
	data, err := Encode(tree, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to create snapshot directory",
			map[string]interface{}{"path": path})
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to write snapshot",
			map[string]interface{}{"path": path})
	}
	return nil
}

// Load reads the snapshot at path on fsys.
//
// Errors:
//   - CodeNotFound if path does not exist
//   - CodeInvalidSnapshot if the document cannot be parsed
//   - CodeIOFailure for other read failures
func Load(fsys fs.Filesystem, path string) (*fhtypes.TreeNode, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fherrors.WrapWithContext(err, fherrors.CodeNotFound, "snapshot not found",
				map[string]interface{}{"path": path})
		}
		return nil, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to read snapshot",
			map[string]interface{}{"path": path})
	}

	tree, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fherrors.WrapWithContext(err, fherrors.CodeInvalidSnapshot, "invalid snapshot",
			map[string]interface{}{"path": path})
	}
	return tree, nil
}
