// Package fhtypes provides the shared type definitions for folder-hash:
// the hash tree, walker events, change records and configuration values.
package fhtypes

import (
	"path"
	"strings"
)

// FileEntry is one file recorded in a TreeNode.
type FileEntry struct {
	Name string `json:"name" yaml:"name"`
	Hash string `json:"hash" yaml:"hash"`
}

// TreeNode represents one directory at a point in time.
//
// Hash is a pure function of the hashes of Dirs followed by Files, in stored
// order. It is empty when the node has neither. Nodes returned by the hash
// engine must be treated as immutable; use Clone before editing one.
type TreeNode struct {
	// Name is empty for the traversal root.
	Name string `json:"name" yaml:"name"`

	// Path is root-relative and slash separated; the root is "/".
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Dirs  []*TreeNode `json:"dirs,omitempty" yaml:"dirs,omitempty"`
	Files []FileEntry `json:"files,omitempty" yaml:"files,omitempty"`
	Hash  string      `json:"hash" yaml:"hash"`
}

// IsEmpty reports whether the node has neither subdirectories nor files.
func (n *TreeNode) IsEmpty() bool {
	return n == nil || (len(n.Dirs) == 0 && len(n.Files) == 0)
}

// Walk visits n and then every descendant in pre-order, directories in stored
// order. Returning an error from fn stops the walk and returns that error.
func (n *TreeNode) Walk(fn func(*TreeNode) error) error {
	if n == nil {
		return nil
	}
	if err := fn(n); err != nil {
		return err
	}
	for _, d := range n.Dirs {
		if err := d.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the descendant directory at the root-relative path p
// ("/", "/a/b" or "a/b"), or nil when there is none. Names compare
// case-insensitively.
func (n *TreeNode) Find(p string) *TreeNode {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return n
	}

	cur := n
	for _, part := range strings.Split(p, "/") {
		cur = cur.Dir(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Dir returns the immediate subdirectory called name (case-insensitive).
func (n *TreeNode) Dir(name string) *TreeNode {
	if n == nil {
		return nil
	}
	for _, d := range n.Dirs {
		if strings.EqualFold(d.Name, name) {
			return d
		}
	}
	return nil
}

// File returns the file entry called name (case-insensitive).
func (n *TreeNode) File(name string) (FileEntry, bool) {
	if n == nil {
		return FileEntry{}, false
	}
	for _, f := range n.Files {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FileEntry{}, false
}

// Clone returns a deep copy of n.
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	c := &TreeNode{Name: n.Name, Path: n.Path, Hash: n.Hash}
	if n.Dirs != nil {
		c.Dirs = make([]*TreeNode, len(n.Dirs))
		for i, d := range n.Dirs {
			c.Dirs[i] = d.Clone()
		}
	}
	if n.Files != nil {
		c.Files = append([]FileEntry(nil), n.Files...)
	}
	return c
}

// Counts returns the number of directories (excluding n) and files in the subtree.
func (n *TreeNode) Counts() (dirs, files int) {
	_ = n.Walk(func(t *TreeNode) error {
		dirs += len(t.Dirs)
		files += len(t.Files)
		return nil
	})
	return dirs, files
}
