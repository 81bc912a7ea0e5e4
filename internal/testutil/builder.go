// Package testutil provides fixtures and recorders shared by folder-hash tests.
package testutil

import (
	"path"
	"sort"
	"testing"

	"github.com/puyacodes/folder-hash/fs"
)

// TreeBuilder provides a fluent interface for laying out directory fixtures.
type TreeBuilder struct {
	t     testing.TB
	fs    fs.Filesystem
	root  string
	files map[string]string
	dirs  []string
}

// NewTreeBuilder creates a builder writing below root on fsys.
func NewTreeBuilder(t testing.TB, fsys fs.Filesystem, root string) *TreeBuilder {
	t.Helper()
	return &TreeBuilder{t: t, fs: fsys, root: root, files: map[string]string{}}
}

// File adds a file at the root-relative slash path rel.
func (b *TreeBuilder) File(rel, content string) *TreeBuilder {
	b.files[rel] = content
	return b
}

// Files adds every rel → content pair.
func (b *TreeBuilder) Files(files map[string]string) *TreeBuilder {
	for rel, content := range files {
		b.files[rel] = content
	}
	return b
}

// Dir adds an (initially empty) directory.
func (b *TreeBuilder) Dir(rel string) *TreeBuilder {
	b.dirs = append(b.dirs, rel)
	return b
}

// Build writes the fixture and returns the root path.
func (b *TreeBuilder) Build() string {
	b.t.Helper()

	if err := b.fs.MkdirAll(b.root, 0o755); err != nil {
		b.t.Fatalf("create root %q: %v", b.root, err)
	}
	for _, d := range b.dirs {
		if err := b.fs.MkdirAll(path.Join(b.root, d), 0o755); err != nil {
			b.t.Fatalf("create dir %q: %v", d, err)
		}
	}

	rels := make([]string, 0, len(b.files))
	for rel := range b.files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		p := path.Join(b.root, rel)
		if err := b.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
			b.t.Fatalf("create parent of %q: %v", rel, err)
		}
		if err := b.fs.WriteFile(p, []byte(b.files[rel]), 0o644); err != nil {
			b.t.Fatalf("write %q: %v", rel, err)
		}
	}
	return b.root
}

// WriteTree lays out files below root and returns root.
func WriteTree(t testing.TB, fsys fs.Filesystem, root string, files map[string]string) string {
	t.Helper()
	return NewTreeBuilder(t, fsys, root).Files(files).Build()
}

// SampleTree writes the canonical fixture: x.txt="hello" and b/y.txt="world".
func SampleTree(t testing.TB, fsys fs.Filesystem, root string) string {
	t.Helper()
	return WriteTree(t, fsys, root, map[string]string{
		"x.txt":   "hello",
		"b/y.txt": "world",
	})
}
