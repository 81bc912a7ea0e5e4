// Package fs defines the filesystem abstraction folder-hash walks, hashes and
// writes through. Implementations live in sub-packages (see fs/billy); using
// the interface instead of the os package lets every component run against an
// in-memory filesystem in tests.
package fs

import (
	"os"
	"path/filepath"
)

// Filesystem is the set of operations the walker, hasher, applier and archiver need.
// Paths are interpreted by the implementation; the OS-backed implementation
// accepts both absolute and working-directory-relative paths.
type Filesystem interface {
	Create(name string) (File, error)
	Exists(path string) (bool, error)
	Lstat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadDir(dirname string) ([]os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	TempDir(dir, prefix string) (name string, err error)
	Walk(root string, walkFn filepath.WalkFunc) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
