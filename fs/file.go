package fs

import (
	"io"
	"io/fs"
)

// File is an open handle returned by a Filesystem.
// The hasher only reads through it (streamed, constant memory); the copy
// helpers and archivers write through it.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.Seeker

	// Name returns the name the file was opened with.
	Name() string

	// Stat returns the FileInfo of the open file.
	Stat() (fs.FileInfo, error)
}
