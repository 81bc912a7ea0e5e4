// Package core holds filesystem-agnostic helpers built on fs.Filesystem.
package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/puyacodes/folder-hash/fs"
)

const defaultDirPerm os.FileMode = 0o755

// CopyFile copies the regular file src on srcFS to dst on dstFS, streaming the
// content. dst is created or truncated; its parent directory is created first.
// The source permission bits are carried over.
func CopyFile(srcFS fs.Filesystem, src string, dstFS fs.Filesystem, dst string) error {
	info, err := srcFS.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source %q: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("copy %q: source is a directory", src)
	}

	if err := dstFS.MkdirAll(filepath.Dir(dst), defaultDirPerm); err != nil {
		return fmt.Errorf("create parent of %q: %w", dst, err)
	}

	in, err := srcFS.Open(src)
	if err != nil {
		return fmt.Errorf("open source %q: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := dstFS.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("open destination %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination %q: %w", dst, err)
	}
	return nil
}

// CopyDir recursively copies the directory src into dst, creating dst when
// missing. Existing files under dst are overwritten; files present only in dst
// are left alone. Symbolic links are followed.
func CopyDir(srcFS fs.Filesystem, src string, dstFS fs.Filesystem, dst string) error {
	entries, err := readDirFollow(srcFS, src)
	if err != nil {
		return err
	}

	if err := dstFS.MkdirAll(dst, defaultDirPerm); err != nil {
		return fmt.Errorf("create directory %q: %w", dst, err)
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcFS, from, dstFS, to); err != nil {
				return err
			}
			continue
		}
		if !entry.Mode().IsRegular() {
			continue
		}
		if err := CopyFile(srcFS, from, dstFS, to); err != nil {
			return err
		}
	}
	return nil
}

// CopyFiles copies the regular files directly inside src into dst without
// descending into subdirectories. dst is created when missing.
// It returns the number of files copied.
func CopyFiles(srcFS fs.Filesystem, src string, dstFS fs.Filesystem, dst string) (int, error) {
	entries, err := readDirFollow(srcFS, src)
	if err != nil {
		return 0, err
	}

	if err := dstFS.MkdirAll(dst, defaultDirPerm); err != nil {
		return 0, fmt.Errorf("create directory %q: %w", dst, err)
	}

	copied := 0
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if err := CopyFile(srcFS, filepath.Join(src, entry.Name()), dstFS, filepath.Join(dst, entry.Name())); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// readDirFollow lists dir, resolving symbolic links so callers see the
// target's type rather than the link's.
func readDirFollow(fsys fs.Filesystem, dir string) ([]os.FileInfo, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	for i, entry := range entries {
		if entry.Mode()&os.ModeSymlink == 0 {
			continue
		}
		target, err := fsys.Stat(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("resolve link %q: %w", filepath.Join(dir, entry.Name()), err)
		}
		entries[i] = target
	}
	return entries, nil
}
