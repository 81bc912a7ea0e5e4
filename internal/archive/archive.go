// Package archive packages a staged directory into a single compressed file.
package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
)

// Archiver writes the contents of a directory into one archive file.
type Archiver interface {
	// Archive packages everything below srcDir on srcFS into dst on dstFS and
	// returns the number of files written. srcDir itself is not part of the
	// entry names.
	Archive(ctx context.Context, srcFS fs.Filesystem, srcDir string, dstFS fs.Filesystem, dst string) (int, error)
}

// New returns an Archiver for format at compression level 0-9.
func New(format fhtypes.ArchiveFormat, level int) (Archiver, error) {
	if level < fhtypes.MinCompressionLevel || level > fhtypes.MaxCompressionLevel {
		return nil, fherrors.NewWithContext(fherrors.CodeInvalidCompressionLevel, "compression level out of range",
			map[string]interface{}{"level": level})
	}

	switch format {
	case fhtypes.FormatTarGz, "":
		return &tarArchiver{level: level, compress: gzipWriter}, nil
	case fhtypes.FormatTarZst:
		return &tarArchiver{level: level, compress: zstdWriter}, nil
	case fhtypes.FormatZip:
		return &zipArchiver{level: level}, nil
	default:
		return nil, fherrors.NewWithContext(fherrors.CodeInvalidInput, "unsupported archive format",
			map[string]interface{}{"format": string(format)})
	}
}

// entry is one item below the source directory.
type entry struct {
	rel  string
	path string
	info os.FileInfo
}

// collect lists srcDir recursively, sorted by entry name so archives are reproducible.
func collect(ctx context.Context, srcFS fs.Filesystem, srcDir string) ([]entry, error) {
	var entries []entry
	err := srcFS.Walk(srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return fmt.Errorf("relative path of %q: %w", p, err)
		}
		if rel == "." {
			return nil
		}
		entries = append(entries, entry{rel: filepath.ToSlash(rel), path: p, info: info})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	return entries, nil
}

// writeArchive creates dst and hands it to write. A partial file is removed on failure.
func writeArchive(dstFS fs.Filesystem, dst string, write func(io.Writer) (int, error)) (int, error) {
	if err := dstFS.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to create archive directory",
			map[string]interface{}{"path": dst})
	}

	out, err := dstFS.Create(dst)
	if err != nil {
		return 0, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to create archive",
			map[string]interface{}{"path": dst})
	}

	n, err := write(out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = dstFS.Remove(dst)
		return 0, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to write archive",
			map[string]interface{}{"path": dst})
	}
	return n, nil
}

func copyFrom(srcFS fs.Filesystem, p string, w io.Writer) error {
	f, err := srcFS.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

type tarArchiver struct {
	level    int
	compress func(io.Writer, int) (io.WriteCloser, error)
}

func gzipWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, level)
}

func zstdWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

func (a *tarArchiver) Archive(ctx context.Context, srcFS fs.Filesystem, srcDir string, dstFS fs.Filesystem, dst string) (int, error) {
	entries, err := collect(ctx, srcFS, srcDir)
	if err != nil {
		return 0, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to list staging directory",
			map[string]interface{}{"path": srcDir})
	}

	return writeArchive(dstFS, dst, func(out io.Writer) (int, error) {
		cw, err := a.compress(out, a.level)
		if err != nil {
			return 0, err
		}
		// Encoders hold goroutines and buffers until closed.
		closed := false
		defer func() {
			if !closed {
				_ = cw.Close()
			}
		}()
		tw := tar.NewWriter(cw)

		files := 0
		for _, e := range entries {
			hdr, err := tar.FileInfoHeader(e.info, "")
			if err != nil {
				return 0, err
			}
			hdr.Name = e.rel
			if e.info.IsDir() {
				hdr.Name += "/"
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return 0, err
			}
			if !e.info.Mode().IsRegular() {
				continue
			}
			if err := copyFrom(srcFS, e.path, tw); err != nil {
				return 0, err
			}
			files++
		}

		if err := tw.Close(); err != nil {
			return 0, err
		}
		closed = true
		if err := cw.Close(); err != nil {
			return 0, err
		}
		return files, nil
	})
}

type zipArchiver struct {
	level int
}

func (a *zipArchiver) Archive(ctx context.Context, srcFS fs.Filesystem, srcDir string, dstFS fs.Filesystem, dst string) (int, error) {
	entries, err := collect(ctx, srcFS, srcDir)
	if err != nil {
		return 0, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to list staging directory",
			map[string]interface{}{"path": srcDir})
	}

	method := zip.Deflate
	if a.level == 0 {
		method = zip.Store
	}

	return writeArchive(dstFS, dst, func(out io.Writer) (int, error) {
		zw := zip.NewWriter(out)
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, a.level)
		})

		files := 0
		for _, e := range entries {
			hdr, err := zip.FileInfoHeader(e.info)
			if err != nil {
				return 0, err
			}
			hdr.Name = e.rel
			if e.info.IsDir() {
				hdr.Name += "/"
				hdr.Method = zip.Store
				if _, err := zw.CreateHeader(hdr); err != nil {
					return 0, err
				}
				continue
			}
			if !e.info.Mode().IsRegular() {
				continue
			}
			hdr.Method = method
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				return 0, err
			}
			if err := copyFrom(srcFS, e.path, w); err != nil {
				return 0, err
			}
			files++
		}

		if err := zw.Close(); err != nil {
			return 0, err
		}
		return files, nil
	})
}
