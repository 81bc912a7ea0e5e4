// Package hasher computes Merkle fingerprints of directory trees.
//
// A file's fingerprint is the hex digest of its bytes, streamed in constant
// memory. A directory's fingerprint is the hex digest of its children's
// fingerprints concatenated, subdirectories first and then files, in stored
// order. A directory with neither fingerprints to the empty string.
package hasher

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
	"github.com/puyacodes/folder-hash/internal/walker"
)

// Hasher walks and fingerprints directory trees.
type Hasher struct {
	filesystem  fs.Filesystem
	walker      *walker.Walker
	newHash     func() hash.Hash
	concurrency int
	logger      *slog.Logger
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithHashFunc sets the digest used for files and directories. Defaults to MD5.
func WithHashFunc(fn func() hash.Hash) Option {
	return func(h *Hasher) {
		if fn != nil {
			h.newHash = fn
		}
	}
}

// WithConcurrency bounds how many files of one directory are hashed at once.
// Values below 2 keep hashing strictly sequential.
func WithConcurrency(n int) Option {
	return func(h *Hasher) {
		h.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hasher) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a Hasher that reads files from filesystem and discovers them with w.
func New(filesystem fs.Filesystem, w *walker.Walker, opts ...Option) *Hasher {
	h := &Hasher{
		filesystem:  filesystem,
		walker:      w,
		newHash:     md5.New,
		concurrency: 1,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash walks root and returns its fully fingerprinted tree. Every walker event
// is passed to progress first, if set; its result is ignored.
func (h *Hasher) Hash(ctx context.Context, root string, progress fhtypes.ProgressFunc) (*fhtypes.TreeNode, error) {
	start := time.Now()

	raw, err := h.walker.Navigate(ctx, root, func(ev fhtypes.Event) fhtypes.VisitResult {
		if progress != nil {
			progress(ev)
		}
		return fhtypes.Continue()
	})
	if err != nil {
		return nil, err
	}

	tree, err := h.Annotate(ctx, root, raw)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("hash complete",
		"root", root,
		"hash", tree.Hash,
		"duration", time.Since(start))

	return tree, nil
}

// Annotate returns a copy of the raw tree walked from root with every hash
// filled in. raw itself is not modified.
func (h *Hasher) Annotate(ctx context.Context, root string, raw *fhtypes.TreeNode) (*fhtypes.TreeNode, error) {
	return h.hashNode(ctx, raw, filepath.Clean(root))
}

func (h *Hasher) hashNode(ctx context.Context, raw *fhtypes.TreeNode, dir string) (*fhtypes.TreeNode, error) {
	node := &fhtypes.TreeNode{Name: raw.Name, Path: raw.Path}

	for _, d := range raw.Dirs {
		child, err := h.hashNode(ctx, d, filepath.Join(dir, d.Name))
		if err != nil {
			return nil, err
		}
		node.Dirs = append(node.Dirs, child)
	}

	if len(raw.Files) > 0 {
		hashes, err := h.hashFiles(ctx, dir, raw.Files)
		if err != nil {
			return nil, err
		}
		node.Files = make([]fhtypes.FileEntry, len(raw.Files))
		for i, f := range raw.Files {
			node.Files[i] = fhtypes.FileEntry{Name: f.Name, Hash: hashes[i]}
		}
	}

	node.Hash = h.combine(node)
	return node, nil
}

// hashFiles returns the hashes of files in the same order as files.
func (h *Hasher) hashFiles(ctx context.Context, dir string, files []fhtypes.FileEntry) ([]string, error) {
	hashes := make([]string, len(files))

	if h.concurrency < 2 || len(files) < 2 {
		for i, f := range files {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			sum, err := h.HashFile(filepath.Join(dir, f.Name))
			if err != nil {
				return nil, err
			}
			hashes[i] = sum
		}
		return hashes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, err := h.HashFile(filepath.Join(dir, f.Name))
			if err != nil {
				return err
			}
			hashes[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hashes, nil
}

// HashFile returns the hex digest of the file at p, streaming its content.
func (h *Hasher) HashFile(p string) (string, error) {
	f, err := h.filesystem.Open(p)
	if err != nil {
		return "", fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to open file",
			map[string]interface{}{"op": "hash", "path": p})
	}
	defer func() { _ = f.Close() }()

	sum := h.newHash()
	if _, err := io.Copy(sum, f); err != nil {
		return "", fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to hash file",
			map[string]interface{}{"op": "hash", "path": p})
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// combine computes a directory hash from its children's hashes.
func (h *Hasher) combine(node *fhtypes.TreeNode) string {
	if node.IsEmpty() {
		return ""
	}
	sum := h.newHash()
	for _, d := range node.Dirs {
		_, _ = io.WriteString(sum, d.Hash)
	}
	for _, f := range node.Files {
		_, _ = io.WriteString(sum, f.Hash)
	}
	return hex.EncodeToString(sum.Sum(nil))
}

