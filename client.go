package folderhash

import (
	"context"
	"crypto/md5"
	"io"
	"log/slog"
	"time"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
	"github.com/puyacodes/folder-hash/fs/billy"
	"github.com/puyacodes/folder-hash/internal/applier"
	"github.com/puyacodes/folder-hash/internal/differ"
	"github.com/puyacodes/folder-hash/internal/hasher"
	"github.com/puyacodes/folder-hash/internal/metrics"
	"github.com/puyacodes/folder-hash/internal/snapshot"
	"github.com/puyacodes/folder-hash/internal/walker"
)

// Client fingerprints, compares and synchronizes directory trees.
// A Client holds no per-call state and is safe for concurrent use.
type Client struct {
	// fs is the filesystem every path is resolved on
	fs fs.Filesystem

	logger     *slog.Logger
	stagingDir string

	hasher  *hasher.Hasher
	differ  *differ.Differ
	applier *applier.Applier

	// metrics is nil unless WithMetrics was given
	metrics *metrics.Metrics
}

// New creates a Client with the provided options.
//
// Without options the client walks the host filesystem with the built-in
// exclusion lists, sorts entries by name and fingerprints with MD5.
//
// Example:
//
//	client, err := folderhash.New(
//	    folderhash.WithExcludeDirs(",dist"),
//	    folderhash.WithLogger(logger),
//	)
func New(opts ...fhtypes.Option) (*Client, error) {
	cfg := &fhtypes.ClientConfig{
		Navigator:   fhtypes.DefaultNavigatorConfig(),
		HashFunc:    md5.New,
		Concurrency: 1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Err != nil {
		return nil, cfg.Err
	}

	if cfg.Filesystem == nil {
		// Default to the host filesystem so relative paths behave like a shell
		cfg.Filesystem = billy.NewBaseOSFS()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.StagingDir != "" {
		ok, err := fs.IsDir(cfg.Filesystem, cfg.StagingDir)
		if err != nil {
			return nil, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to stat staging directory",
				map[string]interface{}{"path": cfg.StagingDir})
		}
		if !ok {
			return nil, fherrors.NewWithContext(fherrors.CodeNotFound, "staging directory not found",
				map[string]interface{}{"path": cfg.StagingDir})
		}
	}

	var m *metrics.Metrics
	if cfg.Registerer != nil {
		var err error
		if m, err = metrics.New(cfg.Registerer); err != nil {
			return nil, fherrors.Wrap(err, fherrors.CodeInvalidInput, "failed to register metrics")
		}
	}

	w := walker.New(cfg.Filesystem, cfg.Navigator, cfg.Logger)

	return &Client{
		fs:         cfg.Filesystem,
		logger:     cfg.Logger,
		stagingDir: cfg.StagingDir,
		hasher: hasher.New(cfg.Filesystem, w,
			hasher.WithHashFunc(cfg.HashFunc),
			hasher.WithConcurrency(cfg.Concurrency),
			hasher.WithLogger(cfg.Logger),
		),
		differ:  differ.New(cfg.Logger),
		applier: applier.New(cfg.Filesystem, cfg.Logger),
		metrics: m,
	}, nil
}

// Hash walks dir and returns its hash tree.
//
// The same directory content always yields the same root hash, regardless of
// timestamps, permissions or the concurrency setting.
//
// Errors:
//   - CodeNotFound if dir does not exist or is not a directory
//   - CodeIOFailure if a file cannot be read
func (c *Client) Hash(ctx context.Context, dir string, opts ...fhtypes.HashOption) (*fhtypes.TreeNode, error) {
	cfg := &fhtypes.HashOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	tree, err := c.hasher.Hash(ctx, dir, cfg.Progress)
	c.metrics.Observe(metrics.OpHash, start, err)
	c.metrics.Hashed(tree)
	return tree, err
}

// Diff returns the ordered change records that bring to in line with from.
//
// Both sides may be live directories, snapshot files or in-memory trees.
// Entries that only exist in to are never reported, and subtrees with equal
// hashes are skipped without being compared further.
//
// Errors:
//   - CodeNotFound if a source path does not exist
//   - CodeInvalidSnapshot if a snapshot file cannot be parsed
//   - CodeMissingTargetPath if to is an in-memory tree and no WithToAnchor is given
func (c *Client) Diff(ctx context.Context, from, to Source, opts ...fhtypes.DiffOption) ([]fhtypes.ChangeRecord, error) {
	cfg := &fhtypes.DiffOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	changes, _, err := c.diff(ctx, from, to, cfg)
	c.metrics.Observe(metrics.OpDiff, start, err)
	return changes, err
}

func (c *Client) diff(
	ctx context.Context,
	from, to Source,
	cfg *fhtypes.DiffOptionConfig,
) ([]fhtypes.ChangeRecord, string, error) {
	start := time.Now()

	toAnchor := cfg.ToAnchor
	if toAnchor == "" && to.tree != nil {
		// Fail before hashing anything
		return nil, "", fherrors.New(fherrors.CodeMissingTargetPath, "target anchor required for an in-memory tree")
	}

	src, err := c.resolve(ctx, from, cfg.Progress)
	if err != nil {
		return nil, "", err
	}
	dst, err := c.resolve(ctx, to, cfg.Progress)
	if err != nil {
		return nil, "", err
	}

	fromAnchor := cfg.FromAnchor
	switch {
	case fromAnchor != "":
	case src.live:
		fromAnchor = src.anchor
	default:
		fromAnchor = "."
	}
	if toAnchor == "" {
		toAnchor = dst.anchor
	}

	changes, err := c.differ.Diff(ctx, src.tree, dst.tree, fromAnchor, toAnchor, cfg.OnChange)
	if err != nil {
		return nil, "", err
	}

	c.metrics.Found(changes)
	c.logger.Debug("sources compared",
		"from", from.String(),
		"to", to.String(),
		"changes", len(changes),
		"duration", time.Since(start))

	return changes, toAnchor, nil
}

// Apply diffs from against to and executes the resulting records, returning
// the records that completed.
//
// Execution is fail-fast and not transactional: on error the records applied
// so far are returned with it and their copies remain. Nothing is ever deleted
// from the target.
//
// With WithCompression the copies go to a temporary staging directory that is
// packaged into one archive and then removed; the target is left untouched.
// No archive is written when there is nothing to apply or the apply fails.
//
// Errors:
//   - CodeInvalidCompressionLevel if the level is outside 0-9, before any work
//   - CodeIOFailure if a copy or the archive fails
//   - any error Diff returns
func (c *Client) Apply(ctx context.Context, from, to Source, opts ...fhtypes.ApplyOption) ([]fhtypes.ChangeRecord, error) {
	cfg := &fhtypes.ApplyOptionConfig{
		Compression: fhtypes.CompressionConfig{Level: fhtypes.DefaultCompressionLevel},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	applied, err := c.apply(ctx, from, to, cfg)
	c.metrics.Observe(metrics.OpApply, start, err)
	c.metrics.Applied(applied)
	return applied, err
}

func (c *Client) apply(ctx context.Context, from, to Source, cfg *fhtypes.ApplyOptionConfig) ([]fhtypes.ChangeRecord, error) {
	if err := cfg.Compression.Validate(); err != nil {
		return nil, err
	}

	changes, toAnchor, err := c.diff(ctx, from, to, &cfg.DiffOptionConfig)
	if err != nil {
		return nil, err
	}

	return c.applier.Apply(ctx, changes, applier.Options{
		ToAnchor:      toAnchor,
		Compression:   cfg.Compression,
		StagingParent: c.stagingDir,
	})
}

// SaveSnapshot writes tree to path. Paths ending in .yaml or .yml are written
// as YAML, anything else as JSON.
func (c *Client) SaveSnapshot(ctx context.Context, tree *fhtypes.TreeNode, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snapshot.Validate(tree); err != nil {
		return err
	}
	if err := snapshot.Save(c.fs, tree, path); err != nil {
		return err
	}
	c.logger.Debug("snapshot saved", "path", path, "hash", tree.Hash)
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
//
// Errors:
//   - CodeNotFound if path does not exist
//   - CodeInvalidSnapshot if the document cannot be parsed
func (c *Client) LoadSnapshot(ctx context.Context, path string) (*fhtypes.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot.Load(c.fs, path)
}
