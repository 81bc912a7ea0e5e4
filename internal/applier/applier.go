// Package applier executes change records by copying files and directories,
// optionally staging the copies and packaging them into one archive instead.
package applier

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
	"github.com/puyacodes/folder-hash/fs/core"
	"github.com/puyacodes/folder-hash/internal/archive"
)

const stagingPrefix = "folderhash-stage-"

// Options control a single Apply call.
type Options struct {
	// ToAnchor is the target root the records were diffed against. Staged
	// destinations are re-rooted relative to it.
	ToAnchor string

	Compression fhtypes.CompressionConfig

	// StagingParent is where the staging directory is created; empty means
	// the system temporary directory.
	StagingParent string
}

// Applier executes change records against a filesystem.
type Applier struct {
	filesystem fs.Filesystem
	logger     *slog.Logger
}

// New creates an Applier. A nil logger discards output.
func New(filesystem fs.Filesystem, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Applier{filesystem: filesystem, logger: logger}
}

// Apply executes changes in order and returns the records that completed.
//
// Execution is fail-fast and not transactional: the first failing record
// stops the run, earlier copies stay in place, and the completed records are
// returned together with the error.
//
// With compression enabled the level is validated before anything is
// touched, copies go to a fresh staging directory, an archive is written only
// if at least one record completed, and the staging directory is always
// removed.
//
// Errors:
//   - CodeInvalidCompressionLevel if the compression level is outside 0-9
//   - CodeIOFailure if a copy, the staging directory or the archive fails
func (a *Applier) Apply(ctx context.Context, changes []fhtypes.ChangeRecord, opts Options) ([]fhtypes.ChangeRecord, error) {
	if !opts.Compression.Enabled {
		return a.execute(ctx, changes, func(to string) (string, error) { return to, nil })
	}

	if err := opts.Compression.Validate(); err != nil {
		return nil, err
	}
	archiver, err := archive.New(opts.Compression.ResolvedFormat(), opts.Compression.Level)
	if err != nil {
		return nil, err
	}

	staging, err := a.filesystem.TempDir(opts.StagingParent, stagingPrefix)
	if err != nil {
		return nil, fherrors.Wrap(err, fherrors.CodeIOFailure, "failed to create staging directory")
	}
	a.logger.Info("staging directory created", "path", staging)
	defer func() {
		if rmErr := a.filesystem.RemoveAll(staging); rmErr != nil {
			a.logger.Warn("failed to remove staging directory", "path", staging, "error", rmErr)
		}
	}()

	applied, err := a.execute(ctx, changes, func(to string) (string, error) {
		return reroot(opts.ToAnchor, to, staging)
	})
	if err != nil {
		return applied, err
	}
	if len(applied) == 0 {
		a.logger.Debug("no changes applied, skipping archive")
		return applied, nil
	}

	start := time.Now()
	files, err := archiver.Archive(ctx, a.filesystem, staging, a.filesystem, opts.Compression.OutputPath)
	if err != nil {
		return applied, err
	}
	a.logger.Info("archive written",
		"path", opts.Compression.OutputPath,
		"format", opts.Compression.ResolvedFormat(),
		"level", opts.Compression.Level,
		"files", files,
		"duration", time.Since(start))

	return applied, nil
}

func (a *Applier) execute(
	ctx context.Context,
	changes []fhtypes.ChangeRecord,
	target func(string) (string, error),
) ([]fhtypes.ChangeRecord, error) {
	applied := make([]fhtypes.ChangeRecord, 0, len(changes))

	for _, c := range changes {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		to, err := target(c.To)
		if err != nil {
			return applied, err
		}
		if err := a.applyOne(c, to); err != nil {
			return applied, fherrors.WrapWithContext(err, fherrors.CodeIOFailure, "failed to apply change",
				map[string]interface{}{"kind": string(c.Kind), "from": c.From, "to": to})
		}

		a.logger.Debug("change applied", "kind", c.Kind, "from", c.From, "to", to)
		applied = append(applied, c)
	}
	return applied, nil
}

func (a *Applier) applyOne(c fhtypes.ChangeRecord, to string) error {
	switch {
	case c.Dir:
		return core.CopyDir(a.filesystem, c.From, a.filesystem, to)
	case c.All:
		_, err := core.CopyFiles(a.filesystem, c.From, a.filesystem, to)
		return err
	default:
		return core.CopyFile(a.filesystem, c.From, a.filesystem, to)
	}
}

// reroot maps a destination below anchor to the same relative location below staging.
func reroot(anchor, to, staging string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(anchor), filepath.Clean(to))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fherrors.NewWithContext(fherrors.CodeInvalidInput, "change target is outside the target anchor",
			map[string]interface{}{"anchor": anchor, "to": to})
	}
	return filepath.Join(staging, rel), nil
}
