// Package differ compares two hash trees and lists what the "to" side is
// missing relative to the "from" side.
//
// The comparison is one-directional and pruning: subtrees whose hashes match
// are never descended into, and entries present only on the "to" side are
// never reported.
package differ

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	fherrors "github.com/puyacodes/folder-hash/errors"
	"github.com/puyacodes/folder-hash/fhtypes"
)

// Differ computes change lists between hash trees.
type Differ struct {
	logger *slog.Logger
}

// New creates a Differ. A nil logger discards output.
func New(logger *slog.Logger) *Differ {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Differ{logger: logger}
}

// Diff returns the ordered change records that bring to in line with from.
// fromAnchor and toAnchor are the locations of the two roots; record paths are
// built by extending them with node names. onChange, if set, receives every
// record before it is appended.
//
// Records are ordered pre-order, subdirectories before files at each level,
// following the order of from's children.
func (d *Differ) Diff(
	ctx context.Context,
	from, to *fhtypes.TreeNode,
	fromAnchor, toAnchor string,
	onChange fhtypes.ChangeFunc,
) ([]fhtypes.ChangeRecord, error) {
	if from == nil || to == nil {
		return nil, fherrors.New(fherrors.CodeInvalidInput, "both trees are required")
	}

	start := time.Now()
	run := &diffRun{ctx: ctx, onChange: onChange}
	if err := run.compare(from, to, fromAnchor, toAnchor); err != nil {
		return nil, err
	}

	d.logger.Debug("diff complete",
		"from", fromAnchor,
		"to", toAnchor,
		"changes", len(run.changes),
		"duration", time.Since(start))

	return run.changes, nil
}

type diffRun struct {
	ctx      context.Context
	onChange fhtypes.ChangeFunc
	changes  []fhtypes.ChangeRecord
}

func (r *diffRun) compare(from, to *fhtypes.TreeNode, fa, ta string) error {
	if from.Hash == to.Hash {
		return nil
	}
	if err := r.ctx.Err(); err != nil {
		return err
	}

	if len(from.Dirs) > 0 {
		toDirs := dirIndex(to.Dirs)
		for _, sub := range from.Dirs {
			match, ok := toDirs[strings.ToLower(sub.Name)]
			if ok {
				if err := r.compare(sub, match, joinAnchor(fa, sub.Name), joinAnchor(ta, match.Name)); err != nil {
					return err
				}
				continue
			}
			r.emit(fhtypes.ChangeRecord{
				From: joinAnchor(fa, sub.Name),
				To:   joinAnchor(ta, sub.Name),
				Kind: fhtypes.MissingSubDir,
				Dir:  true,
				Name: sub.Name,
			})
		}
	}

	if len(from.Files) == 0 {
		return nil
	}

	if len(to.Files) == 0 {
		r.emit(fhtypes.ChangeRecord{
			From: fa,
			To:   strings.TrimRight(ta, `/\`) + "/",
			Kind: fhtypes.MissingFiles,
			All:  true,
			Name: from.Name,
		})
		return nil
	}

	toFiles := fileIndex(to.Files)
	for _, f := range from.Files {
		match, ok := toFiles[strings.ToLower(f.Name)]
		switch {
		case !ok:
			r.emit(fhtypes.ChangeRecord{
				From: joinAnchor(fa, f.Name),
				To:   joinAnchor(ta, f.Name),
				Kind: fhtypes.MissingFile,
				Name: f.Name,
			})
		case match.Hash != f.Hash:
			r.emit(fhtypes.ChangeRecord{
				From: joinAnchor(fa, f.Name),
				To:   joinAnchor(ta, match.Name),
				Kind: fhtypes.FileMismatch,
				Name: f.Name,
			})
		}
	}
	return nil
}

func (r *diffRun) emit(rec fhtypes.ChangeRecord) {
	if r.onChange != nil {
		r.onChange(fhtypes.Change{Path: rec.To, Name: rec.Name, Kind: rec.Kind})
	}
	r.changes = append(r.changes, rec)
}

// joinAnchor appends name to anchor with a single slash.
func joinAnchor(anchor, name string) string {
	if name == "" {
		return anchor
	}
	if anchor == "" {
		return name
	}
	trimmed := strings.TrimRight(anchor, `/\`)
	if trimmed == "" && anchor != "" {
		// anchor was the filesystem root.
		return "/" + name
	}
	return trimmed + "/" + name
}
