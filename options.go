package folderhash

import (
	"hash"
	"log/slog"

	"github.com/opencontainers/go-digest"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/puyacodes/folder-hash/fhtypes"
	"github.com/puyacodes/folder-hash/fs"
	"github.com/puyacodes/folder-hash/internal/hasher"
)

// WithFilesystem sets the filesystem every path is resolved on.
// Default is the host filesystem, where relative paths resolve against the
// working directory.
func WithFilesystem(filesystem fs.Filesystem) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger. Default discards all output.
func WithLogger(logger *slog.Logger) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithNavigatorConfig replaces the whole walker policy, including the
// built-in exclusion lists.
func WithNavigatorConfig(cfg fhtypes.NavigatorConfig) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Navigator = cfg
	}
}

// WithExcludeDirs sets the excluded directory names from a comma separated
// list. A list starting with a comma is appended to the built-in exclusions;
// any other non-empty list replaces them.
func WithExcludeDirs(list string) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Navigator.ExcludeDirs = fhtypes.MergeList(fhtypes.ParseList(fhtypes.DefaultExcludeDirs), list)
	}
}

// WithExcludeFiles sets the excluded file names and "*suffix" patterns from a
// comma separated list, merged with the built-in list like WithExcludeDirs.
func WithExcludeFiles(list string) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Navigator.ExcludeFiles = fhtypes.MergeList(fhtypes.ParseList(fhtypes.DefaultExcludeFiles), list)
	}
}

// WithIncludeDirs sets directory names or root-relative paths that are walked
// even when excluded.
func WithIncludeDirs(list string) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Navigator.IncludeDirs = fhtypes.ParseList(list)
	}
}

// WithIncludeFiles sets file names that are hashed even when excluded.
func WithIncludeFiles(list string) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Navigator.IncludeFiles = fhtypes.ParseList(list)
	}
}

// WithSort controls whether directory entries are visited in name order.
// Default is true. Unsorted walks follow the filesystem's enumeration order,
// so their hashes are only reproducible on the same filesystem.
func WithSort(sort bool) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Navigator.Sort = sort
	}
}

// WithHashFunc sets the digest used for files and directories.
// Default is MD5. Trees hashed with different functions never compare equal.
func WithHashFunc(fn func() hash.Hash) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		if fn != nil {
			c.HashFunc = fn
		}
	}
}

// WithDigestAlgorithm selects the digest by algorithm name: "md5" or an OCI
// algorithm such as digest.SHA256. New fails with CodeInvalidInput for an
// unknown or unavailable algorithm.
func WithDigestAlgorithm(alg digest.Algorithm) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		fn, err := hasher.ParseAlgorithm(string(alg))
		if err != nil {
			if c.Err == nil {
				c.Err = err
			}
			return
		}
		c.HashFunc = fn
	}
}

// WithConcurrency sets how many files of one directory are hashed at once.
// Default is 1, which reads files strictly one after another. Hashes do not
// depend on this value.
func WithConcurrency(concurrency int) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithStagingDir sets where compressed applies create their staging
// directory. Default is the system temporary directory.
func WithStagingDir(dir string) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.StagingDir = dir
	}
}

// WithMetrics registers the client's collectors with reg. Default is no metrics.
func WithMetrics(reg prometheus.Registerer) fhtypes.Option {
	return func(c *fhtypes.ClientConfig) {
		c.Registerer = reg
	}
}

// WithProgress sets an observer that receives every walker event while a
// directory is hashed.
func WithProgress(fn fhtypes.ProgressFunc) fhtypes.HashOption {
	return func(c *fhtypes.HashOptionConfig) {
		c.Progress = fn
	}
}

// WithDiffProgress sets an observer that receives every walker event while a
// live directory source is hashed for a diff.
func WithDiffProgress(fn fhtypes.ProgressFunc) fhtypes.DiffOption {
	return func(c *fhtypes.DiffOptionConfig) {
		c.Progress = fn
	}
}

// WithOnChange sets an observer called for each change record as it is found.
func WithOnChange(fn fhtypes.ChangeFunc) fhtypes.DiffOption {
	return func(c *fhtypes.DiffOptionConfig) {
		c.OnChange = fn
	}
}

// WithFromAnchor sets the location the "from" records are rooted at.
// Default is the "from" directory for live sources and "." otherwise.
func WithFromAnchor(anchor string) fhtypes.DiffOption {
	return func(c *fhtypes.DiffOptionConfig) {
		c.FromAnchor = anchor
	}
}

// WithToAnchor sets the location the "to" records are rooted at.
// Default is the "to" directory for live sources and the directory holding
// the snapshot for snapshot sources. It is required for in-memory trees.
func WithToAnchor(anchor string) fhtypes.DiffOption {
	return func(c *fhtypes.DiffOptionConfig) {
		c.ToAnchor = anchor
	}
}

// WithDiff applies diff options to an apply operation.
func WithDiff(opts ...fhtypes.DiffOption) fhtypes.ApplyOption {
	return func(c *fhtypes.ApplyOptionConfig) {
		for _, opt := range opts {
			opt(&c.DiffOptionConfig)
		}
	}
}

// WithCompression stages every copy and packages the staged files into one
// archive at outputPath instead of touching the target. The format follows
// the file extension and the level defaults to 6.
func WithCompression(outputPath string) fhtypes.ApplyOption {
	return func(c *fhtypes.ApplyOptionConfig) {
		c.Compression.Enabled = true
		c.Compression.OutputPath = outputPath
	}
}

// WithCompressionLevel sets the archive compression level, 0 (store) to 9.
// Out of range values fail the apply before anything is copied.
func WithCompressionLevel(level int) fhtypes.ApplyOption {
	return func(c *fhtypes.ApplyOptionConfig) {
		c.Compression.Level = level
	}
}

// WithArchiveFormat forces the archive container regardless of the output
// path's extension.
func WithArchiveFormat(format fhtypes.ArchiveFormat) fhtypes.ApplyOption {
	return func(c *fhtypes.ApplyOptionConfig) {
		c.Compression.Format = format
	}
}

// WithOutputPath sets the archive path without changing whether compression
// is enabled.
func WithOutputPath(path string) fhtypes.ApplyOption {
	return func(c *fhtypes.ApplyOptionConfig) {
		c.Compression.OutputPath = path
	}
}
