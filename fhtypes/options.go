package fhtypes

import (
	"hash"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/puyacodes/folder-hash/fs"
)

// Configuration types for functional options

// ClientConfig holds configuration for the folder-hash client.
type ClientConfig struct {
	Filesystem  fs.Filesystem // Filesystem all paths are resolved on
	Logger      *slog.Logger
	Navigator   NavigatorConfig
	HashFunc    func() hash.Hash
	Concurrency int
	StagingDir  string // Parent of compression staging dirs; empty means the system temp dir
	Registerer  prometheus.Registerer

	// Err is the first invalid option value; New returns it
	Err error
}

// HashOptionConfig holds configuration for hash operations via functional options.
type HashOptionConfig struct {
	Progress ProgressFunc
}

// DiffOptionConfig holds configuration for diff operations via functional options.
type DiffOptionConfig struct {
	Progress   ProgressFunc
	OnChange   ChangeFunc
	FromAnchor string
	ToAnchor   string
}

// ApplyOptionConfig holds configuration for apply operations via functional options.
type ApplyOptionConfig struct {
	DiffOptionConfig
	Compression CompressionConfig
}

// Option is a functional option for configuring the client.
type (
	Option func(*ClientConfig)
	// HashOption is a functional option for configuring hash operations.
	HashOption func(*HashOptionConfig)
	// DiffOption is a functional option for configuring diff and apply operations.
	DiffOption func(*DiffOptionConfig)
	// ApplyOption is a functional option for configuring apply operations.
	ApplyOption func(*ApplyOptionConfig)
)
