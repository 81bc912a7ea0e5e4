package fhtypes

import (
	"fmt"
	"strings"

	fherrors "github.com/puyacodes/folder-hash/errors"
)

// Built-in exclusion lists, applied unless replaced through MergeList.
const (
	DefaultExcludeDirs  = "node_modules,.git,tests,packages,wwwroot,__tests__,coverage,.vscode,.idea,build,publish,.vs"
	DefaultExcludeFiles = "thumbs.db,package.json,.env,.gitignore,.ds_store,*.log,*.test.js,*.spec.js,*.bak,*.tmp"
)

// NavigatorConfig is the filtering and ordering policy of the tree walker.
// Include lists always override exclude lists for the same name.
type NavigatorConfig struct {
	ExcludeDirs  []string
	IncludeDirs  []string
	ExcludeFiles []string
	IncludeFiles []string
	Sort         bool
}

// DefaultNavigatorConfig returns the built-in exclusions with sorting enabled.
func DefaultNavigatorConfig() NavigatorConfig {
	return NavigatorConfig{
		ExcludeDirs:  ParseList(DefaultExcludeDirs),
		ExcludeFiles: ParseList(DefaultExcludeFiles),
		Sort:         true,
	}
}

// ParseList splits a comma separated list, dropping empty and blank items.
func ParseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// MergeList combines a user supplied list with defaults. A value starting with
// a comma is appended to the defaults; any other non-empty value replaces them.
func MergeList(defaults []string, value string) []string {
	switch {
	case strings.TrimSpace(value) == "":
		return append([]string(nil), defaults...)
	case strings.HasPrefix(value, ","):
		return append(append([]string(nil), defaults...), ParseList(value)...)
	default:
		return ParseList(value)
	}
}

// ArchiveFormat selects the container used for compressed applies.
type ArchiveFormat string

const (
	FormatTarGz  ArchiveFormat = "tar.gz"
	FormatTarZst ArchiveFormat = "tar.zst"
	FormatZip    ArchiveFormat = "zip"
)

// ArchiveFormatFromPath infers the format from an output file name,
// defaulting to FormatTarGz.
func ArchiveFormatFromPath(p string) ArchiveFormat {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return FormatTarZst
	default:
		return FormatTarGz
	}
}

// Compression levels accepted by CompressionConfig.
const (
	MinCompressionLevel     = 0
	MaxCompressionLevel     = 9
	DefaultCompressionLevel = 6
)

// CompressionConfig controls staged-compression mode of the applier.
type CompressionConfig struct {
	Enabled bool
	// Level ranges from 0 (store) to 9 (best).
	Level      int
	OutputPath string
	// Format is inferred from OutputPath when empty.
	Format ArchiveFormat
}

// Validate checks the configuration. It never touches the filesystem.
func (c CompressionConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Level < MinCompressionLevel || c.Level > MaxCompressionLevel {
		return fherrors.NewWithContext(
			fherrors.CodeInvalidCompressionLevel,
			fmt.Sprintf("compression level must be between %d and %d", MinCompressionLevel, MaxCompressionLevel),
			map[string]interface{}{"level": c.Level},
		)
	}
	if c.OutputPath == "" {
		return fherrors.New(fherrors.CodeInvalidInput, "compression output path required")
	}
	switch c.ResolvedFormat() {
	case FormatTarGz, FormatTarZst, FormatZip:
		return nil
	default:
		return fherrors.NewWithContext(fherrors.CodeInvalidInput, "unsupported archive format",
			map[string]interface{}{"format": string(c.Format)})
	}
}

// ResolvedFormat returns Format, or the format inferred from OutputPath.
func (c CompressionConfig) ResolvedFormat() ArchiveFormat {
	if c.Format != "" {
		return c.Format
	}
	return ArchiveFormatFromPath(c.OutputPath)
}
