package walker

import (
	"strings"

	"github.com/puyacodes/folder-hash/fhtypes"
)

// Filter decides which entries the walker drops.
//
// Names compare case-insensitively. A file pattern of the form "*suffix"
// (for example "*.log" or "*.test.js") matches any name ending in suffix.
// Include lists always win over exclude lists.
type Filter struct {
	excludeDirs  map[string]struct{}
	includeDirs  map[string]struct{}
	excludeFiles map[string]struct{}
	fileSuffixes []string
	includeFiles map[string]struct{}
}

// NewFilter builds a Filter from a navigator configuration.
func NewFilter(cfg fhtypes.NavigatorConfig) *Filter {
	f := &Filter{
		excludeDirs:  toSet(cfg.ExcludeDirs),
		includeDirs:  make(map[string]struct{}, len(cfg.IncludeDirs)),
		excludeFiles: make(map[string]struct{}, len(cfg.ExcludeFiles)),
		includeFiles: toSet(cfg.IncludeFiles),
	}

	for _, d := range cfg.IncludeDirs {
		// Root-relative paths match with or without the leading slash.
		f.includeDirs[strings.Trim(strings.ToLower(strings.ReplaceAll(d, "\\", "/")), "/")] = struct{}{}
	}

	for _, p := range cfg.ExcludeFiles {
		p = strings.ToLower(p)
		if suffix, ok := strings.CutPrefix(p, "*"); ok && suffix != "" {
			f.fileSuffixes = append(f.fileSuffixes, suffix)
			continue
		}
		f.excludeFiles[p] = struct{}{}
	}

	return f
}

// ExcludeDir reports whether the directory name at root-relative relPath is dropped.
func (f *Filter) ExcludeDir(name, relPath string) bool {
	if !contains(f.excludeDirs, name) {
		return false
	}
	if contains(f.includeDirs, name) {
		return false
	}
	return !contains(f.includeDirs, strings.Trim(relPath, "/"))
}

// ExcludeFile reports whether the file name is dropped.
func (f *Filter) ExcludeFile(name string) bool {
	if !f.matchesExcludedFile(name) {
		return false
	}
	return !contains(f.includeFiles, name)
}

func (f *Filter) matchesExcludedFile(name string) bool {
	if contains(f.excludeFiles, name) {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range f.fileSuffixes {
		// The pattern must cover more than the whole name, so "*.env" does not hit ".env".
		if len(lower) > len(suffix) && strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, s string) bool {
	_, ok := set[strings.ToLower(s)]
	return ok
}
