// Package fstest provides a conformance test suite for fs.Filesystem
// implementations.
//
// The suite exercises exactly the operations folder-hash relies on: reading
// directory listings and file contents for hashing, creating and overwriting
// files when applying changes, and scratch directories for staged archives.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func() fs.Filesystem {
//	        return myprovider.New()
//	    })
//	}
package fstest

import (
	"slices"
	"testing"

	"github.com/puyacodes/folder-hash/fs"
)

// TestSuite runs all conformance tests against a filesystem.
// The newFS function should return a fresh, empty filesystem for each group.
func TestSuite(t *testing.T, newFS func() fs.Filesystem) {
	TestSuiteWithSkip(t, newFS, nil)
}

// TestSuiteWithSkip runs conformance tests, skipping the named groups
// (e.g. "ManageFS") for providers with known behavioral differences.
func TestSuiteWithSkip(t *testing.T, newFS func() fs.Filesystem, skipTests []string) {
	groups := []struct {
		name string
		run  func(*testing.T, fs.Filesystem)
	}{
		{name: "ReadFS", run: TestReadFS},
		{name: "WriteFS", run: TestWriteFS},
		{name: "ManageFS", run: TestManageFS},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if slices.Contains(skipTests, g.name) {
				t.Skip("Skipped by provider configuration")
				return
			}
			g.run(t, newFS())
		})
	}
}
