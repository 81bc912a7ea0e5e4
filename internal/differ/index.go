package differ

import (
	"strings"

	"github.com/puyacodes/folder-hash/fhtypes"
)

// dirIndex maps lowercase names to subdirectories. The first of several
// case-variant names wins.
func dirIndex(dirs []*fhtypes.TreeNode) map[string]*fhtypes.TreeNode {
	idx := make(map[string]*fhtypes.TreeNode, len(dirs))
	for _, d := range dirs {
		key := strings.ToLower(d.Name)
		if _, ok := idx[key]; !ok {
			idx[key] = d
		}
	}
	return idx
}

// fileIndex maps lowercase names to file entries. The first of several
// case-variant names wins.
func fileIndex(files []fhtypes.FileEntry) map[string]fhtypes.FileEntry {
	idx := make(map[string]fhtypes.FileEntry, len(files))
	for _, f := range files {
		key := strings.ToLower(f.Name)
		if _, ok := idx[key]; !ok {
			idx[key] = f
		}
	}
	return idx
}
