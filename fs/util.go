package fs

import (
	"errors"
	iofs "io/fs"
)

// IsDir reports whether path exists in fsys and is a directory.
// Symbolic links are followed.
func IsDir(fsys Filesystem, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
