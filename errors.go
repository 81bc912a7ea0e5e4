package folderhash

import (
	fherrors "github.com/puyacodes/folder-hash/errors"
)

// IsNotFound reports whether err was caused by a missing directory or file.
func IsNotFound(err error) bool {
	return fherrors.HasCode(err, fherrors.CodeNotFound)
}

// IsInvalidSnapshot reports whether err was caused by an unparsable snapshot.
func IsInvalidSnapshot(err error) bool {
	return fherrors.HasCode(err, fherrors.CodeInvalidSnapshot)
}

// IsMissingTargetPath reports whether err was caused by an in-memory "to"
// tree without a target anchor.
func IsMissingTargetPath(err error) bool {
	return fherrors.HasCode(err, fherrors.CodeMissingTargetPath)
}

// IsInvalidCompressionLevel reports whether err was caused by a compression
// level outside 0-9.
func IsInvalidCompressionLevel(err error) bool {
	return fherrors.HasCode(err, fherrors.CodeInvalidCompressionLevel)
}

// IsIOFailure reports whether err was caused by a read, write or copy failure.
func IsIOFailure(err error) bool {
	return fherrors.HasCode(err, fherrors.CodeIOFailure)
}
