package hasher

import (
	"crypto/md5"
	"hash"
	"strings"

	"github.com/opencontainers/go-digest"

	fherrors "github.com/puyacodes/folder-hash/errors"
)

// MD5 is the default algorithm name. Snapshots written by earlier releases use it.
const MD5 = "md5"

// HashFuncFor returns a hash constructor for an OCI digest algorithm such as
// digest.SHA256 or digest.SHA512.
func HashFuncFor(alg digest.Algorithm) (func() hash.Hash, error) {
	if !alg.Available() {
		return nil, fherrors.NewWithContext(fherrors.CodeInvalidInput, "digest algorithm unavailable",
			map[string]interface{}{"algorithm": string(alg)})
	}
	return alg.Hash, nil
}

// ParseAlgorithm resolves an algorithm name ("md5", "sha256", "sha384",
// "sha512") to a hash constructor.
func ParseAlgorithm(name string) (func() hash.Hash, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == MD5 {
		return md5.New, nil
	}
	return HashFuncFor(digest.Algorithm(name))
}
