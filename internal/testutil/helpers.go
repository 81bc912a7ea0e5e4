package testutil

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// MD5Hex returns the lowercase hex MD5 of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DirMD5 returns the directory hash over child hashes, or "" for none.
func DirMD5(childHashes ...string) string {
	if len(childHashes) == 0 {
		return ""
	}
	return MD5Hex(strings.Join(childHashes, ""))
}
