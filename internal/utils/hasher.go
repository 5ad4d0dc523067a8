package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CacheKey joins a namespace and request parameters into a fixed-length key.
func CacheKey(namespace string, params ...string) string {
	return namespace + ":" + Hash(strings.Join(params, "\x1f"))[:32]
}
