package limiter

import (
	"crypto/sha256"
	"encoding/hex"
)

// BucketKey derives the storage key for a caller-supplied bucket key.
// Keys are hashed so opaque client identifiers (API keys, bearer tokens)
// are never stored verbatim and key length stays bounded.
func BucketKey(prefix, key string) string {
	sum := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(sum[:])
}
