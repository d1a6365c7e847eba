package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by the export-resolver memoization
// layer and the review-response cache. Implementations must be safe for
// concurrent readers within a single run.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from arbitrary content (a resolved declaration
// path, or plan text plus findings for review caching).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "groundcheck:v1:" + hex.EncodeToString(h.Sum(nil))
}
