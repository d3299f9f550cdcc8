// Package cache provides the TTL key-value stores behind the citation and
// assessment caches: a fast in-process map, an optional shared SQLite tier,
// and a two-tier composition of both. Entries are content-addressed, so
// last-writer-wins semantics are sufficient.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store is the cache contract shared by every backing implementation.
// Get reports a miss (not an error) for absent or expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key derives a stable cache key from its parts. Parts are normalized so
// "Sodium Nitrite" and "sodium  nitrite" address the same entry.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(normalize(p)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
