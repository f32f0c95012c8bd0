package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw context documents keyed by ContextKey
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ContextKey generates a cache key from a context document URL
func ContextKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "claimsign-ctx-v1-" + hex.EncodeToString(hash[:])
}

// Nop is a Cache that stores nothing, used when caching is disabled
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }

func (Nop) Set(string, []byte, time.Duration) error { return nil }

func (Nop) Delete(string) error { return nil }

func (Nop) Clear() error { return nil }
