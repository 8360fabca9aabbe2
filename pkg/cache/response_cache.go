package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ResponseCache is a content-addressed TTL store for fully generated
// responses. Two concurrent misses for the same key may both generate and
// both write; the last writer wins, which is harmless because identical
// inputs produce the entry for the same fingerprint.
type ResponseCache struct {
	store      *gocache.Cache
	defaultTTL time.Duration
}

func NewResponseCache(defaultTTL time.Duration) *ResponseCache {
	// Expired entries are also dropped on access, so the janitor interval
	// only bounds memory, not staleness.
	return &ResponseCache{
		store:      gocache.New(defaultTTL, 10*time.Minute),
		defaultTTL: defaultTTL,
	}
}

// Fingerprint derives a stable cache key from the normalized input parts
// (document text, mode, model, language). Same parts, same key.
func (c *ResponseCache) Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x1f}) // unit separator, keeps parts unambiguous
		}
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *ResponseCache) Get(key string) (string, bool) {
	v, found := c.store.Get(key)
	if !found {
		return "", false
	}
	value, ok := v.(string)
	if !ok {
		// Malformed entry, treat as missing
		c.store.Delete(key)
		return "", false
	}
	return value, true
}

func (c *ResponseCache) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.store.Set(key, value, ttl)
}

func (c *ResponseCache) Delete(key string) {
	c.store.Delete(key)
}
