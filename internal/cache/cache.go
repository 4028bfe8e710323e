package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/ppiankov/briefguard/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyVersion changes whenever the report layout changes
const keyVersion = "briefguard:v1:"

// CacheKey generates the report key for one request under one configuration.
// Every input of the pipeline is part of the key, so a hit is always safe to reuse.
func CacheKey(rawHash, corpusHash string, limits model.Limits, fingerprint string) string {
	h := sha256.New()
	for _, part := range []string{
		rawHash,
		corpusHash,
		strconv.Itoa(limits.RequiredCount),
		strconv.Itoa(limits.MaxArticleIndex),
		fingerprint,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyVersion + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex sha256 of data
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FromConfig builds the cache described by cfg: nil when disabled, memory only
// without a directory, memory over disk otherwise
func FromConfig(cfg *model.CacheConfig) Cache {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute, cfg.MaxItems)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.MaxItems, cfg.Dir, cfg.TTL)
}
