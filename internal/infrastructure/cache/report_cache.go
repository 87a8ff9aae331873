// Package cache stores rendered report payloads, zstd-compressed,
// either in Redis shared between the server and the worker or in
// process memory as a degraded fallback.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ReportCache keeps rendered report payloads compressed in memory.
// Keys embed the snapshot version, so a stale entry is never served for
// fresh data; TTL only bounds memory held by abandoned keys.
//
// Entries are local to the process. Production deployments use
// RedisCache so the warmup worker and the API server share one store.
type ReportCache struct {
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	compressed []byte
	expiresAt  time.Time
}

// NewReportCache creates a report cache. A non-positive ttl disables
// expiry.
func NewReportCache(ttl time.Duration) (*ReportCache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &ReportCache{
		ttl:     ttl,
		encoder: encoder,
		decoder: decoder,
		entries: make(map[string]cacheEntry),
	}, nil
}

// Get returns the decompressed payload for key, if present and fresh.
func (c *ReportCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	payload, err := c.decoder.DecodeAll(entry.compressed, nil)
	if err != nil {
		// A corrupt entry is dropped rather than served.
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return payload, true
}

// Set stores payload under key, compressed.
func (c *ReportCache) Set(_ context.Context, key string, payload []byte) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}
	compressed := c.encoder.EncodeAll(payload, nil)

	c.mu.Lock()
	c.entries[key] = cacheEntry{compressed: compressed, expiresAt: expiresAt}
	c.mu.Unlock()
}
