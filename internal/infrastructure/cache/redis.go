package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
)

// reportKeyPrefix namespaces report payloads away from the job queue
// keys sharing the same Redis instance.
const reportKeyPrefix = "kantina:report:"

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return client, nil
}

// RedisCache keeps rendered report payloads compressed in Redis, so
// entries written by the warmup worker are served by the API process.
// Keys embed the snapshot version; TTL only bounds memory held by
// abandoned keys.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewRedisCache creates a Redis-backed report cache. A non-positive
// ttl stores entries without expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) (*RedisCache, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &RedisCache{
		client:  client,
		ttl:     ttl,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Get returns the decompressed payload for key, if present. Redis
// errors degrade to a miss so a report is recomputed instead of
// failing the request.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	compressed, err := c.client.Get(ctx, reportKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}

	payload, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		// A corrupt entry is dropped rather than served.
		_ = c.client.Del(ctx, reportKeyPrefix+key).Err()
		return nil, false
	}
	return payload, true
}

// Set stores payload under key, compressed. Best effort: a write
// failure loses the cache entry, not the report.
func (c *RedisCache) Set(ctx context.Context, key string, payload []byte) {
	var expiry time.Duration
	if c.ttl > 0 {
		expiry = c.ttl
	}
	compressed := c.encoder.EncodeAll(payload, nil)
	_ = c.client.Set(ctx, reportKeyPrefix+key, compressed, expiry).Err()
}
