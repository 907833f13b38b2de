// Package cache provides a small byte-oriented cache used for hot lookups
// such as the staff directory role listings. A Redis implementation is used
// when REDIS_URL is configured; otherwise an in-memory cache serves as a
// single-process fallback.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not present or has expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the interface shared by the Redis and in-memory implementations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RoleKey builds the cache key for a staff-directory role listing.
func RoleKey(role string) string {
	return "staff:role:" + role
}
