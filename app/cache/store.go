package cache

import (
	"context"
	"time"
)

// Store is a string-keyed TTL cache. Implementations guarantee last-write-wins
// per key and nothing more; readers treat stale or malformed entries as a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
