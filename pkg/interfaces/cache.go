package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheBackend.Get when a key is absent or expired.
var ErrCacheMiss = errors.New("cache: miss")

// CacheBackend stores opaque payloads under string keys with a TTL and keeps
// named key sets (indexes) so related entries can be dropped together.
//
// Implementations must be safe for concurrent use. Backends shared between
// processes (redis) make invalidation visible to every process; in-process
// backends only suit single process deployments.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// AddToIndex records keys as members of index. The index itself expires
	// after ttl unless refreshed by a later call.
	AddToIndex(ctx context.Context, index string, ttl time.Duration, keys ...string) error
	// IndexMembers returns the keys recorded under index.
	IndexMembers(ctx context.Context, index string) ([]string, error)

	Clear(ctx context.Context) error
}
