package noop

import (
	"context"
	"time"

	"github.com/goliatone/go-menus/pkg/interfaces"
)

// Cache returns an interfaces.CacheBackend that stores nothing. Every Get
// misses, so callers always fall through to the store.
func Cache() interfaces.CacheBackend {
	return cacheAdapter{}
}

type cacheAdapter struct{}

func (cacheAdapter) Get(context.Context, string) ([]byte, error) {
	return nil, interfaces.ErrCacheMiss
}

func (cacheAdapter) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (cacheAdapter) Delete(context.Context, ...string) error {
	return nil
}

func (cacheAdapter) AddToIndex(context.Context, string, time.Duration, ...string) error {
	return nil
}

func (cacheAdapter) IndexMembers(context.Context, string) ([]string, error) {
	return nil, nil
}

func (cacheAdapter) Clear(context.Context) error {
	return nil
}
