package menus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-menus/internal/logging"
	"github.com/goliatone/go-menus/pkg/interfaces"
)

const (
	DefaultIdentityTTL = time.Hour
	DefaultListingTTL  = 5 * time.Minute

	listingKey     = "menus.list"
	aggregateIndex = "menus.index.aggregate"
)

// SlugKey is the cache key of a public tree looked up by slug.
func SlugKey(slug string) string { return "menu.slug." + slug }

// LocationKey is the cache key of a public tree looked up by location.
func LocationKey(location Location) string { return "menu.location." + string(location) }

// TreeKey is the cache key of the editing tree of a menu.
func TreeKey(menuID uuid.UUID) string { return "menu.id." + menuID.String() }

// LookupKey maps a lookup to its cache key.
func LookupKey(kind LookupKind, key string) string {
	if kind == LookupByLocation {
		return LocationKey(Location(key))
	}
	return SlugKey(key)
}

func indexKey(menuID uuid.UUID) string { return "menu.index." + menuID.String() }

// CacheOption customizes a MenuCache.
type CacheOption func(*MenuCache)

// WithIdentityTTL sets the expiry of per menu entries.
func WithIdentityTTL(ttl time.Duration) CacheOption {
	return func(c *MenuCache) {
		if ttl > 0 {
			c.identityTTL = ttl
		}
	}
}

// WithListingTTL sets the expiry of the aggregate listing.
func WithListingTTL(ttl time.Duration) CacheOption {
	return func(c *MenuCache) {
		if ttl > 0 {
			c.listingTTL = ttl
		}
	}
}

// WithCacheLogger sets the logger used for degraded backend reports.
func WithCacheLogger(logger interfaces.Logger) CacheOption {
	return func(c *MenuCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// MenuCache memoizes menu trees and the aggregate listing. Every entry built
// from a menu is recorded in that menu's side index so Invalidate can drop
// exactly those keys.
//
// A loader calls Epoch before reading the store and passes the value to the
// matching Put. Puts that lost a race with an invalidation are discarded.
type MenuCache struct {
	backend     interfaces.CacheBackend
	identityTTL time.Duration
	listingTTL  time.Duration
	logger      interfaces.Logger

	mu    sync.RWMutex
	epoch uint64
}

// NewMenuCache wraps backend with menu aware keys and indexes.
func NewMenuCache(backend interfaces.CacheBackend, opts ...CacheOption) *MenuCache {
	c := &MenuCache{
		backend:     backend,
		identityTTL: DefaultIdentityTTL,
		listingTTL:  DefaultListingTTL,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Epoch returns the current invalidation generation.
func (c *MenuCache) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// GetMenu returns the cached tree under key. Backend faults count as misses.
func (c *MenuCache) GetMenu(ctx context.Context, key string) (*Menu, bool) {
	var menu Menu
	if !c.get(ctx, key, &menu) {
		return nil, false
	}
	return &menu, true
}

// PutMenu stores menu under key and indexes the key under the menu id.
func (c *MenuCache) PutMenu(ctx context.Context, key string, menu *Menu, epoch uint64) {
	if menu == nil || menu.ID == uuid.Nil {
		return
	}
	c.put(ctx, key, menu, c.identityTTL, indexKey(menu.ID), epoch)
}

// GetListing returns the cached aggregate listing.
func (c *MenuCache) GetListing(ctx context.Context) ([]MenuSummary, bool) {
	var list []MenuSummary
	if !c.get(ctx, listingKey, &list) {
		return nil, false
	}
	return list, true
}

// PutListing stores the aggregate listing.
func (c *MenuCache) PutListing(ctx context.Context, list []MenuSummary, epoch uint64) {
	if list == nil {
		list = []MenuSummary{}
	}
	c.put(ctx, listingKey, list, c.listingTTL, aggregateIndex, epoch)
}

// Invalidate drops every key indexed under menuID, every aggregate key and
// the explicit extra keys. It returns the keys it removed.
func (c *MenuCache) Invalidate(ctx context.Context, menuID uuid.UUID, extraKeys ...string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++

	keys := make([]string, 0, 8+len(extraKeys))
	seen := map[string]struct{}{}
	add := func(key string) {
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	var errs []error
	if menuID != uuid.Nil {
		idx := indexKey(menuID)
		members, err := c.backend.IndexMembers(ctx, idx)
		if err != nil {
			errs = append(errs, err)
		}
		for _, key := range members {
			add(key)
		}
		add(TreeKey(menuID))
		add(idx)
	}

	aggregates, err := c.backend.IndexMembers(ctx, aggregateIndex)
	if err != nil {
		errs = append(errs, err)
	}
	for _, key := range aggregates {
		add(key)
	}
	add(listingKey)
	add(aggregateIndex)

	for _, key := range extraKeys {
		add(key)
	}

	if err := c.backend.Delete(ctx, keys...); err != nil {
		errs = append(errs, err)
	}
	return keys, errors.Join(errs...)
}

// Clear empties the backend.
func (c *MenuCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.backend.Clear(ctx)
}

func (c *MenuCache) get(ctx context.Context, key string, dest any) bool {
	payload, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			c.logger.Warn("menus.cache.get_failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn("menus.cache.decode_failed", "key", key, "error", err)
		_ = c.backend.Delete(ctx, key)
		return false
	}
	return true
}

func (c *MenuCache) put(ctx context.Context, key string, value any, ttl time.Duration, index string, epoch uint64) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("menus.cache.encode_failed", "key", key, "error", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if epoch != c.epoch {
		c.logger.Debug("menus.cache.put_discarded", "key", key)
		return
	}
	// the index outlives its members so an entry is never orphaned
	if err := c.backend.AddToIndex(ctx, index, ttl+time.Minute, key); err != nil {
		c.logger.Warn("menus.cache.index_failed", "key", key, "index", index, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, payload, ttl); err != nil {
		c.logger.Warn("menus.cache.set_failed", "key", key, "error", err)
	}
}
