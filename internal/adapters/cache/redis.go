package cache

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-menus/pkg/interfaces"
)

// ErrClosed is returned by a Redis backend after Close.
var ErrClosed = errors.New("cache: backend closed")

// ErrPrefixRequired is returned by Clear when the backend has no key prefix.
var ErrPrefixRequired = errors.New("cache: redis prefix is required to clear")

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	// URL is the connection URL, for example redis://localhost:6379/0.
	URL string
	// Prefix is prepended to every key and index name. Blank uses the
	// default prefix.
	Prefix string

	PoolSize       int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DefaultRedisOptions returns the defaults used when fields are left zero.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Prefix:         "menus:",
		PoolSize:       10,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
	}
}

// Redis is a CacheBackend shared between processes. Indexes are redis sets
// holding unprefixed member keys.
type Redis struct {
	client *redis.Client
	prefix string
	closed atomic.Bool
}

var _ interfaces.CacheBackend = (*Redis)(nil)

// NewRedis connects to redis and verifies the connection with PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		return nil, errors.New("cache: redis url is required")
	}
	defaults := DefaultRedisOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaults.ConnectTimeout
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(redisOpts)
	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, prefix: keyPrefix(opts.Prefix)}, nil
}

// NewRedisFromClient wraps an existing client. A blank prefix falls back to
// DefaultRedisOptions().Prefix.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: keyPrefix(prefix)}
}

func keyPrefix(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		return DefaultRedisOptions().Prefix
	}
	return prefix
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, err
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, r.key(key))
	}
	return r.client.Del(ctx, prefixed...).Err()
}

func (r *Redis) AddToIndex(ctx context.Context, index string, ttl time.Duration, keys ...string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	members := make([]any, 0, len(keys))
	for _, key := range keys {
		members = append(members, key)
	}
	name := r.key(index)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, name, members...)
		if ttl > 0 {
			pipe.Expire(ctx, name, ttl)
		}
		return nil
	})
	return err
}

func (r *Redis) IndexMembers(ctx context.Context, index string) ([]string, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	members, err := r.client.SMembers(ctx, r.key(index)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return members, nil
}

// Clear removes every key under the backend prefix using SCAN.
func (r *Redis) Clear(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if strings.TrimSpace(r.prefix) == "" {
		return ErrPrefixRequired
	}
	var cursor uint64
	pattern := r.prefix + "*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the client. Later calls fail with ErrClosed.
func (r *Redis) Close() error {
	if r.closed.CompareAndSwap(false, true) {
		return r.client.Close()
	}
	return nil
}
