package cache

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-menus/pkg/interfaces"
)

// MemoryOption customizes a Memory backend.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// Memory is an in-process CacheBackend. Entries and indexes expire lazily on
// access. It only suits single process deployments.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
	indexes map[string]memoryIndex
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

type memoryIndex struct {
	members map[string]struct{}
	expires time.Time
}

var _ interfaces.CacheBackend = (*Memory)(nil)

// NewMemory returns an empty in-process backend.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		now:     time.Now,
		entries: map[string]memoryEntry{},
		indexes: map[string]memoryIndex{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	if m.expired(entry.expires) {
		delete(m.entries, key)
		return nil, interfaces.ErrCacheMiss
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = memoryEntry{value: stored, expires: m.deadline(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
		delete(m.indexes, key)
	}
	return nil
}

func (m *Memory) AddToIndex(_ context.Context, index string, ttl time.Duration, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.indexes[index]
	if !ok || m.expired(idx.expires) {
		idx = memoryIndex{members: map[string]struct{}{}}
	}
	for _, key := range keys {
		idx.members[key] = struct{}{}
	}
	idx.expires = m.deadline(ttl)
	m.indexes[index] = idx
	return nil
}

func (m *Memory) IndexMembers(_ context.Context, index string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.indexes[index]
	if !ok {
		return nil, nil
	}
	if m.expired(idx.expires) {
		delete(m.indexes, index)
		return nil, nil
	}
	out := make([]string, 0, len(idx.members))
	for key := range idx.members {
		out = append(out, key)
	}
	return out, nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = map[string]memoryEntry{}
	m.indexes = map[string]memoryIndex{}
	return nil
}

// Len reports the number of unexpired entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, entry := range m.entries {
		if !m.expired(entry.expires) {
			total++
		}
	}
	return total
}

func (m *Memory) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *Memory) expired(deadline time.Time) bool {
	return !deadline.IsZero() && !m.now().Before(deadline)
}
