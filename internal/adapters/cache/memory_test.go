package cache

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/goliatone/go-menus/pkg/interfaces"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemoryGetSetExpire(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mem := NewMemory(WithClock(clock.Now))

	if err := mem.Set(ctx, "menu.slug.main", []byte(`{"id":"1"}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mem.Get(ctx, "menu.slug.main")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"id":"1"}` {
		t.Fatalf("unexpected payload %q", got)
	}

	clock.Advance(time.Minute)
	if _, err := mem.Get(ctx, "menu.slug.main"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected expired entry evicted, len=%d", mem.Len())
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	payload := []byte("abc")
	_ = mem.Set(ctx, "k", payload, 0)
	payload[0] = 'x'

	got, _ := mem.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
	got[1] = 'y'
	again, _ := mem.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased stored slice: %q", again)
	}
}

func TestMemoryIndex(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mem := NewMemory(WithClock(clock.Now))

	if err := mem.AddToIndex(ctx, "menu.index.a", time.Hour, "menu.slug.main", "menu.id.a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := mem.AddToIndex(ctx, "menu.index.a", time.Hour, "menu.slug.main"); err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	members, err := mem.IndexMembers(ctx, "menu.index.a")
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	slices.Sort(members)
	if !slices.Equal(members, []string{"menu.id.a", "menu.slug.main"}) {
		t.Fatalf("unexpected members %v", members)
	}

	if err := mem.Delete(ctx, "menu.index.a"); err != nil {
		t.Fatalf("delete index: %v", err)
	}
	members, _ = mem.IndexMembers(ctx, "menu.index.a")
	if len(members) != 0 {
		t.Fatalf("expected index dropped, got %v", members)
	}

	_ = mem.AddToIndex(ctx, "menu.index.b", time.Minute, "menu.slug.footer")
	clock.Advance(2 * time.Minute)
	members, _ = mem.IndexMembers(ctx, "menu.index.b")
	if len(members) != 0 {
		t.Fatalf("expected expired index, got %v", members)
	}
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	_ = mem.Set(ctx, "a", []byte("1"), 0)
	_ = mem.AddToIndex(ctx, "idx", 0, "a")
	if err := mem.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := mem.Get(ctx, "a"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Fatalf("expected miss after clear, got %v", err)
	}
}
