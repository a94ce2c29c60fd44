package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgb173/Masivo/internal/pkg/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestMemory(max int) (*Memory, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(max)
	m.now = clock.Now
	return m, clock
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(0)

	key := Key(KindH2H, "2696131")
	if key != "h2h:2696131" {
		t.Fatalf("Key = %q", key)
	}
	if err := m.Set(ctx, key, []byte("<html>"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	clock.t = clock.t.Add(59 * time.Second)
	if v, ok, _ := m.Get(ctx, key); !ok || string(v) != "<html>" {
		t.Errorf("Get before expiry = %q, %v", v, ok)
	}

	clock.t = clock.t.Add(time.Second)
	if _, ok, _ := m.Get(ctx, key); ok {
		t.Error("entry should expire at its TTL")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", m.Len())
	}
}

func TestMemoryEviction(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(2)

	m.Set(ctx, "a", []byte("1"), time.Hour)
	clock.t = clock.t.Add(time.Second)
	m.Set(ctx, "b", []byte("2"), time.Hour)
	clock.t = clock.t.Add(time.Second)
	m.Set(ctx, "c", []byte("3"), time.Hour)

	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
	if _, ok, _ := m.Get(ctx, "a"); ok {
		t.Error("oldest entry should be evicted")
	}
	if _, ok, _ := m.Get(ctx, "c"); !ok {
		t.Error("newest entry missing")
	}

	// Overwriting an existing key never evicts.
	m.Set(ctx, "b", []byte("2b"), time.Hour)
	if v, ok, _ := m.Get(ctx, "c"); !ok || string(v) != "3" {
		t.Error("overwrite evicted another entry")
	}
}

func TestMemoryEvictsExpiredFirst(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(2)

	m.Set(ctx, "old", []byte("1"), time.Hour)
	clock.t = clock.t.Add(time.Second)
	m.Set(ctx, "short", []byte("2"), time.Second)
	clock.t = clock.t.Add(2 * time.Second)
	m.Set(ctx, "new", []byte("3"), time.Hour)

	if _, ok, _ := m.Get(ctx, "old"); !ok {
		t.Error("live entry evicted while an expired one was available")
	}
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "memory", MaxEntries: 4})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := c.(*Memory); !ok {
		t.Errorf("memory backend type = %T", c)
	}

	c, err = New(config.CacheConfig{Backend: "none"})
	if err != nil {
		t.Fatalf("none backend: %v", err)
	}
	c.Set(context.Background(), "k", []byte("v"), time.Minute)
	if _, ok, _ := c.Get(context.Background(), "k"); ok {
		t.Error("nop cache stored a value")
	}

	if _, err := New(config.CacheConfig{Backend: "disk"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend error = %v", err)
	}
}
