// Package cache keeps fetched pages for a short time so that concurrent or repeated studies of
// the same match do not hit the site again. Keys are "<kind>:<match id>".
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgb173/Masivo/internal/pkg/config"
)

// Page kinds.
const (
	KindH2H      = "h2h"
	KindRivalH2H = "h2h_rival"
	KindLive     = "live"
	KindMain     = "main"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache stores page bodies by key.
type Cache interface {
	// Get returns the stored value and whether it was found and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key builds the cache key of a page.
func Key(kind, id string) string {
	return kind + ":" + id
}

// New creates the configured backend.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemory(cfg.MaxEntries), nil
	case "redis":
		return NewRedisCache(cfg.Redis)
	case "none":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Close() error                                             { return nil }
