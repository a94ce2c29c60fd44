package nowgoal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dgb173/Masivo/internal/pkg/cache"
	"github.com/dgb173/Masivo/internal/pkg/config"
	"github.com/dgb173/Masivo/internal/pkg/performance"
)

// rowsPerTable is the hSelect value that makes the H2H page list enough history rows.
const rowsPerTable = "8"

// Fetcher downloads a plain page.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Site is the page source of a study: JavaScript pages through a Renderer, plain pages through
// a Fetcher, every page cached under "<kind>:<id>".
type Site struct {
	baseURL  string
	renderer Renderer
	fetcher  Fetcher
	cache    cache.Cache
	ttl      time.Duration
	tracker  *performance.Tracker
	retry    config.FetchConfig
}

// NewSite wires the page source. Renders are retried with the MaxRetries and backoff settings
// of retry; plain pages rely on the Fetcher's own retries. A nil cache disables caching and a
// nil tracker uses the global one.
func NewSite(baseURL string, renderer Renderer, fetcher Fetcher, c cache.Cache, ttl time.Duration, tracker *performance.Tracker, retry config.FetchConfig) *Site {
	if c == nil {
		c = cache.Nop{}
	}
	if tracker == nil {
		tracker = performance.GetTracker()
	}
	return &Site{baseURL: baseURL, renderer: renderer, fetcher: fetcher, cache: c, ttl: ttl, tracker: tracker, retry: retry}
}

// H2HPage renders the head-to-head page of matchID with every history table expanded.
func (s *Site) H2HPage(ctx context.Context, matchID string) ([]byte, error) {
	return s.cached(ctx, cache.KindH2H, matchID, func(ctx context.Context) ([]byte, error) {
		return s.render(ctx, PageRequest{
			URL:         s.baseURL + "/match/h2h-" + matchID,
			WaitFor:     "#" + TableHome,
			Selects:     []string{"hSelect_1", "hSelect_2", "hSelect_3"},
			SelectValue: rowsPerTable,
		})
	})
}

// RivalH2HPage renders the H2H page of a rival's key match; only its away table is read.
func (s *Site) RivalH2HPage(ctx context.Context, keyMatchID string) ([]byte, error) {
	return s.cached(ctx, cache.KindRivalH2H, keyMatchID, func(ctx context.Context) ([]byte, error) {
		return s.render(ctx, PageRequest{
			URL:     s.baseURL + "/match/h2h-" + keyMatchID,
			WaitFor: "#" + TableAway,
		})
	})
}

// LivePage downloads the live statistics page of matchID.
func (s *Site) LivePage(ctx context.Context, matchID string) ([]byte, error) {
	return s.cached(ctx, cache.KindLive, matchID, func(ctx context.Context) ([]byte, error) {
		return s.fetcher.Get(ctx, s.baseURL+"/match/live-"+matchID)
	})
}

// MainPage renders the fixture list.
func (s *Site) MainPage(ctx context.Context) ([]byte, error) {
	return s.cached(ctx, cache.KindMain, "index", func(ctx context.Context) ([]byte, error) {
		return s.render(ctx, PageRequest{URL: s.baseURL + "/", WaitFor: `tr[id^="tr1_"]`})
	})
}

// render retries failed renders such as net::ERR_CONNECTION_RESET. A cancelled or expired ctx
// stops at once.
func (s *Site) render(ctx context.Context, req PageRequest) ([]byte, error) {
	var html string
	attempt := 0
	op := func() error {
		attempt++
		h, err := s.renderer.Render(ctx, req)
		if err == nil {
			html = h
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := retryPolicy(ctx, s.retry.BackoffInitial, s.retry.BackoffMax, s.retry.MaxRetries)
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		slog.Debug("Retrying page render", "url", req.URL, "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("render %s after %d attempt(s): %w", req.URL, attempt, err)
	}
	return []byte(html), nil
}

func (s *Site) cached(ctx context.Context, kind, id string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	key := cache.Key(kind, id)
	if body, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("Page cache read failed", "key", key, "error", err)
	} else if ok {
		s.tracker.RecordCache(true)
		return body, nil
	}
	s.tracker.RecordCache(false)

	start := time.Now()
	body, err := fetch(ctx)
	s.tracker.RecordFetch(kind, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page %s: %w", kind, id, err)
	}

	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		slog.Warn("Page cache write failed", "key", key, "error", err)
	}
	return body, nil
}
