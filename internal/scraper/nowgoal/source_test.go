package nowgoal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgb173/Masivo/internal/pkg/cache"
	"github.com/dgb173/Masivo/internal/pkg/config"
	"github.com/dgb173/Masivo/internal/pkg/performance"
)

type fakeRenderer struct {
	requests []PageRequest
	failures []error // returned first, one per call
	err      error
}

func (f *fakeRenderer) Render(_ context.Context, req PageRequest) (string, error) {
	f.requests = append(f.requests, req)
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return "<html>" + req.URL + "</html>", nil
}

type fakeFetcher struct{ urls []string }

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return []byte("live " + url), nil
}

func TestSiteCachesPages(t *testing.T) {
	r := &fakeRenderer{}
	f := &fakeFetcher{}
	tracker := performance.NewTracker()
	site := NewSite("https://example.test", r, f, cache.NewMemory(16), time.Minute, tracker, config.FetchConfig{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		body, err := site.H2HPage(ctx, "123")
		if err != nil {
			t.Fatalf("H2HPage: %v", err)
		}
		if !strings.Contains(string(body), "/match/h2h-123") {
			t.Errorf("body = %s", body)
		}
	}
	if len(r.requests) != 1 {
		t.Fatalf("renderer called %d times, want 1", len(r.requests))
	}
	req := r.requests[0]
	if req.WaitFor != "#table_v1" || len(req.Selects) != 3 || req.SelectValue != "8" {
		t.Errorf("h2h request = %+v", req)
	}

	// The rival page of the same id is a different cache entry.
	if _, err := site.RivalH2HPage(ctx, "123"); err != nil {
		t.Fatal(err)
	}
	if len(r.requests) != 2 || r.requests[1].WaitFor != "#table_v2" || len(r.requests[1].Selects) != 0 {
		t.Errorf("rival request = %+v", r.requests)
	}

	if _, err := site.LivePage(ctx, "77"); err != nil {
		t.Fatal(err)
	}
	if len(f.urls) != 1 || f.urls[0] != "https://example.test/match/live-77" {
		t.Errorf("fetched = %v", f.urls)
	}

	m := tracker.GetMetrics()
	if m.Cache.Hits != 1 || m.Cache.Misses != 3 {
		t.Errorf("cache metrics = %+v", m.Cache)
	}
	if m.Fetches[cache.KindH2H].Count != 1 || m.Fetches[cache.KindLive].Count != 1 {
		t.Errorf("fetch metrics = %+v", m.Fetches)
	}
}

func TestSiteDoesNotCacheFailures(t *testing.T) {
	r := &fakeRenderer{err: errors.New("chrome crashed")}
	site := NewSite("https://example.test", r, &fakeFetcher{}, cache.NewMemory(16), time.Minute, performance.NewTracker(), config.FetchConfig{})

	if _, err := site.MainPage(context.Background()); err == nil || !strings.Contains(err.Error(), "chrome crashed") {
		t.Fatalf("err = %v", err)
	}
	r.err = nil
	body, err := site.MainPage(context.Background())
	if err != nil || !strings.Contains(string(body), "https://example.test/") {
		t.Errorf("retry after failure = %s, %v", body, err)
	}
	if len(r.requests) != 2 {
		t.Errorf("renderer called %d times, want 2", len(r.requests))
	}
}

func TestSiteRetriesRenders(t *testing.T) {
	reset := errors.New("page load error net::ERR_CONNECTION_RESET")
	tests := []struct {
		name      string
		failures  []error
		err       error
		retries   int
		wantCalls int
		wantErr   bool
	}{
		{name: "reset once then rendered", failures: []error{reset}, retries: 2, wantCalls: 2},
		{name: "two resets within budget", failures: []error{reset, reset}, retries: 2, wantCalls: 3},
		{name: "retries exhausted", err: reset, retries: 2, wantCalls: 3, wantErr: true},
		{name: "retries disabled", failures: []error{reset}, retries: 0, wantCalls: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{failures: tt.failures, err: tt.err}
			retry := config.FetchConfig{MaxRetries: tt.retries, BackoffInitial: time.Millisecond, BackoffMax: 2 * time.Millisecond}
			site := NewSite("https://example.test", r, &fakeFetcher{}, cache.NewMemory(16), time.Minute, performance.NewTracker(), retry)

			body, err := site.H2HPage(context.Background(), "42")
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "ERR_CONNECTION_RESET") {
					t.Errorf("err = %v, want the render error", err)
				}
			} else if err != nil || !strings.Contains(string(body), "/match/h2h-42") {
				t.Errorf("H2HPage = %s, %v", body, err)
			}
			if len(r.requests) != tt.wantCalls {
				t.Errorf("renderer called %d times, want %d", len(r.requests), tt.wantCalls)
			}
		})
	}
}

func TestSiteRenderStopsOnCancelledContext(t *testing.T) {
	r := &fakeRenderer{err: context.Canceled}
	retry := config.FetchConfig{MaxRetries: 5, BackoffInitial: time.Millisecond}
	site := NewSite("https://example.test", r, &fakeFetcher{}, nil, time.Minute, performance.NewTracker(), retry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := site.MainPage(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(r.requests) != 1 {
		t.Errorf("renderer called %d times, want 1", len(r.requests))
	}
}
