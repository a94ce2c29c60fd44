// Package app assembles the study service from configuration: logging, page cache, HTTP
// client, headless browser and the study itself.
package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dgb173/Masivo/internal/pkg/cache"
	"github.com/dgb173/Masivo/internal/pkg/config"
	"github.com/dgb173/Masivo/internal/pkg/logging"
	"github.com/dgb173/Masivo/internal/pkg/performance"
	"github.com/dgb173/Masivo/internal/scraper/nowgoal"
	"github.com/dgb173/Masivo/internal/study"
)

// App owns every long-lived resource. Close releases them in reverse order.
type App struct {
	Config  *config.Config
	Tracker *performance.Tracker
	Site    *nowgoal.Site
	Study   *study.Service

	closers []io.Closer
}

// LoadConfig reads path, or returns the defaults when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// New sets up logging for service and builds the study pipeline. A cache backend that cannot
// be reached is logged and replaced by no caching.
func New(cfg *config.Config, service string) *App {
	_, logCloser := logging.SetupLogger(&cfg.Logging, service)
	a := &App{Config: cfg, Tracker: performance.GetTracker()}
	a.closers = append(a.closers, logCloser)

	pageCache, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Warn("Page cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		pageCache = cache.Nop{}
	}
	a.closers = append(a.closers, pageCache)

	client := nowgoal.NewClient(cfg.Site, cfg.Fetch)
	browser := nowgoal.NewBrowser(cfg.Browser, cfg.Site, cfg.Fetch)
	a.closers = append(a.closers, browser)

	a.Site = nowgoal.NewSite(cfg.Site.BaseURL, browser, client, pageCache, cfg.Cache.TTL, a.Tracker, cfg.Fetch)
	a.Study = study.New(a.Site, cfg.Study, a.Tracker)

	slog.Info("Study service ready",
		"base_url", cfg.Site.BaseURL,
		"cache", cfg.Cache.Backend,
		"max_workers", cfg.Study.MaxWorkers,
		"headless", cfg.Browser.Headless)
	return a
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
