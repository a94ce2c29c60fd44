package study

import (
	"context"
	"fmt"

	"github.com/dgb173/Masivo/internal/pkg/line"
	"github.com/dgb173/Masivo/internal/pkg/models"
	"github.com/dgb173/Masivo/internal/scraper/nowgoal"
)

// Upcoming lists the next fixtures that carry a handicap line, soonest first. A limit of zero
// or less uses the configured default.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]models.UpcomingMatch, error) {
	if limit <= 0 {
		limit = s.cfg.UpcomingLimit
	}
	body, err := s.pages.MainPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: main page: %w", ErrUpstream, err)
	}
	doc, err := parseDoc(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse main page: %w", ErrUpstream, err)
	}

	out := []models.UpcomingMatch{}
	for _, m := range nowgoal.Upcoming(doc, s.now().UTC()) {
		if line.IsPlaceholder(m.Handicap) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
