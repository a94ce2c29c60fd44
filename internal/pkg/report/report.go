// Package report merges the precedents of one match study into the MarketReport handed to
// renderers. Every numeric decision and verdict label is final once Build returns.
package report

import (
	"time"

	"github.com/dgb173/Masivo/internal/pkg/coverage"
	"github.com/dgb173/Masivo/internal/pkg/line"
	"github.com/dgb173/Masivo/internal/pkg/models"
)

// SameMatchNotice replaces the general H2H analysis when it is the venue H2H match.
const SameMatchNotice = "The most recent overall H2H is the same match played at this stadium."

// NoFavorite is the favorite display for a level line.
const NoFavorite = "None (line at 0)"

// Input is everything the extraction layer found for one match.
type Input struct {
	MatchID  string
	HomeTeam string
	AwayTeam string
	Odds     models.MainOdds

	HomeStandings *models.Standings
	AwayStandings *models.Standings
	HomeOverUnder *models.OverUnderStats
	AwayOverUnder *models.OverUnderStats

	// Precedents and Stats are keyed by slot; missing keys mean "not found".
	Precedents map[models.Slot]*models.MatchRecord
	Stats      map[models.Slot]models.MatchStats

	Failures []Failure
}

// Failure records a lookup that did not complete. The report is still built without it.
type Failure struct {
	Task  string `json:"task"`
	Error string `json:"error"`
}

// CurrentOdds are the studied match's opening lines in raw, numeric and display form.
type CurrentOdds struct {
	HandicapRaw     string    `json:"ah_line_raw"`
	GoalLineRaw     string    `json:"goals_line_raw"`
	Handicap        line.Line `json:"ah_line"`
	GoalLine        line.Line `json:"goals_line"`
	HandicapDisplay string    `json:"ah_line_display"`
	GoalLineDisplay string    `json:"goals_line_display"`
}

// Favorite is the side the current handicap favors.
type Favorite struct {
	Name    string        `json:"name"`
	Side    coverage.Role `json:"side"`
	Display string        `json:"display"`
}

// SlotResult is one precedent position. Details is nil when nothing was found, and Analysis
// then holds the single coverage.MissingPrecedent sentence. Handicap and HandicapDisplay are
// the precedent's line after normalization.
type SlotResult struct {
	Slot            models.Slot         `json:"slot"`
	Title           string              `json:"title"`
	Details         *models.MatchRecord `json:"details"`
	Handicap        line.Line           `json:"ah_line"`
	HandicapDisplay string              `json:"ah_line_display,omitempty"`
	Stats           models.MatchStats   `json:"stats"`
	Analysis        []coverage.Sentence `json:"analysis"`
	Notice          string              `json:"notice,omitempty"`
}

// PrecedentBlock is the movement and goals analysis of one H2H precedent. Line and
// LineDisplay are the precedent's handicap after normalization.
type PrecedentBlock struct {
	Title       string              `json:"title"`
	Match       *models.MatchRecord `json:"match"`
	Line        line.Line           `json:"ah_line"`
	LineDisplay string              `json:"ah_line_display,omitempty"`
	Handicap    coverage.Sentence   `json:"handicap"`
	Goals       coverage.Sentence   `json:"goals"`
}

// MarketAnalysis compares the current lines with the venue and general H2H precedents.
// General is nil when SameMatchNotice is set.
type MarketAnalysis struct {
	HandicapDisplay string          `json:"ah_line"`
	GoalLineDisplay string          `json:"goals_line"`
	Favorite        Favorite        `json:"favorite"`
	Venue           *PrecedentBlock `json:"venue"`
	General         *PrecedentBlock `json:"general,omitempty"`
	SameMatchNotice string          `json:"same_match_notice,omitempty"`
}

// MarketReport is the full result of one match study.
type MarketReport struct {
	RequestID   string    `json:"request_id"`
	MatchID     string    `json:"match_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	GeneratedAt time.Time `json:"generated_at"`

	Odds     CurrentOdds `json:"odds"`
	Favorite Favorite    `json:"favorite"`

	HomeStandings *models.Standings      `json:"home_standings"`
	AwayStandings *models.Standings      `json:"away_standings"`
	HomeOverUnder *models.OverUnderStats `json:"home_over_under"`
	AwayOverUnder *models.OverUnderStats `json:"away_over_under"`

	Slots  map[models.Slot]*SlotResult `json:"slots"`
	Market *MarketAnalysis             `json:"market_analysis"`

	Failures []Failure     `json:"failures,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns,omitempty"`
}

// Slot returns the result of s. It is never nil for a report made by Build.
func (r *MarketReport) Slot(s models.Slot) *SlotResult {
	return r.Slots[s]
}
