package models

import "strings"

// UnknownScore is the score_raw sentinel for rows whose score could not be read.
const UnknownScore = "?-?"

// MatchRecord is one scraped match row: a previous meeting, a team's last match or a
// comparative match. It is built once per row and not modified afterwards.
type MatchRecord struct {
	MatchID     string `json:"match_id,omitempty"`
	LeagueID    string `json:"league_id,omitempty"`
	Date        string `json:"date,omitempty"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Score       string `json:"score"`
	ScoreRaw    string `json:"score_raw"`
	HandicapRaw string `json:"handicap_line_raw"`
	// Venue is "H" or "A" for comparative matches: where the studied team played.
	Venue string `json:"venue,omitempty"`
}

// HasScore reports whether the row carries a readable final score.
func (r *MatchRecord) HasScore() bool {
	return r != nil && r.ScoreRaw != "" && r.ScoreRaw != UnknownScore
}

// DisplayScore returns the score as "H:A".
func (r *MatchRecord) DisplayScore() string {
	if r == nil {
		return "?:?"
	}
	if r.Score != "" {
		return r.Score
	}
	return strings.ReplaceAll(r.ScoreRaw, "-", ":")
}

// UpcomingMatch is one row of the site's fixture list.
type UpcomingMatch struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Handicap string `json:"handicap"`
	GoalLine string `json:"goal_line"`
}
