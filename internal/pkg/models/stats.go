package models

// Canonical progression stat names.
const (
	StatShots            = "Shots"
	StatShotsOnGoal      = "Shots on Goal"
	StatAttacks          = "Attacks"
	StatDangerousAttacks = "Dangerous Attacks"
)

// StatNames lists the progression stats in display order.
var StatNames = []string{StatShots, StatShotsOnGoal, StatAttacks, StatDangerousAttacks}

// StatLine is one home/away stat pair.
type StatLine struct {
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}

// MatchStats are the progression stats found for a match, in StatNames order.
type MatchStats []StatLine

// Get returns the named stat line.
func (s MatchStats) Get(name string) (StatLine, bool) {
	for _, l := range s {
		if l.Name == name {
			return l, true
		}
	}
	return StatLine{}, false
}

// TeamRecord is one full-time standings row.
type TeamRecord struct {
	Played       string `json:"played"`
	Won          string `json:"won"`
	Drawn        string `json:"drawn"`
	Lost         string `json:"lost"`
	GoalsFor     string `json:"goals_for"`
	GoalsAgainst string `json:"goals_against"`
}

// Standings is a team's league position plus its total and home-or-away records.
type Standings struct {
	Name         string      `json:"name"`
	Ranking      string      `json:"ranking"`
	SpecificType string      `json:"specific_type,omitempty"`
	Total        *TeamRecord `json:"total,omitempty"`
	Specific     *TeamRecord `json:"specific,omitempty"`
}

// OverUnderStats are the over/push/under percentages of a team's recent matches.
type OverUnderStats struct {
	Total    int     `json:"total"`
	OverPct  float64 `json:"over_pct"`
	PushPct  float64 `json:"push_pct"`
	UnderPct float64 `json:"under_pct"`
}
