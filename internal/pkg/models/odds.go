package models

// MainOdds holds the raw opening (early) Asian handicap and goal line of the studied match,
// as printed by the site. "N/A" when the odds row is missing.
type MainOdds struct {
	HandicapRaw string `json:"ah_line_raw"`
	GoalLineRaw string `json:"goals_line_raw"`
}

// NotAvailable marks a value the site did not provide.
const NotAvailable = "N/A"
