// Package coverage decides whether a previous result would have covered the current
// Asian handicap or goal line, and words that decision for the study report.
//
// Everything here is pure and safe to call from any number of goroutines.
package coverage

import "fmt"

// Verdict is the outcome of a line against a final score.
type Verdict int

const (
	// Indeterminate means the inputs could not be read (bad score, missing line).
	Indeterminate Verdict = iota
	Covered
	NotCovered
	Push
)

func (v Verdict) String() string {
	switch v {
	case Covered:
		return "covered"
	case NotCovered:
		return "not_covered"
	case Push:
		return "push"
	}
	return "indeterminate"
}

// MarshalText lets verdicts appear by name in JSON.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a verdict name.
func (v *Verdict) UnmarshalText(b []byte) error {
	switch string(b) {
	case "covered":
		*v = Covered
	case "not_covered":
		*v = NotCovered
	case "push":
		*v = Push
	case "indeterminate", "":
		*v = Indeterminate
	default:
		return fmt.Errorf("unknown verdict %q", string(b))
	}
	return nil
}

// Tone groups verdicts for styling.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// Tone returns the styling group of the verdict.
func (v Verdict) Tone() Tone {
	switch v {
	case Covered:
		return TonePositive
	case NotCovered:
		return ToneNegative
	}
	return ToneNeutral
}

// Symbols maps tones to the marker placed after a verdict label.
type Symbols struct {
	Positive string
	Negative string
	Neutral  string
}

// DefaultSymbols is the marker set used in Sentence.Text.
var DefaultSymbols = Symbols{Positive: "✅", Negative: "❌", Neutral: "🤔"}

// For returns the marker of v.
func (s Symbols) For(v Verdict) string {
	switch v.Tone() {
	case TonePositive:
		return s.Positive
	case ToneNegative:
		return s.Negative
	}
	return s.Neutral
}

// Result is a verdict with its display label ("COVERED", "UNDER", ...).
type Result struct {
	Label   string  `json:"label"`
	Verdict Verdict `json:"verdict"`
}

// Labels.
const (
	LabelCovered       = "COVERED"
	LabelNotCovered    = "NOT COVERED"
	LabelPush          = "PUSH"
	LabelOver          = "OVER"
	LabelUnder         = "UNDER"
	LabelGoalPush      = "PUSH (level)"
	LabelIndeterminate = "indeterminate"
)
