package coverage

import (
	"fmt"
	"math"
	"strings"

	"github.com/dgb173/Masivo/internal/pkg/line"
	"github.com/dgb173/Masivo/internal/pkg/models"
)

// Topic says which market a sentence is about.
type Topic string

const (
	TopicHandicap Topic = "handicap"
	TopicGoals    Topic = "goals"
	// TopicPrecedent sentences are about the slot itself, e.g. a precedent that was not found.
	TopicPrecedent Topic = "precedent"
)

// Movement classifies how the handicap moved from a precedent to the current fixture.
type Movement string

const (
	MovementNone          Movement = ""
	MovementNoData        Movement = "no_data"
	MovementUnavailable   Movement = "unavailable"
	MovementMoreFavored   Movement = "more_favored"
	MovementLessFavored   Movement = "less_favored"
	MovementSameMagnitude Movement = "same_magnitude"
	MovementSwapped       Movement = "favorite_swapped"
	MovementRemoved       Movement = "favorite_removed"
	MovementIntroduced    Movement = "favorite_introduced"
)

// Sentence is one line of analysis. Text is the default plain rendering using
// DefaultSymbols; renderers that style by Verdict can ignore it.
type Sentence struct {
	Topic    Topic    `json:"topic"`
	Verdict  Verdict  `json:"verdict"`
	Label    string   `json:"label,omitempty"`
	Movement Movement `json:"movement,omitempty"`
	Shift    string   `json:"shift,omitempty"`
	Text     string   `json:"text"`
}

// MissingPrecedentText is the sentence for a slot whose precedent was not found.
const MissingPrecedentText = "No data: no precedent was found for this slot."

// MissingPrecedent is the single sentence of a slot without a precedent.
func MissingPrecedent() Sentence {
	return Sentence{Topic: TopicPrecedent, Verdict: Indeterminate, Movement: MovementNoData, Text: MissingPrecedentText}
}

// PrecedentNarrative states, for a precedent's real score, what the current handicap and
// goal line would have done. It yields at most two sentences, handicap first.
func PrecedentNarrative(rec *models.MatchRecord, currentAH, currentGoals line.Line, favorite, referenceHome string) []Sentence {
	if rec == nil {
		return nil
	}
	var out []Sentence

	if currentAH.Valid && rec.ScoreRaw != "" && !line.IsPlaceholder(rec.HandicapRaw) &&
		rec.HomeTeam != "" && rec.AwayTeam != "" {
		r := EvaluateHandicap(rec.ScoreRaw, currentAH.Value, favorite, rec.HomeTeam, rec.AwayTeam, referenceHome)
		out = append(out, Sentence{
			Topic:   TopicHandicap,
			Verdict: r.Verdict,
			Label:   r.Label,
			Text: fmt.Sprintf("With the result (%s), the current line would have been %s %s.",
				scoreText(rec.ScoreRaw), r.Label, DefaultSymbols.For(r.Verdict)),
		})
	}

	if currentGoals.Valid && strings.Contains(rec.ScoreRaw, "-") {
		if hg, ag, ok := ParseScore(rec.ScoreRaw); ok {
			r := EvaluateGoalLine(rec.ScoreRaw, currentGoals.Value)
			out = append(out, Sentence{
				Topic:   TopicGoals,
				Verdict: r.Verdict,
				Label:   r.Label,
				Text: fmt.Sprintf("The match had %d goals, so the current line would have ended %s %s.",
					hg+ag, r.Label, DefaultSymbols.For(r.Verdict)),
			})
		}
	}
	return out
}

// HandicapMovement compares the precedent's handicap with the current one, then states
// whether the current line would have covered on the precedent's score.
func HandicapMovement(rec *models.MatchRecord, currentAH line.Line, favorite, referenceHome string) Sentence {
	if !rec.HasScore() || line.IsPlaceholder(rec.HandicapRaw) {
		return Sentence{
			Topic:    TopicHandicap,
			Verdict:  Indeterminate,
			Movement: MovementNoData,
			Text:     "Handicap: not enough data in this precedent.",
		}
	}

	s := Sentence{Topic: TopicHandicap}
	var comparison string
	historical := line.Normalize(rec.HandicapRaw)
	if historical.Valid && currentAH.Valid {
		s.Shift = fmt.Sprintf("%s → %s", line.FormatValue(historical.Value), line.FormatValue(currentAH.Value))
		s.Movement, comparison = classifyMovement(rec, historical.Value, currentAH.Value, favorite, s.Shift)
	} else {
		s.Movement = MovementUnavailable
		comparison = fmt.Sprintf("Could not compare (historical line: %s). ", line.Format(rec.HandicapRaw))
	}

	r := Result{Label: LabelIndeterminate, Verdict: Indeterminate}
	if currentAH.Valid {
		r = EvaluateHandicap(rec.ScoreRaw, currentAH.Value, favorite, rec.HomeTeam, rec.AwayTeam, referenceHome)
	}
	s.Verdict, s.Label = r.Verdict, r.Label
	s.Text = fmt.Sprintf("Handicap: %sWith the result (%s), the current line would have been %s %s.",
		comparison, scoreText(rec.ScoreRaw), r.Label, DefaultSymbols.For(r.Verdict))
	return s
}

func classifyMovement(rec *models.MatchRecord, historical, current float64, favorite, shift string) (Movement, string) {
	var histFavorite string
	histRole := RoleUnknown
	switch {
	case historical > 0:
		histFavorite, histRole = rec.HomeTeam, RoleHome
	case historical < 0:
		histFavorite, histRole = rec.AwayTeam, RoleAway
	}

	sameFavorite := (histRole != RoleUnknown && ResolveRole(favorite, rec.HomeTeam, rec.AwayTeam) == histRole) ||
		(histRole == RoleUnknown && favorite == "")
	if sameFavorite {
		switch {
		case math.Abs(current) > math.Abs(historical):
			return MovementMoreFavored, fmt.Sprintf("The market sees it as more clearly favored (movement: %s). ", shift)
		case math.Abs(current) < math.Abs(historical):
			return MovementLessFavored, fmt.Sprintf("The market sees it as less favored (movement: %s). ", shift)
		}
		return MovementSameMagnitude, fmt.Sprintf("The line keeps an identical magnitude (%s). ", shift)
	}

	switch {
	case histRole != RoleUnknown && favorite != "":
		return MovementSwapped, fmt.Sprintf("Total change of favoritism (previously '%s', movement: %s). ", histFavorite, shift)
	case histRole == RoleUnknown:
		return MovementIntroduced, fmt.Sprintf("There is now a clear favorite (movement: %s). ", shift)
	}
	return MovementRemoved, fmt.Sprintf("The market has removed the favorite, previously '%s' (movement: %s). ", histFavorite, shift)
}

// GoalsSummary states how many goals the precedent had and what the current goal line
// would have done.
func GoalsSummary(rec *models.MatchRecord, currentGoals line.Line) Sentence {
	if !rec.HasScore() || !currentGoals.Valid {
		return Sentence{Topic: TopicGoals, Movement: MovementNoData, Text: "Goals: not enough data."}
	}
	hg, ag, ok := ParseScore(rec.ScoreRaw)
	if !ok {
		return Sentence{Topic: TopicGoals, Text: "Goals: could not process the precedent's result."}
	}
	r := EvaluateGoalLine(rec.ScoreRaw, currentGoals.Value)
	return Sentence{
		Topic:   TopicGoals,
		Verdict: r.Verdict,
		Label:   r.Label,
		Text: fmt.Sprintf("Goals: the match had %d goals, so the current line would have ended %s %s.",
			hg+ag, r.Label, DefaultSymbols.For(r.Verdict)),
	}
}

func scoreText(raw string) string {
	return strings.ReplaceAll(raw, "-", ":")
}
