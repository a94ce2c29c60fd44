package coverage

import (
	"math"
	"strconv"
	"strings"
)

// HandicapTolerance absorbs float noise when a margin lands exactly on the line.
const HandicapTolerance = 0.05

// ParseScore reads a "H-A" final score.
func ParseScore(score string) (home, away int, ok bool) {
	parts := strings.Split(score, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return h, a, true
}

// EvaluateHandicap checks the handicap value against a final score.
//
// home and away are the teams of the scored record; favorite is the current favorite and
// referenceHome the home team of the studied fixture. Both are located in the record by
// name because a precedent may have the sides the other way round.
func EvaluateHandicap(score string, value float64, favorite, home, away, referenceHome string) Result {
	hg, ag, ok := ParseScore(score)
	if !ok {
		return Result{Label: LabelIndeterminate, Verdict: Indeterminate}
	}

	if value == 0 {
		refAtHome := ResolveRole(referenceHome, home, away) == RoleHome
		switch {
		case (refAtHome && hg > ag) || (!refAtHome && ag > hg):
			return Result{Label: LabelCovered, Verdict: Covered}
		case (refAtHome && ag > hg) || (!refAtHome && hg > ag):
			return Result{Label: LabelNotCovered, Verdict: NotCovered}
		}
		return Result{Label: LabelPush, Verdict: Push}
	}

	margin := ag - hg
	if ResolveRole(favorite, home, away) == RoleHome {
		margin = hg - ag
	}
	diff := float64(margin) - math.Abs(value)
	switch {
	case diff > HandicapTolerance:
		return Result{Label: LabelCovered, Verdict: Covered}
	case diff < -HandicapTolerance:
		return Result{Label: LabelNotCovered, Verdict: NotCovered}
	}
	return Result{Label: LabelPush, Verdict: Push}
}

// EvaluateGoalLine checks total goals against the goal line: over covers, under does not.
func EvaluateGoalLine(score string, value float64) Result {
	hg, ag, ok := ParseScore(score)
	if !ok {
		return Result{Label: LabelIndeterminate, Verdict: Indeterminate}
	}
	total := float64(hg + ag)
	switch {
	case total > value:
		return Result{Label: LabelOver, Verdict: Covered}
	case total < value:
		return Result{Label: LabelUnder, Verdict: NotCovered}
	}
	return Result{Label: LabelGoalPush, Verdict: Push}
}
