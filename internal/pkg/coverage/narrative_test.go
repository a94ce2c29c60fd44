package coverage

import (
	"strings"
	"testing"

	"github.com/dgb173/Masivo/internal/pkg/line"
	"github.com/dgb173/Masivo/internal/pkg/models"
)

func TestPrecedentNarrative(t *testing.T) {
	rec := &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "3-1", HandicapRaw: "0.5"}

	got := PrecedentNarrative(rec, line.Of(1), line.Of(2.5), "Home FC", "Home FC")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(got))
	}
	if got[0].Topic != TopicHandicap || got[0].Verdict != Covered {
		t.Errorf("handicap sentence = %+v", got[0])
	}
	if !strings.Contains(got[0].Text, "(3:1)") || !strings.Contains(got[0].Text, DefaultSymbols.Positive) {
		t.Errorf("handicap text = %q", got[0].Text)
	}
	if got[1].Topic != TopicGoals || got[1].Verdict != Covered || !strings.Contains(got[1].Text, "4 goals") {
		t.Errorf("goals sentence = %+v", got[1])
	}
}

func TestPrecedentNarrativeSkipsUnusableParts(t *testing.T) {
	noLine := &models.MatchRecord{HomeTeam: "A", AwayTeam: "B", ScoreRaw: "1-0", HandicapRaw: "-"}
	got := PrecedentNarrative(noLine, line.Of(0.5), line.Of(2.5), "A", "A")
	if len(got) != 1 || got[0].Topic != TopicGoals {
		t.Errorf("placeholder handicap should only yield the goals sentence, got %+v", got)
	}

	unknownScore := &models.MatchRecord{HomeTeam: "A", AwayTeam: "B", ScoreRaw: "?-?", HandicapRaw: "0.5"}
	got = PrecedentNarrative(unknownScore, line.Of(0.5), line.Of(2.5), "A", "A")
	if len(got) != 1 || got[0].Topic != TopicHandicap || got[0].Verdict != Indeterminate {
		t.Errorf("unknown score should give one indeterminate handicap sentence, got %+v", got)
	}

	if got := PrecedentNarrative(noLine, line.Line{}, line.Line{}, "A", "A"); len(got) != 0 {
		t.Errorf("no current lines should give no sentences, got %+v", got)
	}
	if got := PrecedentNarrative(nil, line.Of(1), line.Of(1), "A", "A"); got != nil {
		t.Errorf("nil precedent should give nil, got %+v", got)
	}
}

func TestHandicapMovement(t *testing.T) {
	tests := []struct {
		name     string
		rec      *models.MatchRecord
		current  line.Line
		favorite string
		want     Movement
		phrase   string
	}{
		{
			name:     "same favorite, bigger line",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "2-0", HandicapRaw: "0.5"},
			current:  line.Of(1),
			favorite: "Home FC",
			want:     MovementMoreFavored,
			phrase:   "more clearly favored",
		},
		{
			name:     "same favorite, smaller line",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "2-0", HandicapRaw: "1/1.5"},
			current:  line.Of(0.75),
			favorite: "Home FC",
			want:     MovementLessFavored,
			phrase:   "less favored",
		},
		{
			name:     "same favorite on the away side of a mirrored record",
			rec:      &models.MatchRecord{HomeTeam: "Away FC", AwayTeam: "Home FC", ScoreRaw: "0-1", HandicapRaw: "-0.5"},
			current:  line.Of(0.5),
			favorite: "Home FC",
			want:     MovementSameMagnitude,
			phrase:   "identical magnitude",
		},
		{
			name:     "favorite swapped",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "1-1", HandicapRaw: "0.5"},
			current:  line.Of(-0.5),
			favorite: "Away FC",
			want:     MovementSwapped,
			phrase:   "Total change of favoritism (previously 'Home FC'",
		},
		{
			name:     "favorite removed",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "1-1", HandicapRaw: "0.5"},
			current:  line.Of(0),
			favorite: "",
			want:     MovementRemoved,
			phrase:   "removed the favorite",
		},
		{
			name:     "favorite introduced",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "1-1", HandicapRaw: "0"},
			current:  line.Of(-0.25),
			favorite: "Away FC",
			want:     MovementIntroduced,
			phrase:   "now a clear favorite",
		},
		{
			name:     "no favorite either time",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "1-1", HandicapRaw: "0"},
			current:  line.Of(0),
			favorite: "",
			want:     MovementSameMagnitude,
			phrase:   "identical magnitude",
		},
		{
			name:     "off-grid historical line rounds to the current one",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "2-0", HandicapRaw: "1.13"},
			current:  line.Normalize("1"),
			favorite: "Home FC",
			want:     MovementSameMagnitude,
			phrase:   "identical magnitude (1 → 1)",
		},
		{
			name:     "unreadable historical line",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "1-1", HandicapRaw: "x/y"},
			current:  line.Of(0.5),
			favorite: "Home FC",
			want:     MovementUnavailable,
			phrase:   "Could not compare (historical line: -)",
		},
		{
			name:     "missing score",
			rec:      &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "?-?", HandicapRaw: "0.5"},
			current:  line.Of(0.5),
			favorite: "Home FC",
			want:     MovementNoData,
			phrase:   "not enough data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandicapMovement(tt.rec, tt.current, tt.favorite, "Home FC")
			if got.Movement != tt.want {
				t.Errorf("movement = %q, want %q (text %q)", got.Movement, tt.want, got.Text)
			}
			if !strings.Contains(got.Text, tt.phrase) {
				t.Errorf("text %q does not contain %q", got.Text, tt.phrase)
			}
		})
	}
}

func TestHandicapMovementCoverageAndShift(t *testing.T) {
	rec := &models.MatchRecord{HomeTeam: "Home FC", AwayTeam: "Away FC", ScoreRaw: "2-0", HandicapRaw: "0/0.5"}
	got := HandicapMovement(rec, line.Of(1), "Home FC", "Home FC")
	if got.Shift != "0.25 → 1" {
		t.Errorf("shift = %q", got.Shift)
	}
	if got.Verdict != Covered || got.Label != LabelCovered {
		t.Errorf("verdict = %v %q", got.Verdict, got.Label)
	}
	if !strings.HasSuffix(got.Text, "COVERED "+DefaultSymbols.Positive+".") {
		t.Errorf("text = %q", got.Text)
	}

	noCurrent := HandicapMovement(rec, line.Line{}, "", "Home FC")
	if noCurrent.Movement != MovementUnavailable || noCurrent.Verdict != Indeterminate {
		t.Errorf("missing current line: %+v", noCurrent)
	}
}

func TestGoalsSummary(t *testing.T) {
	rec := &models.MatchRecord{ScoreRaw: "1-1"}
	if got := GoalsSummary(rec, line.Of(2)); got.Verdict != Push || !strings.Contains(got.Text, "2 goals") {
		t.Errorf("push summary = %+v", got)
	}
	if got := GoalsSummary(rec, line.Line{}); got.Movement != MovementNoData {
		t.Errorf("missing goal line = %+v", got)
	}
	if got := GoalsSummary(&models.MatchRecord{ScoreRaw: "x-1"}, line.Of(2)); !strings.Contains(got.Text, "could not process") {
		t.Errorf("bad score = %+v", got)
	}
	if got := GoalsSummary(nil, line.Of(2)); got.Movement != MovementNoData {
		t.Errorf("nil record = %+v", got)
	}
}
