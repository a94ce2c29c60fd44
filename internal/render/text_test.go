package render

import (
	"strings"
	"testing"

	"github.com/dgb173/Masivo/internal/pkg/coverage"
	"github.com/dgb173/Masivo/internal/pkg/models"
	"github.com/dgb173/Masivo/internal/pkg/report"
)

func sampleReport() *report.MarketReport {
	venue := &models.MatchRecord{MatchID: "21", HomeTeam: "Home FC", AwayTeam: "Away FC", Score: "1:1", ScoreRaw: "1-1", HandicapRaw: "-0/0.5"}
	return report.Build(report.Input{
		MatchID:  "123",
		HomeTeam: "Home FC",
		AwayTeam: "Away FC",
		Odds:     models.MainOdds{HandicapRaw: "0/0.5", GoalLineRaw: "2.5/3"},
		HomeStandings: &models.Standings{Name: "Home FC", Ranking: "3", SpecificType: "As home team",
			Total: &models.TeamRecord{Played: "20", Won: "12", Drawn: "3", Lost: "5", GoalsFor: "30", GoalsAgainst: "18"}},
		HomeOverUnder: &models.OverUnderStats{Total: 10, OverPct: 60, PushPct: 10, UnderPct: 30},
		Precedents: map[models.Slot]*models.MatchRecord{
			models.SlotH2HStadium: venue,
			models.SlotH2HGeneral: venue,
		},
		Stats: map[models.Slot]models.MatchStats{
			models.SlotH2HStadium: {{Name: models.StatShots, Home: "10", Away: "7"}},
		},
		Failures: []report.Failure{{Task: "precedents/rival_h2h", Error: "timeout"}},
	})
}

func TestReport(t *testing.T) {
	out := Report(sampleReport())

	for _, want := range []string{
		"Home FC vs Away FC (match 123)",
		"AH 0.25 | Goals 2.75 | Favorite: Home FC",
		"Home FC: #3 | Total 20P 12W 3D 5L 30:18",
		"Home FC: over 60% push 10% under 30% (10 matches)",
		"Precedent at this stadium: Home FC 1:1 Away FC (AH -0.25)",
		"  Home FC 1:1 Away FC (AH -0.25)\n",
		report.SameMatchNotice,
		"Shots 10-7",
		"precedents/rival_h2h: timeout",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "-0/0.5") {
		t.Errorf("raw site line leaked into the report:\n%s", out)
	}
	if strings.Contains(out, "Most recent overall H2H") {
		t.Error("general block rendered despite same match")
	}
	// Every slot title appears, empty ones with the sentence the report carries.
	for _, s := range models.AllSlots {
		if !strings.Contains(out, s.Title()) {
			t.Errorf("missing slot %s", s)
		}
	}
	if strings.Count(out, coverage.MissingPrecedentText) != len(models.AllSlots)-2 {
		t.Errorf("expected %d empty slots:\n%s", len(models.AllSlots)-2, out)
	}
}

func TestReportNil(t *testing.T) {
	if Report(nil) != "" {
		t.Error("nil report should render empty")
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		rec  *models.MatchRecord
		want string
	}{
		{nil, ""},
		{&models.MatchRecord{HomeTeam: "A", AwayTeam: "B", ScoreRaw: "2-1"}, "A 2:1 B"},
		{&models.MatchRecord{HomeTeam: "A", AwayTeam: "B", Score: "0:0", HandicapRaw: "-0.25", Date: "01-02-2025"}, "A 0:0 B (AH -0.25, 01-02-2025)"},
		{&models.MatchRecord{HomeTeam: "A", AwayTeam: "B", Score: "1:0", HandicapRaw: "-0/0.5"}, "A 1:0 B (AH -0.25)"},
		{&models.MatchRecord{HomeTeam: "A", AwayTeam: "B", Score: "1:0", HandicapRaw: "1/1.5"}, "A 1:0 B (AH 1.25)"},
	}
	for _, tt := range tests {
		if got := Match(tt.rec); got != tt.want {
			t.Errorf("Match(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}

func TestUpcoming(t *testing.T) {
	if got := Upcoming(nil); !strings.HasPrefix(got, "No upcoming") {
		t.Errorf("Upcoming(nil) = %q", got)
	}
	got := Upcoming([]models.UpcomingMatch{{ID: "9", Time: "2025-03-01 13:30", HomeTeam: "A", AwayTeam: "B", Handicap: "0.5", GoalLine: "2.5"}})
	if got != "2025-03-01 13:30  A vs B  AH 0.5  Goals 2.5  [9]\n" {
		t.Errorf("Upcoming = %q", got)
	}
}

func TestReportEmptySlotUsesReportSentence(t *testing.T) {
	r := report.Build(report.Input{MatchID: "1", HomeTeam: "A", AwayTeam: "B"})
	r.Slot(models.SlotLastHome).Analysis = []coverage.Sentence{{Text: "nothing on record"}}

	out := Report(r)
	if !strings.Contains(out, models.SlotLastHome.Title()+"\n  - nothing on record\n") {
		t.Errorf("empty slot should print its own sentence:\n%s", out)
	}
	if strings.Count(out, coverage.MissingPrecedentText) != len(models.AllSlots)-1 {
		t.Errorf("expected %d missing precedent sentences:\n%s", len(models.AllSlots)-1, out)
	}
}
