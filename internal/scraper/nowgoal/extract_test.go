package nowgoal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgb173/Masivo/internal/pkg/models"
)

func loadDoc(t *testing.T, name string) *goquery.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestParseMatchInfo(t *testing.T) {
	info := ParseMatchInfo(loadDoc(t, "h2h.html"))
	want := MatchInfo{HomeID: "101", AwayID: "202", LeagueID: "36", HomeName: "Home FC", AwayName: "Away FC"}
	if info != want {
		t.Errorf("ParseMatchInfo = %+v, want %+v", info, want)
	}

	empty := ParseMatchInfo(loadDoc(t, "live.html"))
	if empty.HomeName != "Home" || empty.AwayName != "Away" || empty.LeagueID != "" {
		t.Errorf("fallback info = %+v", empty)
	}
}

func TestParseMatchInfoEscapedName(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<script>var _matchInfo = { hName: 'Newell\'s Old Boys', gName: 'Rosario' };</script>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := ParseMatchInfo(doc).HomeName; got != "Newell's Old Boys" {
		t.Errorf("home name = %q", got)
	}
}

func TestParseInitialOdds(t *testing.T) {
	odds := ParseInitialOdds(loadDoc(t, "h2h.html"))
	if odds.HandicapRaw != "0/0.5" || odds.GoalLineRaw != "2.5/3" {
		t.Errorf("odds = %+v", odds)
	}
	missing := ParseInitialOdds(loadDoc(t, "live.html"))
	if missing.HandicapRaw != models.NotAvailable || missing.GoalLineRaw != models.NotAvailable {
		t.Errorf("missing odds = %+v", missing)
	}
}

func TestLastMatch(t *testing.T) {
	doc := loadDoc(t, "h2h.html")

	home := LastMatch(doc, TableHome, "Home FC", "36", true)
	if home == nil || home.MatchID != "5001" || home.AwayTeam != "Third FC" {
		t.Fatalf("last home = %+v", home)
	}
	if home.ScoreRaw != "2-0" || home.Score != "2:0" || home.HandicapRaw != "0.5" || home.Date != "15-02-2025" || home.LeagueID != "36" {
		t.Errorf("row details = %+v", home)
	}

	// Without the league filter the newer cup match wins.
	if anyLeague := LastMatch(doc, TableHome, "Home FC", "", true); anyLeague == nil || anyLeague.MatchID != "5004" {
		t.Errorf("any league = %+v", anyLeague)
	}
	// An unknown league falls back to every league.
	if fb := LastMatch(doc, TableHome, "Home FC", "77", true); fb == nil || fb.MatchID != "5004" {
		t.Errorf("fallback = %+v", fb)
	}

	away := LastMatch(doc, TableAway, "Away FC", "36", false)
	if away == nil || away.MatchID != "6001" || away.HomeTeam != "Fifth FC" {
		t.Errorf("last away = %+v", away)
	}
	if none := LastMatch(doc, TableAway, "Nobody", "36", false); none != nil {
		t.Errorf("unknown team = %+v", none)
	}
}

func TestH2H(t *testing.T) {
	venue, general := H2H(loadDoc(t, "h2h.html"), "home fc", "Away FC")
	if general == nil || general.MatchID != "8001" || general.HomeTeam != "Away FC" {
		t.Errorf("general = %+v", general)
	}
	if venue == nil || venue.MatchID != "8002" || venue.HandicapRaw != "0.5/1" || venue.ScoreRaw != "2-2" {
		t.Errorf("venue = %+v", venue)
	}

	v, g := H2H(loadDoc(t, "live.html"), "Home FC", "Away FC")
	if v != nil || g != nil {
		t.Error("page without table_v3 has no H2H")
	}
}

func TestComparativeMatch(t *testing.T) {
	doc := loadDoc(t, "h2h.html")

	a := ComparativeMatch(doc, TableHome, "Home FC", "Fifth FC", "36")
	if a == nil || a.MatchID != "5003" || a.Venue != "H" {
		t.Errorf("comparative A = %+v", a)
	}
	b := ComparativeMatch(doc, TableAway, "Away FC", "Third FC", "36")
	if b == nil || b.MatchID != "6002" || b.Venue != "H" {
		t.Errorf("comparative B = %+v", b)
	}
	if c := ComparativeMatch(doc, TableHome, "Home FC", "Fourth FC", "36"); c == nil || c.Venue != "A" {
		t.Errorf("away comparative = %+v", c)
	}
	if c := ComparativeMatch(doc, TableHome, "Home FC", models.NotAvailable, "36"); c != nil {
		t.Errorf("N/A opponent = %+v", c)
	}
}

func TestRivalInfoAndRivalH2H(t *testing.T) {
	doc := loadDoc(t, "h2h.html")

	key, rivalA, nameA, ok := RivalInfo(doc, TableHome, "36")
	if !ok || key != "5001" || rivalA != "303" || nameA != "Third FC" {
		t.Errorf("home rival = %q %q %q %v", key, rivalA, nameA, ok)
	}
	_, rivalB, nameB, ok := RivalInfo(doc, TableAway, "36")
	if !ok || rivalB != "505" || nameB != "Fifth FC" {
		t.Errorf("away rival = %q %q %v", rivalB, nameB, ok)
	}
	if _, _, _, ok := RivalInfo(doc, TableHome, "12345"); ok {
		t.Error("no row in league 12345")
	}

	rec := RivalH2H(loadDoc(t, "rival_h2h.html"), rivalA, rivalB)
	if rec == nil {
		t.Fatal("rival H2H not found")
	}
	if rec.MatchID != "7001" || rec.HomeTeam != "Fifth FC" || rec.AwayTeam != "Third FC" || rec.ScoreRaw != "1-3" || rec.HandicapRaw != "-0.25" {
		t.Errorf("rival H2H = %+v", rec)
	}
	if RivalH2H(loadDoc(t, "rival_h2h.html"), "303", "999") != nil {
		t.Error("unexpected match for unknown rival")
	}
}

func TestStandings(t *testing.T) {
	doc := loadDoc(t, "h2h.html")

	home := Standings(doc, "Home FC")
	if home.Ranking != "3" || home.SpecificType != "As home team" {
		t.Errorf("home standings = %+v", home)
	}
	if home.Total == nil || home.Total.Played != "20" || home.Total.Won != "12" || home.Total.GoalsAgainst != "18" {
		t.Errorf("home total = %+v", home.Total)
	}
	if home.Specific == nil || home.Specific.Won != "7" {
		t.Errorf("home specific = %+v", home.Specific)
	}

	away := Standings(doc, "Away FC")
	if away.Ranking != "11" || away.SpecificType != "As away team" || away.Specific == nil || away.Specific.Lost != "5" {
		t.Errorf("away standings = %+v %+v", away, away.Specific)
	}

	unknown := Standings(doc, "Nobody")
	if unknown.Ranking != models.NotAvailable || unknown.Total != nil {
		t.Errorf("unknown team = %+v", unknown)
	}
}

func TestOverUnder(t *testing.T) {
	doc := loadDoc(t, "h2h.html")
	home := OverUnder(doc, TableHome)
	if home != (models.OverUnderStats{Total: 10, OverPct: 60, PushPct: 10, UnderPct: 30}) {
		t.Errorf("home = %+v", home)
	}
	away := OverUnder(doc, TableAway)
	if away != (models.OverUnderStats{Total: 8, OverPct: 37.5, PushPct: 12.5, UnderPct: 50}) {
		t.Errorf("away = %+v", away)
	}
	if none := OverUnder(doc, TableH2H); none != (models.OverUnderStats{}) {
		t.Errorf("no bar = %+v", none)
	}
}

func TestProgressionStats(t *testing.T) {
	stats := ProgressionStats(loadDoc(t, "live.html"))
	if len(stats) != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	want := []models.StatLine{
		{Name: models.StatShots, Home: "12", Away: "7"},
		{Name: models.StatShotsOnGoal, Home: "5", Away: "2"},
		{Name: models.StatAttacks, Home: "100", Away: "90"},
	}
	for i, w := range want {
		if stats[i] != w {
			t.Errorf("stats[%d] = %+v, want %+v", i, stats[i], w)
		}
	}
	if _, ok := stats.Get(models.StatDangerousAttacks); ok {
		t.Error("incomplete stat should be skipped")
	}
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := Upcoming(loadDoc(t, "main.html"), now)
	if len(got) != 3 {
		t.Fatalf("got %d matches: %+v", len(got), got)
	}
	if got[0].ID != "9004" || got[0].Handicap != "-0.25" || got[0].GoalLine != "3" || got[0].Time != "2025-03-01 13:30" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].ID != "9003" || got[1].Handicap != models.NotAvailable {
		t.Errorf("second = %+v", got[1])
	}
	if got[2].ID != "9001" || got[2].HomeTeam != "Alpha" || got[2].AwayTeam != "Beta" || got[2].Handicap != "0.5" || got[2].GoalLine != "2.75" {
		t.Errorf("third = %+v", got[2])
	}
}
