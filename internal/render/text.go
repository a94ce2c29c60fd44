// Package render turns study results into plain text for terminals and chat.
package render

import (
	"fmt"
	"strings"

	"github.com/dgb173/Masivo/internal/pkg/coverage"
	"github.com/dgb173/Masivo/internal/pkg/line"
	"github.com/dgb173/Masivo/internal/pkg/models"
	"github.com/dgb173/Masivo/internal/pkg/report"
)

// Report renders a full study.
func Report(r *report.MarketReport) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s (match %s)\n", r.HomeTeam, r.AwayTeam, r.MatchID)
	fmt.Fprintf(&b, "AH %s | Goals %s | Favorite: %s\n", r.Odds.HandicapDisplay, r.Odds.GoalLineDisplay, r.Favorite.Display)

	if r.HomeStandings != nil || r.AwayStandings != nil {
		b.WriteString("\nStandings\n")
		writeStandings(&b, r.HomeStandings)
		writeStandings(&b, r.AwayStandings)
	}
	if r.HomeOverUnder != nil || r.AwayOverUnder != nil {
		b.WriteString("\nOver/Under\n")
		writeOverUnder(&b, r.HomeTeam, r.HomeOverUnder)
		writeOverUnder(&b, r.AwayTeam, r.AwayOverUnder)
	}

	if m := r.Market; m != nil {
		b.WriteString("\nMarket analysis\n")
		writeBlock(&b, m.Venue)
		if m.SameMatchNotice != "" {
			fmt.Fprintf(&b, "  %s\n", m.SameMatchNotice)
		} else {
			writeBlock(&b, m.General)
		}
	}

	for _, s := range models.AllSlots {
		res := r.Slot(s)
		if res == nil {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", res.Title)
		if res.Details != nil {
			fmt.Fprintf(&b, "  %s\n", matchRow(res.Details, res.HandicapDisplay))
		}
		if st := Stats(res.Stats); st != "" {
			fmt.Fprintf(&b, "  %s\n", st)
		}
		if res.Notice != "" {
			fmt.Fprintf(&b, "  %s\n", res.Notice)
		}
		writeSentences(&b, res.Analysis)
	}

	if len(r.Failures) > 0 {
		b.WriteString("\nIncomplete lookups\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  %s: %s\n", f.Task, f.Error)
		}
	}
	return b.String()
}

// Match renders one precedent row with its normalized line: "Home 2:1 Away (AH 0.5, 15-02-2025)".
// A nil record renders empty.
func Match(m *models.MatchRecord) string {
	if m == nil {
		return ""
	}
	display := ""
	if m.HandicapRaw != "" {
		display = line.Format(m.HandicapRaw)
	}
	return matchRow(m, display)
}

// matchRow prints ahDisplay as the line, never the raw site text.
func matchRow(m *models.MatchRecord, ahDisplay string) string {
	s := fmt.Sprintf("%s %s %s", m.HomeTeam, m.DisplayScore(), m.AwayTeam)
	var extra []string
	if ahDisplay != "" {
		extra = append(extra, "AH "+ahDisplay)
	}
	if m.Date != "" {
		extra = append(extra, m.Date)
	}
	if len(extra) > 0 {
		s += " (" + strings.Join(extra, ", ") + ")"
	}
	return s
}

// Stats renders progression stats on one line, home-away per stat.
func Stats(stats models.MatchStats) string {
	parts := make([]string, 0, len(stats))
	for _, l := range stats {
		parts = append(parts, fmt.Sprintf("%s %s-%s", l.Name, l.Home, l.Away))
	}
	return strings.Join(parts, " | ")
}

func writeSentences(b *strings.Builder, ss []coverage.Sentence) {
	for _, s := range ss {
		if s.Text != "" {
			fmt.Fprintf(b, "  - %s\n", s.Text)
		}
	}
}

func writeBlock(b *strings.Builder, p *report.PrecedentBlock) {
	if p == nil {
		return
	}
	if p.Match != nil {
		fmt.Fprintf(b, "  %s: %s\n", p.Title, matchRow(p.Match, p.LineDisplay))
	} else {
		fmt.Fprintf(b, "  %s:\n", p.Title)
	}
	writeSentences(b, []coverage.Sentence{p.Handicap, p.Goals})
}

func writeStandings(b *strings.Builder, st *models.Standings) {
	if st == nil {
		return
	}
	fmt.Fprintf(b, "  %s: #%s", st.Name, st.Ranking)
	if st.Total != nil {
		fmt.Fprintf(b, " | Total %s", record(st.Total))
	}
	if st.Specific != nil {
		fmt.Fprintf(b, " | %s %s", st.SpecificType, record(st.Specific))
	}
	b.WriteString("\n")
}

func record(r *models.TeamRecord) string {
	return fmt.Sprintf("%sP %sW %sD %sL %s:%s", r.Played, r.Won, r.Drawn, r.Lost, r.GoalsFor, r.GoalsAgainst)
}

func writeOverUnder(b *strings.Builder, team string, ou *models.OverUnderStats) {
	if ou == nil {
		return
	}
	fmt.Fprintf(b, "  %s: over %g%% push %g%% under %g%% (%d matches)\n", team, ou.OverPct, ou.PushPct, ou.UnderPct, ou.Total)
}

// Upcoming renders the fixture list, one match per line.
func Upcoming(ms []models.UpcomingMatch) string {
	if len(ms) == 0 {
		return "No upcoming matches with a handicap line.\n"
	}
	var b strings.Builder
	for _, m := range ms {
		fmt.Fprintf(&b, "%s  %s vs %s  AH %s  Goals %s  [%s]\n", m.Time, m.HomeTeam, m.AwayTeam, m.Handicap, m.GoalLine, m.ID)
	}
	return b.String()
}
