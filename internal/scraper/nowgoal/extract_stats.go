package nowgoal

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgb173/Masivo/internal/pkg/line"
	"github.com/dgb173/Masivo/internal/pkg/models"
)

// Standings reads team's league position from the standings block of the H2H page.
func Standings(doc *goquery.Document, team string) models.Standings {
	st := models.Standings{Name: team, Ranking: models.NotAvailable}
	section := doc.Find("div#porletP4").First()
	if section.Length() == 0 {
		return st
	}

	homeDiv := section.Find("div.home-div").First()
	guestDiv := section.Find("div.guest-div").First()
	var div *goquery.Selection
	isHome := false
	switch {
	case models.ContainsTeam(homeDiv.Text(), team):
		div, isHome = homeDiv, true
	case models.ContainsTeam(guestDiv.Text(), team):
		div = guestDiv
	default:
		return st
	}

	table := div.Find("table").First()
	if table.Length() == 0 {
		return st
	}
	specificLabel := "Away"
	st.SpecificType = "As away team"
	if isHome {
		specificLabel = "Home"
		st.SpecificType = "As home team"
	}
	if m := rankingRe.FindStringSubmatch(table.Find("a").First().Text()); m != nil {
		st.Ranking = m[1]
	}

	ftSection := false
	table.Find(`tr[align="center"]`).Each(func(_ int, row *goquery.Selection) {
		if th := row.Find("th"); th.Length() > 0 {
			ftSection = strings.Contains(th.Text(), "FT")
			return
		}
		cells := row.Find("td")
		if !ftSection || cells.Length() < 7 {
			return
		}
		text := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }
		rec := &models.TeamRecord{
			Played:       text(1),
			Won:          text(2),
			Drawn:        text(3),
			Lost:         text(4),
			GoalsFor:     text(5),
			GoalsAgainst: text(6),
		}
		switch text(0) {
		case "Total":
			st.Total = rec
		case specificLabel:
			st.Specific = rec
		}
	})
	return st
}

// OverUnder reads the over/push/under percentages of the home (table_v1) or away (table_v2)
// team's recent matches. Missing data gives zero values.
func OverUnder(doc *goquery.Document, tableID string) models.OverUnderStats {
	var out models.OverUnderStats
	doc.Find("table#" + tableID + " ul.y-bar li.group").EachWithBreak(func(_ int, g *goquery.Selection) bool {
		if !strings.Contains(g.Text(), "Over/Under Odds") {
			return true
		}
		m := ouTotalRe.FindStringSubmatch(g.Find("div.tit").Text())
		if m == nil {
			return false
		}
		total, err := strconv.Atoi(m[1])
		if err != nil {
			return false
		}
		var vals []float64
		g.Find("span.value").Each(func(_ int, v *goquery.Selection) {
			f, err := strconv.ParseFloat(strings.Trim(strings.TrimSpace(v.Text()), "%"), 64)
			if err == nil {
				vals = append(vals, f)
			}
		})
		if len(vals) == 3 {
			out = models.OverUnderStats{Total: total, OverPct: vals[0], PushPct: vals[1], UnderPct: vals[2]}
		}
		return false
	})
	return out
}

// statTitles maps the English and Spanish stat titles of the live page to canonical names.
var statTitles = map[string]string{
	"Shots":              models.StatShots,
	"Disparos":           models.StatShots,
	"Shots on Goal":      models.StatShotsOnGoal,
	"Disparos a Puerta":  models.StatShotsOnGoal,
	"Attacks":            models.StatAttacks,
	"Ataques":            models.StatAttacks,
	"Dangerous Attacks":  models.StatDangerousAttacks,
	"Ataques Peligrosos": models.StatDangerousAttacks,
}

// ProgressionStats reads shots and attacks from a match live page, in StatNames order.
func ProgressionStats(doc *goquery.Document) models.MatchStats {
	found := make(map[string]models.StatLine)
	doc.Find("div#teamTechDiv_detail ul.stat").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		name, ok := statTitles[strings.TrimSpace(li.Find("span.stat-title").First().Text())]
		if !ok {
			return
		}
		vals := li.Find("span.stat-c")
		if vals.Length() != 2 {
			return
		}
		found[name] = models.StatLine{
			Name: name,
			Home: strings.TrimSpace(vals.Eq(0).Text()),
			Away: strings.TrimSpace(vals.Eq(1).Text()),
		}
	})

	var out models.MatchStats
	for _, n := range models.StatNames {
		if l, ok := found[n]; ok {
			out = append(out, l)
		}
	}
	return out
}

// kickoffLayout is the format of the main page's data-t attribute, in UTC.
const kickoffLayout = "2006-01-02 15:04:05"

// Upcoming lists the main page fixtures that kick off at or after now, soonest first.
// Handicap and goal line are display strings, "N/A" when the row has no odds.
func Upcoming(doc *goquery.Document, now time.Time) []models.UpcomingMatch {
	type row struct {
		kickoff time.Time
		match   models.UpcomingMatch
	}
	var rows []row
	doc.Find(`tr[id^="tr1_"]`).Each(func(_ int, tr *goquery.Selection) {
		id := strings.TrimPrefix(tr.AttrOr("id", ""), "tr1_")
		if id == "" {
			return
		}
		raw, ok := tr.Find(`td[name="timeData"]`).First().Attr("data-t")
		if !ok {
			return
		}
		kickoff, err := time.Parse(kickoffLayout, strings.TrimSpace(raw))
		if err != nil || kickoff.Before(now) {
			return
		}

		m := models.UpcomingMatch{
			ID:       id,
			Time:     kickoff.Format("2006-01-02 15:04"),
			HomeTeam: anchorText(tr, "team1_"+id),
			AwayTeam: anchorText(tr, "team2_"+id),
			Handicap: models.NotAvailable,
			GoalLine: models.NotAvailable,
		}
		odds := strings.Split(tr.AttrOr("odds", ""), ",")
		if len(odds) > 2 {
			m.Handicap = line.Format(odds[2])
		}
		if len(odds) > 10 {
			m.GoalLine = line.Format(odds[10])
		}
		rows = append(rows, row{kickoff: kickoff, match: m})
	})

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].kickoff.Before(rows[j].kickoff) })
	out := make([]models.UpcomingMatch, len(rows))
	for i, r := range rows {
		out[i] = r.match
	}
	return out
}

func anchorText(tr *goquery.Selection, id string) string {
	a := tr.Find(`a[id="` + id + `"]`).First()
	if a.Length() == 0 {
		return models.NotAvailable
	}
	return strings.TrimSpace(a.Text())
}
