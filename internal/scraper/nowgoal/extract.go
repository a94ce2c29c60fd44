// Package nowgoal reads the nowgoal odds site: plain and browser-rendered page fetching, a
// cached page source and goquery extractors for every table a match study uses.
package nowgoal

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgb173/Masivo/internal/pkg/models"
)

// Table ids of the H2H page.
const (
	TableHome = "table_v1" // home team's recent matches
	TableAway = "table_v2" // away team's recent matches
	TableH2H  = "table_v3" // previous meetings
)

var (
	scoreRe    = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	dateRe     = regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`)
	teamIDRe   = regexp.MustCompile(`team\((\d+)\)`)
	rankingRe  = regexp.MustCompile(`\[.*?-(\d+)\]`)
	ouTotalRe  = regexp.MustCompile(`\((\d+)`)
	homeIDRe   = regexp.MustCompile(`hId:\s*parseInt\('(\d+)'\)`)
	awayIDRe   = regexp.MustCompile(`gId:\s*parseInt\('(\d+)'\)`)
	leagueIDRe = regexp.MustCompile(`sclassId:\s*parseInt\('(\d+)'\)`)
	homeNameRe = regexp.MustCompile(`hName:\s*'((?:\\'|[^'])*)'`)
	awayNameRe = regexp.MustCompile(`gName:\s*'((?:\\'|[^'])*)'`)
)

// MatchInfo is the studied fixture as declared in the page's _matchInfo script.
type MatchInfo struct {
	HomeID   string
	AwayID   string
	LeagueID string
	HomeName string
	AwayName string
}

// ParseMatchInfo reads the _matchInfo script. Missing names fall back to "Home" and "Away".
func ParseMatchInfo(doc *goquery.Document) MatchInfo {
	info := MatchInfo{HomeName: "Home", AwayName: "Away"}
	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := s.Text(); strings.Contains(t, "var _matchInfo =") {
			script = t
			return false
		}
		return true
	})
	if script == "" {
		return info
	}

	find := func(re *regexp.Regexp) string {
		if m := re.FindStringSubmatch(script); m != nil {
			return strings.ReplaceAll(m[1], `\'`, "'")
		}
		return ""
	}
	info.HomeID = find(homeIDRe)
	info.AwayID = find(awayIDRe)
	info.LeagueID = find(leagueIDRe)
	if n := find(homeNameRe); n != "" {
		info.HomeName = n
	}
	if n := find(awayNameRe); n != "" {
		info.AwayName = n
	}
	return info
}

// ParseInitialOdds reads the opening Bet365 handicap and goal line.
func ParseInitialOdds(doc *goquery.Document) models.MainOdds {
	odds := models.MainOdds{HandicapRaw: models.NotAvailable, GoalLineRaw: models.NotAvailable}
	row := doc.Find(`tr#tr_o_1_8[name="earlyOdds"], tr#tr_o_1_31[name="earlyOdds"]`).First()
	cells := row.Find("td")
	if cells.Length() > 9 {
		odds.HandicapRaw = cellValue(cells.Eq(3))
		odds.GoalLineRaw = cellValue(cells.Eq(9))
	}
	return odds
}

// cellValue prefers the data-o attribute, where the site keeps the unformatted line.
func cellValue(s *goquery.Selection) string {
	if v, ok := s.Attr("data-o"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(s.Text())
}

// parseRow reads one match row of a history table. Rows with fewer than 12 cells are not
// match rows.
func parseRow(row *goquery.Selection, scoreClass string) (*models.MatchRecord, bool) {
	cells := row.Find("td")
	if cells.Length() < 12 {
		return nil, false
	}

	rec := &models.MatchRecord{
		HomeTeam: teamName(cells.Eq(2)),
		AwayTeam: teamName(cells.Eq(4)),
		ScoreRaw: models.UnknownScore,
		Score:    "?:?",
	}

	scoreCell := cells.Eq(3)
	scoreText := strings.TrimSpace(scoreCell.Find(`span[class*="` + scoreClass + `"]`).First().Text())
	if scoreText == "" {
		scoreText = strings.TrimSpace(scoreCell.Text())
	}
	if m := scoreRe.FindStringSubmatch(scoreText); m != nil {
		rec.ScoreRaw = m[1] + "-" + m[2]
		rec.Score = m[1] + ":" + m[2]
	}

	rec.HandicapRaw = cellValue(cells.Eq(11))
	if rec.HandicapRaw == "" {
		rec.HandicapRaw = "-"
	}
	rec.MatchID, _ = row.Attr("index")
	rec.LeagueID, _ = row.Attr("name")
	rec.Date = strings.TrimSpace(cells.Eq(1).Find(`span[name="timeData"]`).First().Text())
	return rec, true
}

func teamName(cell *goquery.Selection) string {
	if a := cell.Find("a").First(); a.Length() > 0 {
		return strings.TrimSpace(a.Text())
	}
	return strings.TrimSpace(cell.Text())
}

// parseDate reads a dd-mm-yyyy date; unknown dates sort as oldest.
func parseDate(s string) time.Time {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}
	}
	t, err := time.Parse("02-01-2006", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}
	}
	return t
}

func sortNewestFirst(recs []*models.MatchRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return parseDate(recs[i].Date).After(parseDate(recs[j].Date))
	})
}

func scoreClassFor(tableID string) string {
	switch tableID {
	case TableHome:
		return "fscore_1"
	case TableAway:
		return "fscore_2"
	}
	return "fscore_3"
}

// historyRows returns the match rows of a team table: tr1_N in table_v1, tr2_N in table_v2.
func historyRows(doc *goquery.Document, tableID string) []*models.MatchRecord {
	prefix := "tr" + tableID[len(tableID)-1:] + "_"
	class := scoreClassFor(tableID)
	var out []*models.MatchRecord
	doc.Find("table#" + tableID + " tr").Each(func(_ int, row *goquery.Selection) {
		id, _ := row.Attr("id")
		if !strings.HasPrefix(id, prefix) || !isDigits(strings.TrimPrefix(id, prefix)) {
			return
		}
		if rec, ok := parseRow(row, class); ok {
			out = append(out, rec)
		}
	})
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LastMatch returns the most recent match in tableID where team played at home (isHome) or
// away. Matches of leagueID are preferred; any league is used when none is found.
func LastMatch(doc *goquery.Document, tableID, team, leagueID string, isHome bool) *models.MatchRecord {
	rows := historyRows(doc, tableID)
	find := func(league string) []*models.MatchRecord {
		var out []*models.MatchRecord
		for _, r := range rows {
			if league != "" && r.LeagueID != league {
				continue
			}
			if (isHome && models.ContainsTeam(r.HomeTeam, team)) || (!isHome && models.ContainsTeam(r.AwayTeam, team)) {
				out = append(out, r)
			}
		}
		return out
	}

	candidates := find(leagueID)
	if len(candidates) == 0 && leagueID != "" {
		candidates = find("")
	}
	if len(candidates) == 0 {
		return nil
	}
	sortNewestFirst(candidates)
	return candidates[0]
}

// H2H returns the latest meeting with the same home and away teams as the studied fixture
// (venue) and the latest meeting overall (general).
func H2H(doc *goquery.Document, home, away string) (venue, general *models.MatchRecord) {
	var recs []*models.MatchRecord
	doc.Find("table#" + TableH2H + " tr").Each(func(_ int, row *goquery.Selection) {
		if rec, ok := parseRow(row, scoreClassFor(TableH2H)); ok {
			recs = append(recs, rec)
		}
	})
	if len(recs) == 0 {
		return nil, nil
	}
	sortNewestFirst(recs)
	general = recs[0]
	for _, r := range recs {
		if models.SameTeam(r.HomeTeam, home) && models.SameTeam(r.AwayTeam, away) {
			venue = r
			break
		}
	}
	return venue, general
}

// ComparativeMatch finds, in mainTeam's table, a match between mainTeam and opponent. Venue
// is "H" when mainTeam was at home.
func ComparativeMatch(doc *goquery.Document, tableID, mainTeam, opponent, leagueID string) *models.MatchRecord {
	if mainTeam == "" || opponent == "" || opponent == models.NotAvailable {
		return nil
	}
	for _, r := range historyRows(doc, tableID) {
		if leagueID != "" && r.LeagueID != "" && r.LeagueID != leagueID {
			continue
		}
		switch {
		case models.SameTeam(r.HomeTeam, mainTeam) && models.SameTeam(r.AwayTeam, opponent):
			r.Venue = "H"
			return r
		case models.SameTeam(r.AwayTeam, mainTeam) && models.SameTeam(r.HomeTeam, opponent):
			r.Venue = "A"
			return r
		}
	}
	return nil
}

// RivalInfo reads the first league row of a team table and returns its match id plus the id
// and name of the rival: the away side in table_v1, the home side in table_v2.
func RivalInfo(doc *goquery.Document, tableID, leagueID string) (keyMatchID, rivalID, rivalName string, ok bool) {
	rivalIdx := 0
	if tableID == TableHome {
		rivalIdx = 1
	}
	doc.Find("table#" + tableID + ` tr[vs="1"]`).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if name, _ := row.Attr("name"); leagueID != "" && name != leagueID {
			return true
		}
		key, _ := row.Attr("index")
		links := row.Find("a[onclick]")
		if key == "" || links.Length() <= rivalIdx {
			return true
		}
		link := links.Eq(rivalIdx)
		onclick, _ := link.Attr("onclick")
		m := teamIDRe.FindStringSubmatch(onclick)
		if m == nil {
			return true
		}
		keyMatchID, rivalID, rivalName, ok = key, m[1], strings.TrimSpace(link.Text()), true
		return false
	})
	return
}

// RivalH2H finds, on the key match's H2H page, a meeting between the two rival team ids.
func RivalH2H(doc *goquery.Document, rivalA, rivalB string) *models.MatchRecord {
	if rivalA == "" || rivalB == "" {
		return nil
	}
	var found *models.MatchRecord
	doc.Find("table#" + TableAway + " tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		id, _ := row.Attr("id")
		if !strings.HasPrefix(id, "tr2_") || !isDigits(strings.TrimPrefix(id, "tr2_")) {
			return true
		}
		links := row.Find("a[onclick]")
		if links.Length() < 2 {
			return true
		}
		h := teamIDRe.FindStringSubmatch(links.Eq(0).AttrOr("onclick", ""))
		a := teamIDRe.FindStringSubmatch(links.Eq(1).AttrOr("onclick", ""))
		if h == nil || a == nil {
			return true
		}
		if !((h[1] == rivalA && a[1] == rivalB) || (h[1] == rivalB && a[1] == rivalA)) {
			return true
		}

		score := strings.TrimSpace(row.Find("span.fscore_2").First().Text())
		score = strings.TrimSpace(strings.SplitN(score, "(", 2)[0])
		m := scoreRe.FindStringSubmatch(score)
		if m == nil {
			return true
		}

		rec := &models.MatchRecord{
			HomeTeam: strings.TrimSpace(links.Eq(0).Text()),
			AwayTeam: strings.TrimSpace(links.Eq(1).Text()),
			ScoreRaw: m[1] + "-" + m[2],
			Score:    m[1] + ":" + m[2],
			MatchID:  row.AttrOr("index", ""),
			LeagueID: row.AttrOr("name", ""),
		}
		if cells := row.Find("td"); cells.Length() > 11 {
			rec.HandicapRaw = cellValue(cells.Eq(11))
		}
		if rec.HandicapRaw == "" {
			rec.HandicapRaw = "-"
		}
		found = rec
		return false
	})
	return found
}
