package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/dgb173/Masivo/internal/pkg/coverage"
	"github.com/dgb173/Masivo/internal/pkg/line"
	"github.com/dgb173/Masivo/internal/pkg/models"
)

// Build normalizes the current odds, designates the favorite and analyses every slot.
func Build(in Input) *MarketReport {
	odds := currentOdds(in.Odds)
	fav := favoriteOf(odds.Handicap, in.HomeTeam, in.AwayTeam)

	r := &MarketReport{
		RequestID:     uuid.NewString(),
		MatchID:       in.MatchID,
		HomeTeam:      in.HomeTeam,
		AwayTeam:      in.AwayTeam,
		GeneratedAt:   time.Now().UTC(),
		Odds:          odds,
		Favorite:      fav,
		HomeStandings: in.HomeStandings,
		AwayStandings: in.AwayStandings,
		HomeOverUnder: in.HomeOverUnder,
		AwayOverUnder: in.AwayOverUnder,
		Slots:         make(map[models.Slot]*SlotResult, len(models.AllSlots)),
		Failures:      in.Failures,
	}

	for _, s := range models.AllSlots {
		res := &SlotResult{Slot: s, Title: s.Title(), Analysis: []coverage.Sentence{coverage.MissingPrecedent()}}
		if rec := in.Precedents[s]; rec != nil {
			res.Details = rec
			res.Handicap, res.HandicapDisplay = precedentLine(rec)
			res.Stats = in.Stats[s]
			res.Analysis = []coverage.Sentence{}
			if a := coverage.PrecedentNarrative(rec, odds.Handicap, odds.GoalLine, fav.Name, in.HomeTeam); a != nil {
				res.Analysis = a
			}
		}
		r.Slots[s] = res
	}

	if sameMatch(in.Precedents[models.SlotH2HStadium], in.Precedents[models.SlotH2HGeneral]) {
		g := r.Slots[models.SlotH2HGeneral]
		g.Analysis = []coverage.Sentence{}
		g.Notice = SameMatchNotice
	}

	r.Market = marketAnalysis(in, odds, fav)
	return r
}

func currentOdds(o models.MainOdds) CurrentOdds {
	return CurrentOdds{
		HandicapRaw:     o.HandicapRaw,
		GoalLineRaw:     o.GoalLineRaw,
		Handicap:        line.Normalize(o.HandicapRaw),
		GoalLine:        line.Normalize(o.GoalLineRaw),
		HandicapDisplay: line.Format(o.HandicapRaw),
		GoalLineDisplay: line.Format(o.GoalLineRaw),
	}
}

// favoriteOf applies the site convention: a positive line favors home, a negative one away.
func favoriteOf(ah line.Line, home, away string) Favorite {
	switch {
	case ah.Valid && ah.Value > 0:
		return Favorite{Name: home, Side: coverage.RoleHome, Display: home}
	case ah.Valid && ah.Value < 0:
		return Favorite{Name: away, Side: coverage.RoleAway, Display: away}
	}
	return Favorite{Side: coverage.RoleUnknown, Display: NoFavorite}
}

func sameMatch(a, b *models.MatchRecord) bool {
	return a != nil && b != nil && a.MatchID != "" && a.MatchID == b.MatchID
}

func marketAnalysis(in Input, odds CurrentOdds, fav Favorite) *MarketAnalysis {
	if !odds.Handicap.Valid || !odds.GoalLine.Valid {
		return nil
	}
	m := &MarketAnalysis{
		HandicapDisplay: odds.HandicapDisplay,
		GoalLineDisplay: odds.GoalLineDisplay,
		Favorite:        fav,
	}

	venue := in.Precedents[models.SlotH2HStadium]
	m.Venue = precedentBlock("Precedent at this stadium", venue, odds, fav, in.HomeTeam)

	general := in.Precedents[models.SlotH2HGeneral]
	if sameMatch(venue, general) {
		m.SameMatchNotice = SameMatchNotice
	} else {
		m.General = precedentBlock("Most recent overall H2H", general, odds, fav, in.HomeTeam)
	}
	return m
}

func precedentBlock(title string, rec *models.MatchRecord, odds CurrentOdds, fav Favorite, referenceHome string) *PrecedentBlock {
	b := &PrecedentBlock{
		Title:    title,
		Match:    rec,
		Handicap: coverage.HandicapMovement(rec, odds.Handicap, fav.Name, referenceHome),
		Goals:    coverage.GoalsSummary(rec, odds.GoalLine),
	}
	if rec != nil {
		b.Line, b.LineDisplay = precedentLine(rec)
	}
	return b
}

// precedentLine is the historical handicap as used by the analysis. An empty raw line has no
// display.
func precedentLine(rec *models.MatchRecord) (line.Line, string) {
	if rec.HandicapRaw == "" {
		return line.Line{}, ""
	}
	return line.Normalize(rec.HandicapRaw), line.Format(rec.HandicapRaw)
}
