// Package study runs one match study: it loads the match's H2H page, extracts every precedent
// in dependency-ordered phases and hands the result to report.Build.
package study

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dgb173/Masivo/internal/pkg/config"
	"github.com/dgb173/Masivo/internal/pkg/models"
	"github.com/dgb173/Masivo/internal/pkg/performance"
	"github.com/dgb173/Masivo/internal/pkg/report"
	"github.com/dgb173/Masivo/internal/pkg/taskgraph"
	"github.com/dgb173/Masivo/internal/scraper/nowgoal"
)

var (
	// ErrUpstream means the page a request cannot do without was unavailable.
	ErrUpstream = errors.New("upstream unavailable")
	// ErrInvalidMatchID is returned for ids that are not all digits.
	ErrInvalidMatchID = errors.New("invalid match id")
)

// PageSource provides the raw site pages. *nowgoal.Site implements it.
type PageSource interface {
	H2HPage(ctx context.Context, matchID string) ([]byte, error)
	RivalH2HPage(ctx context.Context, keyMatchID string) ([]byte, error)
	LivePage(ctx context.Context, matchID string) ([]byte, error)
	MainPage(ctx context.Context) ([]byte, error)
}

// Service runs match studies and fixture listings against a PageSource. It is safe for
// concurrent use.
type Service struct {
	pages   PageSource
	cfg     config.StudyConfig
	tracker *performance.Tracker
	now     func() time.Time
}

// New returns a Service reading pages from pages. A nil tracker uses the global one.
func New(pages PageSource, cfg config.StudyConfig, tracker *performance.Tracker) *Service {
	if tracker == nil {
		tracker = performance.GetTracker()
	}
	return &Service{pages: pages, cfg: cfg, tracker: tracker, now: time.Now}
}

// ValidMatchID reports whether id looks like a site match id.
func ValidMatchID(id string) bool {
	if id == "" || len(id) > 12 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseDoc(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// Study builds the market report of matchID. Only a missing H2H page fails the request;
// every other lookup that fails leaves its slot empty and is listed in the report's failures.
func (s *Service) Study(ctx context.Context, matchID string) (*report.MarketReport, error) {
	if !ValidMatchID(matchID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMatchID, matchID)
	}
	start := time.Now()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	body, err := s.pages.H2HPage(ctx, matchID)
	if err != nil {
		s.tracker.RecordStudy(matchID, time.Since(start), len(models.AllSlots), 0, 0, false)
		return nil, fmt.Errorf("%w: h2h page of %s: %w", ErrUpstream, matchID, err)
	}
	doc, err := parseDoc(body)
	if err != nil {
		s.tracker.RecordStudy(matchID, time.Since(start), len(models.AllSlots), 0, 0, false)
		return nil, fmt.Errorf("%w: parse h2h page of %s: %w", ErrUpstream, matchID, err)
	}

	st := newState(matchID, doc)
	res := s.graph(st).Run(ctx)

	in := st.input()
	for _, f := range res.Failures {
		in.Failures = append(in.Failures, report.Failure{Task: f.Phase + "/" + f.Task, Error: f.Err.Error()})
	}
	r := report.Build(in)
	r.Elapsed = time.Since(start)

	found := 0
	for _, slot := range models.AllSlots {
		if r.Slot(slot).Details != nil {
			found++
		}
	}
	s.tracker.RecordStudy(matchID, r.Elapsed, len(models.AllSlots), found, len(res.Failures), true)
	slog.Info("Study finished", "match_id", matchID, "home", in.HomeTeam, "away", in.AwayTeam,
		"slots_found", found, "failures", len(res.Failures), "duration", r.Elapsed)
	return r, nil
}

func (s *Service) graph(st *state) *taskgraph.Graph {
	g := taskgraph.New(taskgraph.Options{
		MaxWorkers: s.cfg.MaxWorkers,
		OnError: func(phase, task string, err error) {
			slog.Warn("Study task failed", "match_id", st.matchID, "phase", phase, "task", task, "error", err)
		},
		OnPhaseDone: s.tracker.RecordPhase,
	})

	g.Then("precedents",
		taskgraph.Task{Name: "standings", Run: st.standings},
		taskgraph.Task{Name: "over_under", Run: st.overUnder},
		taskgraph.Task{Name: "last_home", Run: st.lastHome},
		taskgraph.Task{Name: "last_away", Run: st.lastAway},
		taskgraph.Task{Name: "h2h", Run: st.h2h},
		taskgraph.Task{Name: "rival_h2h", Run: func(ctx context.Context) error { return st.rivalH2H(ctx, s.pages) }},
	)
	g.Then("comparatives",
		taskgraph.Task{Name: "comparative_a", Run: st.comparativeA},
		taskgraph.Task{Name: "comparative_b", Run: st.comparativeB},
	)

	// Stat tasks are known only once the precedents are, so the phase holds one task that fans
	// out on its own.
	g.Then("stats", taskgraph.Task{Name: "progression", Run: func(ctx context.Context) error {
		return st.progression(ctx, s.pages, s.cfg.MaxWorkers)
	}})
	return g
}

// state is what the study's tasks share. Phases never write the same field concurrently but
// the mutex keeps the maps safe.
type state struct {
	matchID string
	doc     *goquery.Document
	info    nowgoal.MatchInfo
	odds    models.MainOdds

	mu         sync.Mutex
	precedents map[models.Slot]*models.MatchRecord
	stats      map[models.Slot]models.MatchStats
	homeSt     *models.Standings
	awaySt     *models.Standings
	homeOU     *models.OverUnderStats
	awayOU     *models.OverUnderStats
}

func newState(matchID string, doc *goquery.Document) *state {
	return &state{
		matchID:    matchID,
		doc:        doc,
		info:       nowgoal.ParseMatchInfo(doc),
		odds:       nowgoal.ParseInitialOdds(doc),
		precedents: make(map[models.Slot]*models.MatchRecord),
		stats:      make(map[models.Slot]models.MatchStats),
	}
}

func (st *state) set(slot models.Slot, rec *models.MatchRecord) {
	if rec == nil {
		return
	}
	st.mu.Lock()
	st.precedents[slot] = rec
	st.mu.Unlock()
}

func (st *state) get(slot models.Slot) *models.MatchRecord {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.precedents[slot]
}

func (st *state) standings(context.Context) error {
	home := nowgoal.Standings(st.doc, st.info.HomeName)
	away := nowgoal.Standings(st.doc, st.info.AwayName)
	st.mu.Lock()
	defer st.mu.Unlock()
	if home.Total != nil || home.Specific != nil {
		st.homeSt = &home
	}
	if away.Total != nil || away.Specific != nil {
		st.awaySt = &away
	}
	return nil
}

func (st *state) overUnder(context.Context) error {
	home := nowgoal.OverUnder(st.doc, nowgoal.TableHome)
	away := nowgoal.OverUnder(st.doc, nowgoal.TableAway)
	st.mu.Lock()
	defer st.mu.Unlock()
	if home.Total > 0 {
		st.homeOU = &home
	}
	if away.Total > 0 {
		st.awayOU = &away
	}
	return nil
}

func (st *state) lastHome(context.Context) error {
	st.set(models.SlotLastHome, nowgoal.LastMatch(st.doc, nowgoal.TableHome, st.info.HomeName, st.info.LeagueID, true))
	return nil
}

func (st *state) lastAway(context.Context) error {
	st.set(models.SlotLastAway, nowgoal.LastMatch(st.doc, nowgoal.TableAway, st.info.AwayName, st.info.LeagueID, false))
	return nil
}

func (st *state) h2h(context.Context) error {
	venue, general := nowgoal.H2H(st.doc, st.info.HomeName, st.info.AwayName)
	st.set(models.SlotH2HStadium, venue)
	st.set(models.SlotH2HGeneral, general)
	return nil
}

func (st *state) rivalH2H(ctx context.Context, pages PageSource) error {
	key, rivalA, _, okA := nowgoal.RivalInfo(st.doc, nowgoal.TableHome, st.info.LeagueID)
	_, rivalB, _, okB := nowgoal.RivalInfo(st.doc, nowgoal.TableAway, st.info.LeagueID)
	if !okA || !okB {
		return nil
	}
	body, err := pages.RivalH2HPage(ctx, key)
	if err != nil {
		return err
	}
	doc, err := parseDoc(body)
	if err != nil {
		return fmt.Errorf("parse rival h2h page %s: %w", key, err)
	}
	st.set(models.SlotRivalH2H, nowgoal.RivalH2H(doc, rivalA, rivalB))
	return nil
}

// comparativeA looks for the home team against the opponent of the away team's last away match.
func (st *state) comparativeA(context.Context) error {
	if last := st.get(models.SlotLastAway); last != nil {
		st.set(models.SlotComparativeA, nowgoal.ComparativeMatch(st.doc, nowgoal.TableHome, st.info.HomeName, last.HomeTeam, st.info.LeagueID))
	}
	return nil
}

// comparativeB looks for the away team against the opponent of the home team's last home match.
func (st *state) comparativeB(context.Context) error {
	if last := st.get(models.SlotLastHome); last != nil {
		st.set(models.SlotComparativeB, nowgoal.ComparativeMatch(st.doc, nowgoal.TableAway, st.info.AwayName, last.AwayTeam, st.info.LeagueID))
	}
	return nil
}

// progression loads the live page of every found precedent. A page shared by two slots is
// read once. Failed pages leave the slot without stats.
func (st *state) progression(ctx context.Context, pages PageSource, workers int) error {
	bySlot := make(map[string][]models.Slot)
	var ids []string
	for _, slot := range models.AllSlots {
		rec := st.get(slot)
		if rec == nil || !ValidMatchID(rec.MatchID) {
			continue
		}
		if _, seen := bySlot[rec.MatchID]; !seen {
			ids = append(ids, rec.MatchID)
		}
		bySlot[rec.MatchID] = append(bySlot[rec.MatchID], slot)
	}

	tasks := make([]taskgraph.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, taskgraph.Task{Name: "live_" + id, Run: func(ctx context.Context) error {
			body, err := pages.LivePage(ctx, id)
			if err != nil {
				return err
			}
			doc, err := parseDoc(body)
			if err != nil {
				return fmt.Errorf("parse live page %s: %w", id, err)
			}
			stats := nowgoal.ProgressionStats(doc)
			if len(stats) == 0 {
				return nil
			}
			st.mu.Lock()
			for _, slot := range bySlot[id] {
				st.stats[slot] = stats
			}
			st.mu.Unlock()
			return nil
		}})
	}

	var errs []error
	res := taskgraph.New(taskgraph.Options{
		MaxWorkers: workers,
		OnError:    func(_, _ string, err error) { errs = append(errs, err) },
	}).Then("live", tasks...).Run(ctx)
	if len(res.Failures) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// input assembles the report input. Precedents without a readable score are dropped: they
// cannot be evaluated against any line.
func (st *state) input() report.Input {
	st.mu.Lock()
	defer st.mu.Unlock()
	in := report.Input{
		MatchID:       st.matchID,
		HomeTeam:      st.info.HomeName,
		AwayTeam:      st.info.AwayName,
		Odds:          st.odds,
		HomeStandings: st.homeSt,
		AwayStandings: st.awaySt,
		HomeOverUnder: st.homeOU,
		AwayOverUnder: st.awayOU,
		Precedents:    make(map[models.Slot]*models.MatchRecord, len(st.precedents)),
		Stats:         st.stats,
	}
	for slot, rec := range st.precedents {
		if rec.HasScore() {
			in.Precedents[slot] = rec
		}
	}
	return in
}
