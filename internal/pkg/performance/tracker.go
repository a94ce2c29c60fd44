package performance

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// maxStudyTimings bounds the per-study history kept for the slowest-studies list.
const maxStudyTimings = 1000

// Tracker tracks performance metrics for match studies
type Tracker struct {
	mu sync.RWMutex

	// Overall metrics
	TotalStudies  int
	FailedStudies int
	TotalSlots    int
	FoundSlots    int
	TaskFailures  int

	// Timing metrics
	TotalDuration time.Duration
	Phases        map[string]*PhaseStat

	// Fetch metrics by page kind
	Fetches     map[string]*FetchStat
	CacheHits   int
	CacheMisses int

	// Per-study metrics
	StudyTimings []StudyTiming
}

// PhaseStat accumulates the wall time of one study phase.
type PhaseStat struct {
	Runs     int
	Duration time.Duration
}

// FetchStat accumulates page fetches of one kind.
type FetchStat struct {
	Count    int
	Failures int
	Duration time.Duration
}

// StudyTiming tracks a single study
type StudyTiming struct {
	MatchID    string
	SlotsFound int
	Failures   int
	TotalTime  time.Duration
	Success    bool
	Timestamp  time.Time
}

var globalTracker = NewTracker()

// GetTracker returns the global performance tracker
func GetTracker() *Tracker {
	return globalTracker
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		Phases:       make(map[string]*PhaseStat),
		Fetches:      make(map[string]*FetchStat),
		StudyTimings: make([]StudyTiming, 0, 64),
	}
}

// Reset resets all metrics
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalStudies = 0
	t.FailedStudies = 0
	t.TotalSlots = 0
	t.FoundSlots = 0
	t.TaskFailures = 0
	t.TotalDuration = 0
	t.Phases = make(map[string]*PhaseStat)
	t.Fetches = make(map[string]*FetchStat)
	t.CacheHits = 0
	t.CacheMisses = 0
	t.StudyTimings = t.StudyTimings[:0]
}

// RecordStudy records a complete study. success is false when the study returned an error.
func (t *Tracker) RecordStudy(matchID string, total time.Duration, slots, slotsFound, failures int, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalStudies++
	if !success {
		t.FailedStudies++
	}
	t.TotalSlots += slots
	t.FoundSlots += slotsFound
	t.TaskFailures += failures
	t.TotalDuration += total

	if len(t.StudyTimings) >= maxStudyTimings {
		copy(t.StudyTimings, t.StudyTimings[1:])
		t.StudyTimings = t.StudyTimings[:len(t.StudyTimings)-1]
	}
	t.StudyTimings = append(t.StudyTimings, StudyTiming{
		MatchID:    matchID,
		SlotsFound: slotsFound,
		Failures:   failures,
		TotalTime:  total,
		Success:    success,
		Timestamp:  time.Now(),
	})
}

// RecordPhase records the wall time of one study phase.
func (t *Tracker) RecordPhase(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.Phases[name]
	if s == nil {
		s = &PhaseStat{}
		t.Phases[name] = s
	}
	s.Runs++
	s.Duration += d
}

// RecordFetch records one page fetch that went to the network.
func (t *Tracker) RecordFetch(kind string, d time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.Fetches[kind]
	if s == nil {
		s = &FetchStat{}
		t.Fetches[kind] = s
	}
	s.Count++
	s.Duration += d
	if err != nil {
		s.Failures++
	}
}

// RecordCache records a cache lookup.
func (t *Tracker) RecordCache(hit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if hit {
		t.CacheHits++
	} else {
		t.CacheMisses++
	}
}

// PrintSummary logs a performance summary
func (t *Tracker) PrintSummary() {
	m := t.GetMetrics()
	if m.Overall.TotalStudies == 0 {
		slog.Info("No performance data collected yet")
		return
	}

	slog.Info("Overall Statistics",
		"total_studies", m.Overall.TotalStudies,
		"failed_studies", m.Overall.FailedStudies,
		"slot_fill_percent", m.Overall.SlotFillPercent,
		"task_failures", m.Overall.TaskFailures,
		"avg_duration", m.Overall.AvgDuration)

	for name, p := range m.Phases {
		slog.Info("Study Phase", "phase", name, "runs", p.Runs, "avg_time", p.AvgTime)
	}
	for kind, f := range m.Fetches {
		slog.Info("Page Fetches", "kind", kind, "count", f.Count, "failures", f.Failures, "avg_time", f.AvgTime)
	}
	slog.Info("Page Cache", "hits", m.Cache.Hits, "misses", m.Cache.Misses, "hit_rate", m.Cache.HitRate)
	for _, s := range m.SlowestStudies {
		slog.Info("Slowest Study", "match_id", s.MatchID, "duration", s.Duration, "success", s.Success)
	}
}

// MetricsResponse represents the JSON response structure for /metrics endpoint
type MetricsResponse struct {
	Overall struct {
		TotalStudies    int     `json:"total_studies"`
		FailedStudies   int     `json:"failed_studies"`
		SlotFillPercent float64 `json:"slot_fill_percent"`
		TaskFailures    int     `json:"task_failures"`
		AvgDuration     string  `json:"avg_duration"`
	} `json:"overall"`

	Phases map[string]struct {
		Runs    int    `json:"runs"`
		AvgTime string `json:"avg_time"`
	} `json:"phases"`

	Fetches map[string]struct {
		Count    int    `json:"count"`
		Failures int    `json:"failures"`
		AvgTime  string `json:"avg_time"`
	} `json:"fetches"`

	Cache struct {
		Hits    int     `json:"hits"`
		Misses  int     `json:"misses"`
		HitRate float64 `json:"hit_rate"`
	} `json:"cache"`

	SlowestStudies []struct {
		MatchID  string `json:"match_id"`
		Duration string `json:"duration"`
		Success  bool   `json:"success"`
	} `json:"slowest_studies"`
}

// GetMetrics returns structured metrics for JSON API
func (t *Tracker) GetMetrics() MetricsResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var resp MetricsResponse

	resp.Overall.TotalStudies = t.TotalStudies
	resp.Overall.FailedStudies = t.FailedStudies
	resp.Overall.TaskFailures = t.TaskFailures
	if t.TotalSlots > 0 {
		resp.Overall.SlotFillPercent = float64(t.FoundSlots) / float64(t.TotalSlots) * 100
	}
	if t.TotalStudies > 0 {
		resp.Overall.AvgDuration = (t.TotalDuration / time.Duration(t.TotalStudies)).String()
	}

	resp.Phases = make(map[string]struct {
		Runs    int    `json:"runs"`
		AvgTime string `json:"avg_time"`
	}, len(t.Phases))
	for name, p := range t.Phases {
		entry := resp.Phases[name]
		entry.Runs = p.Runs
		if p.Runs > 0 {
			entry.AvgTime = (p.Duration / time.Duration(p.Runs)).String()
		}
		resp.Phases[name] = entry
	}

	resp.Fetches = make(map[string]struct {
		Count    int    `json:"count"`
		Failures int    `json:"failures"`
		AvgTime  string `json:"avg_time"`
	}, len(t.Fetches))
	for kind, f := range t.Fetches {
		entry := resp.Fetches[kind]
		entry.Count = f.Count
		entry.Failures = f.Failures
		if f.Count > 0 {
			entry.AvgTime = (f.Duration / time.Duration(f.Count)).String()
		}
		resp.Fetches[kind] = entry
	}

	resp.Cache.Hits = t.CacheHits
	resp.Cache.Misses = t.CacheMisses
	if lookups := t.CacheHits + t.CacheMisses; lookups > 0 {
		resp.Cache.HitRate = float64(t.CacheHits) / float64(lookups) * 100
	}

	slowest := make([]StudyTiming, len(t.StudyTimings))
	copy(slowest, t.StudyTimings)
	sort.Slice(slowest, func(i, j int) bool { return slowest[i].TotalTime > slowest[j].TotalTime })
	if len(slowest) > 5 {
		slowest = slowest[:5]
	}
	for _, s := range slowest {
		resp.SlowestStudies = append(resp.SlowestStudies, struct {
			MatchID  string `json:"match_id"`
			Duration string `json:"duration"`
			Success  bool   `json:"success"`
		}{s.MatchID, s.TotalTime.String(), s.Success})
	}

	return resp
}
