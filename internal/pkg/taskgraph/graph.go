// Package taskgraph runs groups of independent tasks as ordered phases. Tasks inside a phase
// run concurrently on a bounded pool; a phase starts only after the previous one has joined.
package taskgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrPanic wraps a recovered task panic.
var ErrPanic = errors.New("task panicked")

// TaskFunc is the body of a task.
type TaskFunc func(ctx context.Context) error

// Task is a named unit of work.
type Task struct {
	Name string
	Run  TaskFunc
}

// Phase is a set of tasks that do not depend on each other.
type Phase struct {
	Name  string
	Tasks []Task
}

// Options configures how phases are run.
type Options struct {
	// MaxWorkers bounds the number of tasks running at once. Zero or less means one per task.
	MaxWorkers int
	// LogStart logs when each task starts.
	LogStart bool
	// OnError is called when a task fails. If nil, failures are logged.
	OnError func(phase, task string, err error)
	// OnPhaseDone is called after each phase joins.
	OnPhaseDone func(phase string, d time.Duration)
}

// Failure is a task that returned an error, panicked or was skipped by cancellation.
type Failure struct {
	Phase string
	Task  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s/%s: %v", f.Phase, f.Task, f.Err)
}

// PhaseTiming is the wall time of one phase.
type PhaseTiming struct {
	Name     string
	Duration time.Duration
}

// Result summarizes a run. Failures never stop later tasks or phases.
type Result struct {
	Failures []Failure
	Phases   []PhaseTiming
}

// Failed reports whether the named task failed.
func (r *Result) Failed(task string) bool {
	for _, f := range r.Failures {
		if f.Task == task {
			return true
		}
	}
	return false
}

// Graph is an ordered list of phases.
type Graph struct {
	phases []Phase
	opts   Options
}

// New creates an empty graph.
func New(opts Options) *Graph {
	return &Graph{opts: opts}
}

// Then appends a phase.
func (g *Graph) Then(name string, tasks ...Task) *Graph {
	g.phases = append(g.phases, Phase{Name: name, Tasks: tasks})
	return g
}

// Run executes the phases in order. Once ctx is done no further task is started; tasks that
// never ran are reported as failures with the context error.
func (g *Graph) Run(ctx context.Context) *Result {
	res := &Result{}
	onError := g.opts.OnError
	if onError == nil {
		onError = func(phase, task string, err error) {
			slog.Warn("Task failed", "phase", phase, "task", task, "error", err)
		}
	}

	for _, p := range g.phases {
		start := time.Now()
		failures := g.runPhase(ctx, p)
		d := time.Since(start)

		for _, f := range failures {
			onError(f.Phase, f.Task, f.Err)
		}
		res.Failures = append(res.Failures, failures...)
		res.Phases = append(res.Phases, PhaseTiming{Name: p.Name, Duration: d})
		if g.opts.OnPhaseDone != nil {
			g.opts.OnPhaseDone(p.Name, d)
		}
		slog.Debug("Phase finished", "phase", p.Name, "tasks", len(p.Tasks), "failed", len(failures), "duration", d)
	}
	return res
}

func (g *Graph) runPhase(ctx context.Context, p Phase) []Failure {
	if len(p.Tasks) == 0 {
		return nil
	}
	workers := g.opts.MaxWorkers
	if workers <= 0 || workers > len(p.Tasks) {
		workers = len(p.Tasks)
	}
	sem := make(chan struct{}, workers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []Failure
	)
	fail := func(t Task, err error) {
		mu.Lock()
		failures = append(failures, Failure{Phase: p.Name, Task: t.Name, Err: err})
		mu.Unlock()
	}

	for _, t := range p.Tasks {
		if err := ctx.Err(); err != nil {
			fail(t, err)
			continue
		}
		select {
		case <-ctx.Done():
			fail(t, ctx.Err())
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			defer func() { <-sem }()

			if g.opts.LogStart {
				slog.Info("Starting task", "phase", p.Name, "task", t.Name)
			}
			if err := runTask(ctx, t); err != nil {
				fail(t, err)
			}
		}(t)
	}
	wg.Wait()
	return failures
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	if t.Run == nil {
		return nil
	}
	return t.Run(ctx)
}
