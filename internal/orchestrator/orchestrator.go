package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/schedsim/internal/engine"
	"github.com/joshharrison/schedsim/internal/metrics"
	"github.com/joshharrison/schedsim/internal/planner"
	"github.com/joshharrison/schedsim/internal/process"
)

// Orchestrator executes every run of a Plan against one workload template.
type Orchestrator struct {
	Plan     *planner.Plan
	Config   Config
	Sinks    []ResultSink
	base     *slog.Logger
	logger   *slog.Logger
	sessions map[string]*RunSession
	mu       sync.Mutex
}

// New creates a new Orchestrator.
func New(plan *planner.Plan, cfg Config, logger *slog.Logger, sinks ...ResultSink) *Orchestrator {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		Plan:     plan,
		Config:   cfg,
		Sinks:    sinks,
		base:     logger,
		logger:   logger.With("component", "orchestrator"),
		sessions: make(map[string]*RunSession),
	}
}

// Run simulates every planned run on its own deep copy of template, up to
// Config.MaxParallel at a time. Results come back in plan order and are then
// handed to each sink in that same order. template is never mutated.
func (o *Orchestrator) Run(ctx context.Context, template []*process.Process) ([]*Result, error) {
	if err := engine.Validate(template); err != nil {
		return nil, err
	}

	o.mu.Lock()
	for _, pr := range o.Plan.Runs {
		o.sessions[pr.RunID] = &RunSession{RunID: pr.RunID, Label: pr.Label, Status: StatusPending}
	}
	o.mu.Unlock()

	o.logger.Info("plan started", "plan", o.Plan.ID, "runs", len(o.Plan.Runs), "max_parallel", o.Config.MaxParallel)

	results := make([]*Result, len(o.Plan.Runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Config.MaxParallel)

	for i, pr := range o.Plan.Runs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				o.finish(pr.RunID, StatusCancelled, err)
				return err
			}
			res, err := o.execute(pr, template)
			if err != nil {
				o.finish(pr.RunID, StatusFailed, err)
				return fmt.Errorf("run %s: %w", pr.Label, err)
			}
			results[i] = res
			o.finish(pr.RunID, StatusCompleted, nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.cancelPending()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		o.cancelPending()
		return nil, fmt.Errorf("cancelled: %w", err)
	}

	for _, res := range results {
		for _, sink := range o.Sinks {
			if err := sink.Record(ctx, res); err != nil {
				return results, fmt.Errorf("record %s: %w", res.Run.Label, err)
			}
		}
	}

	o.logger.Info("plan finished", "plan", o.Plan.ID)
	return results, nil
}

// execute runs one planned policy on a private copy of the template.
func (o *Orchestrator) execute(pr planner.PlannedRun, template []*process.Process) (*Result, error) {
	pol, err := pr.NewPolicy(o.Plan.Config)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	s := o.sessions[pr.RunID]
	s.Status = StatusRunning
	s.StartedAt = time.Now()
	o.mu.Unlock()

	o.logger.Info("run started", "run", pr.RunID, "policy", pr.Label)

	start := time.Now()
	sim, err := engine.New(pol, o.base).Schedule(process.CopyAll(template))
	if err != nil {
		return nil, err
	}
	res := &Result{
		PlanID:   o.Plan.ID,
		Run:      pr,
		Sim:      sim,
		Metrics:  metrics.Calculate(sim),
		Duration: time.Since(start),
	}

	o.logger.Info("run finished", "run", pr.RunID, "policy", pr.Label,
		"elapsed", sim.Elapsed, "context_switches", sim.ContextSwitches,
		"avg_waiting", res.Metrics.AvgWaitingTime)
	return res, nil
}

func (o *Orchestrator) finish(runID string, status RunStatus, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[runID]; ok {
		s.Status = status
		s.FinishedAt = time.Now()
		s.Err = err
	}
}

// cancelPending marks runs that never started as cancelled.
func (o *Orchestrator) cancelPending() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, s := range o.sessions {
		if s.Status == StatusPending {
			s.Status = StatusCancelled
		}
	}
}

// GetSessions returns a snapshot of all run sessions.
func (o *Orchestrator) GetSessions() map[string]*RunSession {
	o.mu.Lock()
	defer o.mu.Unlock()

	result := make(map[string]*RunSession, len(o.sessions))
	for k, v := range o.sessions {
		cp := *v
		result[k] = &cp
	}
	return result
}
