package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/joshharrison/schedsim/internal/cpm"
	"github.com/joshharrison/schedsim/internal/engine"
	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/planner"
	"github.com/joshharrison/schedsim/internal/process"
)

func template() []*process.Process {
	return []*process.Process{
		process.New(1, 0, 3, 2, process.LevelA),
		process.New(2, 0, 2, 1, process.LevelB, 1),
		process.New(3, 4, 2, 3, process.LevelC),
	}
}

func makePlan(t *testing.T, procs []*process.Process) *planner.Plan {
	t.Helper()
	g, err := graph.Build(procs)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	result, err := cpm.Analyze(g, procs)
	if err != nil {
		t.Fatalf("cpm analyze: %v", err)
	}
	plan, err := planner.Generate(g, result, planner.PlanConfig{TimeQuantum: 2})
	if err != nil {
		t.Fatalf("generate plan: %v", err)
	}
	return plan
}

type recordingSink struct {
	mu     sync.Mutex
	labels []string
}

func (s *recordingSink) Record(_ context.Context, r *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = append(s.labels, r.Run.Label)
	return nil
}

func TestNew_Defaults(t *testing.T) {
	o := New(nil, Config{}, nil)
	if o.Config.MaxParallel != 4 {
		t.Errorf("expected default max parallel 4, got %d", o.Config.MaxParallel)
	}
	if o.logger == nil {
		t.Error("expected a non-nil logger")
	}
}

func TestNew_Custom(t *testing.T) {
	o := New(nil, Config{MaxParallel: 8}, nil, &recordingSink{})
	if o.Config.MaxParallel != 8 {
		t.Errorf("expected 8, got %d", o.Config.MaxParallel)
	}
	if len(o.Sinks) != 1 {
		t.Errorf("expected 1 sink, got %d", len(o.Sinks))
	}
}

func TestRun_ResultsInPlanOrder(t *testing.T) {
	procs := template()
	plan := makePlan(t, procs)
	sink := &recordingSink{}

	results, err := New(plan, Config{MaxParallel: 3}, nil, sink).Run(context.Background(), procs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != len(plan.Runs) {
		t.Fatalf("expected %d results, got %d", len(plan.Runs), len(results))
	}
	for i, r := range results {
		if r.Run.RunID != plan.Runs[i].RunID {
			t.Errorf("result %d belongs to run %s, want %s", i, r.Run.RunID, plan.Runs[i].RunID)
		}
		if r.Sim.Policy != plan.Runs[i].Label {
			t.Errorf("result %d ran %q, want %q", i, r.Sim.Policy, plan.Runs[i].Label)
		}
		if r.PlanID != plan.ID {
			t.Errorf("result %d has plan id %q", i, r.PlanID)
		}
		if len(r.Metrics.Processes) != len(procs) {
			t.Errorf("result %d has %d process stats", i, len(r.Metrics.Processes))
		}
	}

	if len(sink.labels) != len(plan.Runs) {
		t.Fatalf("sink saw %d results, want %d", len(sink.labels), len(plan.Runs))
	}
	for i, label := range sink.labels {
		if label != plan.Runs[i].Label {
			t.Errorf("sink result %d is %q, want %q", i, label, plan.Runs[i].Label)
		}
	}
}

func TestRun_TemplateUntouched(t *testing.T) {
	procs := template()
	plan := makePlan(t, procs)

	if _, err := New(plan, Config{MaxParallel: 4}, nil).Run(context.Background(), procs); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, p := range procs {
		if p.State != process.StateNew || p.RemainingTime != p.BurstTime || p.StartTime != -1 {
			t.Errorf("template process %d was mutated: %+v", p.ID, p)
		}
	}
}

func TestRun_SequentialMatchesParallel(t *testing.T) {
	procs := template()
	plan := makePlan(t, procs)

	seq, err := New(plan, Config{MaxParallel: 1}, nil).Run(context.Background(), procs)
	if err != nil {
		t.Fatalf("sequential Run: %v", err)
	}
	par, err := New(plan, Config{MaxParallel: 8}, nil).Run(context.Background(), procs)
	if err != nil {
		t.Fatalf("parallel Run: %v", err)
	}

	for i := range seq {
		if seq[i].Metrics.AvgWaitingTime != par[i].Metrics.AvgWaitingTime ||
			seq[i].Sim.ContextSwitches != par[i].Sim.ContextSwitches {
			t.Errorf("run %s differs between sequential and parallel execution", seq[i].Run.Label)
		}
	}
}

func TestRun_InvalidTemplate(t *testing.T) {
	plan := makePlan(t, template())
	bad := []*process.Process{process.New(1, 0, 0, 1, process.LevelA)}

	_, err := New(plan, Config{}, nil).Run(context.Background(), bad)
	if !errors.Is(err, engine.ErrInvalidWorkload) {
		t.Errorf("expected ErrInvalidWorkload, got %v", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	procs := template()
	plan := makePlan(t, procs)
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(plan, Config{MaxParallel: 2}, nil, sink)
	_, err := o.Run(ctx, procs)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(sink.labels) != 0 {
		t.Errorf("expected no results recorded, got %v", sink.labels)
	}
	for id, s := range o.GetSessions() {
		if s.Status != StatusCancelled {
			t.Errorf("session %s has status %s, want cancelled", id, s.Status)
		}
	}
}

func TestRun_SinkErrorStopsRecording(t *testing.T) {
	procs := template()
	plan := makePlan(t, procs)
	boom := errors.New("disk full")
	calls := 0
	failing := SinkFunc(func(context.Context, *Result) error {
		calls++
		return boom
	})

	results, err := New(plan, Config{}, nil, failing).Run(context.Background(), procs)
	if !errors.Is(err, boom) {
		t.Errorf("expected sink error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected recording to stop after first failure, got %d calls", calls)
	}
	if len(results) != len(plan.Runs) {
		t.Errorf("expected simulated results to be returned, got %d", len(results))
	}
}

func TestRun_SessionsCompleted(t *testing.T) {
	procs := template()
	plan := makePlan(t, procs)
	o := New(plan, Config{}, nil)

	if _, err := o.Run(context.Background(), procs); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sessions := o.GetSessions()
	if len(sessions) != len(plan.Runs) {
		t.Fatalf("expected %d sessions, got %d", len(plan.Runs), len(sessions))
	}
	for id, s := range sessions {
		if s.Status != StatusCompleted {
			t.Errorf("session %s has status %s", id, s.Status)
		}
		if s.FinishedAt.Before(s.StartedAt) {
			t.Errorf("session %s finished before it started", id)
		}
	}
}

func TestGetSessions_ReturnsCopy(t *testing.T) {
	o := &Orchestrator{
		sessions: map[string]*RunSession{
			"a": {RunID: "a", Status: StatusRunning},
		},
	}

	sessions := o.GetSessions()
	sessions["a"].Status = StatusFailed

	if o.sessions["a"].Status != StatusRunning {
		t.Error("GetSessions should return a copy, not a reference")
	}
}
