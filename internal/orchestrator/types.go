package orchestrator

import (
	"context"
	"time"

	"github.com/joshharrison/schedsim/internal/engine"
	"github.com/joshharrison/schedsim/internal/metrics"
	"github.com/joshharrison/schedsim/internal/planner"
)

// Config holds orchestrator configuration.
type Config struct {
	MaxParallel int
}

// RunStatus represents the status of one planned run.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// RunSession tracks a single planned run while the plan executes.
type RunSession struct {
	RunID      string
	Label      string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Result is the outcome of one planned run.
type Result struct {
	PlanID   string
	Run      planner.PlannedRun
	Sim      *engine.Run
	Metrics  metrics.Metrics
	Duration time.Duration // wall time spent simulating
}

// ResultSink receives every finished run, in plan order.
type ResultSink interface {
	Record(ctx context.Context, r *Result) error
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(ctx context.Context, r *Result) error

func (f SinkFunc) Record(ctx context.Context, r *Result) error { return f(ctx, r) }
