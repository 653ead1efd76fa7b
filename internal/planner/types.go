package planner

import (
	"time"

	"github.com/joshharrison/schedsim/internal/policy"
	"github.com/joshharrison/schedsim/internal/process"
)

// Plan is the full set of policy runs to execute against one workload.
type Plan struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	TotalRuns    int          `json:"total_runs"`
	Processes    int          `json:"processes"`
	CriticalPath []int        `json:"critical_path"`
	Levels       [][]int      `json:"levels"` // dependency levels, each runnable once the previous ones finish
	Runs         []PlannedRun `json:"runs"`
	Config       PlanConfig   `json:"config"`
}

// PlannedRun is a single policy configuration to simulate.
type PlannedRun struct {
	RunID               string      `json:"run_id"`
	Index               int         `json:"index"`
	Kind                policy.Kind `json:"kind"`
	RespectDependencies bool        `json:"respect_dependencies"`
	Label               string      `json:"label"`
	Group               Group       `json:"group"`
}

// Group buckets runs for side-by-side reporting.
type Group string

const (
	GroupIPC        Group = "IPC"
	GroupNonIPC     Group = "Non-IPC"
	GroupDependency Group = "Dependency-Aware"
)

// PlanConfig holds configuration for plan execution.
type PlanConfig struct {
	TimeQuantum     int                                      `json:"time_quantum"`
	QueueAlgorithms map[process.QueueLevel]process.Algorithm `json:"mlq_algorithms"`
	MaxParallel     int                                      `json:"max_parallel"`
	Kinds           []policy.Kind                            `json:"kinds"`
}
