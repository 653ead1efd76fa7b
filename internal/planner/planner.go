package planner

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/joshharrison/schedsim/internal/cpm"
	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/policy"
)

// Generate creates a Plan covering every requested policy, once with
// dependencies respected and once without. The dependency-aware policy always
// respects dependencies and is planned once, last.
func Generate(g *graph.DependencyGraph, analysis *cpm.Result, config PlanConfig) (*Plan, error) {
	if config.MaxParallel == 0 {
		config.MaxParallel = 4
	}
	if config.TimeQuantum == 0 {
		config.TimeQuantum = 4
	}
	if config.QueueAlgorithms == nil {
		config.QueueAlgorithms = policy.DefaultQueueAlgorithms()
	}
	if len(config.Kinds) == 0 {
		config.Kinds = slices.Clone(policy.Kinds)
	}

	plan := &Plan{
		ID:           fmt.Sprintf("sim-%s", time.Now().Format("2006-01-02-150405")),
		CreatedAt:    time.Now(),
		Processes:    g.ProcessCount(),
		CriticalPath: analysis.CriticalPath,
		Config:       config,
	}
	for _, level := range analysis.Levels {
		plan.Levels = append(plan.Levels, level.ProcessIDs)
	}

	add := func(kind policy.Kind, respectDeps bool, group Group) error {
		pr := PlannedRun{
			RunID:               uuid.NewString(),
			Index:               len(plan.Runs),
			Kind:                kind,
			RespectDependencies: respectDeps,
			Group:               group,
		}
		pol, err := policy.New(kind, pr.Options(config))
		if err != nil {
			return fmt.Errorf("plan %s: %w", kind, err)
		}
		pr.Label = pol.Name()
		plan.Runs = append(plan.Runs, pr)
		return nil
	}

	for _, group := range []Group{GroupIPC, GroupNonIPC} {
		for _, kind := range config.Kinds {
			if kind == policy.KindDependencyAware {
				continue
			}
			if err := add(kind, group == GroupIPC, group); err != nil {
				return nil, err
			}
		}
	}
	if slices.Contains(config.Kinds, policy.KindDependencyAware) {
		if err := add(policy.KindDependencyAware, true, GroupDependency); err != nil {
			return nil, err
		}
	}

	plan.TotalRuns = len(plan.Runs)
	return plan, nil
}

// Options returns the policy options for this run under config.
func (r PlannedRun) Options(config PlanConfig) policy.Options {
	return policy.Options{
		RespectDependencies: r.RespectDependencies,
		TimeQuantum:         config.TimeQuantum,
		QueueAlgorithms:     maps.Clone(config.QueueAlgorithms),
	}
}

// NewPolicy builds a fresh policy instance for this run.
func (r PlannedRun) NewPolicy(config PlanConfig) (policy.Policy, error) {
	return policy.New(r.Kind, r.Options(config))
}
