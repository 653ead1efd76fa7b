package cpm

import (
	"fmt"
	"sort"

	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/process"
)

// Analyze performs critical path analysis on a dependency graph, using each
// process's burst time as its duration (minimum 1).
func Analyze(g *graph.DependencyGraph, procs []*process.Process) (*Result, error) {
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	durations := make(map[int]int, len(procs))
	for _, p := range procs {
		durations[p.ID] = max(p.BurstTime, 1)
	}
	for _, id := range g.IDs {
		if _, ok := durations[id]; !ok {
			durations[id] = 1
		}
	}

	result := &Result{
		Processes: make(map[int]*ProcessSchedule, len(order)),
		TopoOrder: order,
	}
	for _, id := range order {
		result.Processes[id] = &ProcessSchedule{ProcessID: id}
	}

	// Forward pass: ES = max(EF of all dependencies)
	for _, id := range order {
		ps := result.Processes[id]
		es := 0
		for _, dep := range g.Dependencies[id] {
			if ef := result.Processes[dep].EF; ef > es {
				es = ef
			}
		}
		ps.ES = es
		ps.EF = es + durations[id]
		if ps.EF > result.TotalDuration {
			result.TotalDuration = ps.EF
		}
	}

	// Backward pass in reverse topological order. Chain depth is memoised here
	// too, since every dependent is finalised before the process itself.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ps := result.Processes[id]

		lf := result.TotalDuration
		depth := 0
		for _, succ := range g.Dependents[id] {
			s := result.Processes[succ]
			if s.LS < lf {
				lf = s.LS
			}
			if s.Depth > depth {
				depth = s.Depth
			}
		}
		ps.LF = lf
		ps.LS = lf - durations[id]
		ps.Slack = ps.LS - ps.ES
		ps.IsCritical = ps.Slack == 0
		ps.Depth = depth + 1
	}

	result.CriticalPath = criticalChain(result, g)
	result.Levels = computeLevels(result)

	return result, nil
}

// topoSort performs Kahn's algorithm, releasing ready ids in ascending order.
func topoSort(g *graph.DependencyGraph) ([]int, error) {
	inDegree := make(map[int]int, len(g.IDs))
	var queue []int
	for _, id := range g.IDs {
		inDegree[id] = len(g.Dependencies[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]int, 0, len(g.IDs))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []int
		for _, succ := range g.Dependents[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Ints(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.IDs) {
		return nil, fmt.Errorf("topological sort failed: %w (%d of %d processes sorted)", graph.ErrCycle, len(order), len(g.IDs))
	}
	return order, nil
}

// criticalChain walks one zero-slack path from a critical root to a critical
// leaf, preferring the lowest id at each fork.
func criticalChain(result *Result, g *graph.DependencyGraph) []int {
	start := -1
	for _, id := range result.TopoOrder {
		ps := result.Processes[id]
		if ps.IsCritical && ps.ES == 0 {
			start = id
			break
		}
	}
	if start < 0 && len(result.TopoOrder) > 0 {
		start = result.TopoOrder[0]
	}
	if start < 0 {
		return nil
	}

	path := []int{start}
	for cur := start; ; {
		next := -1
		for _, succ := range g.Dependents[cur] {
			s := result.Processes[succ]
			if s.IsCritical && s.ES == result.Processes[cur].EF {
				next = succ
				break
			}
		}
		if next < 0 {
			return path
		}
		path = append(path, next)
		cur = next
	}
}

// computeLevels groups processes by their earliest start time.
func computeLevels(result *Result) []Level {
	esGroups := make(map[int][]int)
	for _, id := range result.TopoOrder {
		es := result.Processes[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	levels := make([]Level, len(esValues))
	for i, es := range esValues {
		ids := esGroups[es]
		sort.Ints(ids)

		hasCritical := false
		for _, id := range ids {
			result.Processes[id].Level = i
			if result.Processes[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical processes first within a level
		sort.SliceStable(ids, func(a, b int) bool {
			return result.Processes[ids[a]].IsCritical && !result.Processes[ids[b]].IsCritical
		})

		levels[i] = Level{Index: i, ProcessIDs: ids, IsCritical: hasCritical}
	}
	return levels
}
