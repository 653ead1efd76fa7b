package graph

import (
	"fmt"
	"sort"

	"github.com/joshharrison/schedsim/internal/process"
)

// Build constructs the dependency graph for one run. It fails on duplicate ids,
// self dependencies, dependencies outside the run and cycles.
func Build(procs []*process.Process) (*DependencyGraph, error) {
	g := &DependencyGraph{
		Dependents:   make(map[int][]int, len(procs)),
		Dependencies: make(map[int][]int, len(procs)),
	}

	for _, p := range procs {
		if _, dup := g.Dependents[p.ID]; dup {
			return nil, fmt.Errorf("duplicate process id %d", p.ID)
		}
		g.Dependents[p.ID] = nil
		g.IDs = append(g.IDs, p.ID)
	}
	sort.Ints(g.IDs)

	edgeSet := make(map[[2]int]bool)
	for _, p := range procs {
		for _, dep := range p.Dependencies {
			if dep == p.ID {
				return nil, fmt.Errorf("process %d depends on itself: %w", p.ID, ErrCycle)
			}
			if _, ok := g.Dependents[dep]; !ok {
				return nil, fmt.Errorf("process %d depends on %d: %w", p.ID, dep, ErrUnknownDependency)
			}
			key := [2]int{dep, p.ID}
			if edgeSet[key] {
				continue
			}
			edgeSet[key] = true
			g.Dependents[dep] = append(g.Dependents[dep], p.ID)
			g.Dependencies[p.ID] = append(g.Dependencies[p.ID], dep)
		}
	}

	// Sort adjacency lists for deterministic ordering
	for k := range g.Dependents {
		sort.Ints(g.Dependents[k])
	}
	for k := range g.Dependencies {
		sort.Ints(g.Dependencies[k])
	}

	for _, id := range g.IDs {
		if len(g.Dependencies[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Dependents[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, cycle)
	}

	return g, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *DependencyGraph) DetectCycle() []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[int]int)
	parent := make(map[int]int)

	var dfs func(node int) []int
	dfs = func(node int) []int {
		color[node] = gray
		for _, next := range g.Dependents[node] {
			if color[next] == gray {
				cycle := []int{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.IDs {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// ProcessCount returns the number of processes in the graph.
func (g *DependencyGraph) ProcessCount() int {
	return len(g.IDs)
}

// DependentCount returns how many processes declare a dependency on id.
func (g *DependencyGraph) DependentCount(id int) int {
	return len(g.Dependents[id])
}

// ChainDepth returns the length of the longest path of transitive dependents
// starting at id, counting id itself. Nodes already in visited contribute 0;
// visited is restored on return so sibling branches are measured independently.
func (g *DependencyGraph) ChainDepth(id int, visited process.IDSet) int {
	if visited.Has(id) {
		return 0
	}
	visited.Add(id)
	defer delete(visited, id)

	longest := 0
	for _, next := range g.Dependents[id] {
		if d := g.ChainDepth(next, visited); d > longest {
			longest = d
		}
	}
	return longest + 1
}
