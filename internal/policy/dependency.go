package policy

import (
	"fmt"

	"github.com/joshharrison/schedsim/internal/cpm"
	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/process"
)

// DependencyAware treats declared dependencies as precedence constraints and
// prefers the processes that unblock the most downstream work.
//
// Among eligible processes, dependency-free ones win; they are ranked by
// direct dependent count, then earliest arrival. Otherwise the deepest
// dependency chain wins, then dependent count, then earliest arrival.
// Remaining ties keep ready order.
type DependencyAware struct {
	graph    *graph.DependencyGraph
	analysis *cpm.Result
}

func NewDependencyAware() *DependencyAware {
	return &DependencyAware{}
}

func (d *DependencyAware) Name() string { return "Dependency-Aware" }

// Graph returns the dependency graph built by the last Reset.
func (d *DependencyAware) Graph() *graph.DependencyGraph { return d.graph }

func (d *DependencyAware) Reset(procs []*process.Process) error {
	g, err := graph.Build(procs)
	if err != nil {
		return fmt.Errorf("build dependency graph: %w", err)
	}
	analysis, err := cpm.Analyze(g, procs)
	if err != nil {
		return fmt.Errorf("analyze dependency graph: %w", err)
	}
	d.graph = g
	d.analysis = analysis
	return nil
}

func (d *DependencyAware) Next(ready []*process.Process, done process.IDSet) *process.Process {
	var best *process.Process
	var bestKey rankKey
	for _, p := range ready {
		if !p.CanExecute(done) {
			continue
		}
		key := d.rank(p)
		if best == nil || key.beats(bestKey) {
			best, bestKey = p, key
		}
	}
	return best
}

// rankKey orders candidates; larger fields win, compared left to right.
type rankKey struct {
	independent bool
	depth       int
	dependents  int
	arrival     int // negated arrival time
}

func (d *DependencyAware) rank(p *process.Process) rankKey {
	k := rankKey{
		independent: len(p.Dependencies) == 0,
		dependents:  d.graph.DependentCount(p.ID),
		arrival:     -p.ArrivalTime,
	}
	if !k.independent {
		k.depth = d.analysis.Depth(p.ID)
	}
	return k
}

func (k rankKey) beats(o rankKey) bool {
	if k.independent != o.independent {
		return k.independent
	}
	if k.depth != o.depth {
		return k.depth > o.depth
	}
	if k.dependents != o.dependents {
		return k.dependents > o.dependents
	}
	return k.arrival > o.arrival
}
