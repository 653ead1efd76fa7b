package graph

import "errors"

var (
	// ErrCycle is returned when the declared dependencies contain a cycle.
	ErrCycle = errors.New("dependency cycle")
	// ErrUnknownDependency is returned when a process depends on an id outside the run.
	ErrUnknownDependency = errors.New("unknown dependency")
)

// DependencyGraph is a directed acyclic graph of processes.
// An edge a -> b means b declares a dependency on a.
type DependencyGraph struct {
	IDs          []int         // every process id, ascending
	Dependents   map[int][]int // process -> processes waiting on it
	Dependencies map[int][]int // process -> processes it waits on
	Roots        []int         // processes with no dependencies
	Leaves       []int         // processes nothing depends on
}
