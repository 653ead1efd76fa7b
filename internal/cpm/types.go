package cpm

// Result holds the critical path analysis of a workload's dependency graph.
type Result struct {
	Processes     map[int]*ProcessSchedule
	CriticalPath  []int // ordered process ids on the critical chain
	TotalDuration int   // burst-weighted length of the critical chain
	Levels        []Level
	TopoOrder     []int
}

// ProcessSchedule holds the precedence-only schedule of a single process,
// as if unlimited CPUs were available.
type ProcessSchedule struct {
	ProcessID  int
	ES, EF     int // earliest start/finish
	LS, LF     int // latest start/finish
	Slack      int
	IsCritical bool
	Depth      int // longest chain of transitive dependents, counting itself
	Level      int
}

// Level is a group of processes whose dependencies allow them to start together.
type Level struct {
	Index      int
	ProcessIDs []int
	IsCritical bool
}

// Depth returns the chain depth for id, or 0 if id is unknown.
func (r *Result) Depth(id int) int {
	if ps, ok := r.Processes[id]; ok {
		return ps.Depth
	}
	return 0
}
