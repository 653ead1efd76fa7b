package process

// Process is a single simulated unit of work. Identity and scheduling inputs
// are fixed for a run; the runtime fields are owned by the engine.
type Process struct {
	ID           int
	ArrivalTime  int
	BurstTime    int
	Priority     int // lower value = higher priority
	QueueLevel   QueueLevel
	Dependencies []int // ids that must terminate before this process may run

	RemainingTime  int
	State          State
	StartTime      int // first tick the process ran, -1 until then
	CompletionTime int
	WaitingTime    int
	TurnaroundTime int
}

// New creates a process with its runtime state reset.
func New(id, arrival, burst, priority int, level QueueLevel, deps ...int) *Process {
	p := &Process{
		ID:           id,
		ArrivalTime:  arrival,
		BurstTime:    burst,
		Priority:     priority,
		QueueLevel:   level,
		Dependencies: append([]int(nil), deps...),
	}
	p.Reset()
	return p
}

// Reset restores every runtime field so the process can be replayed.
func (p *Process) Reset() {
	p.RemainingTime = p.BurstTime
	p.State = StateNew
	p.StartTime = -1
	p.CompletionTime = 0
	p.WaitingTime = 0
	p.TurnaroundTime = 0
}

// Copy returns an independent copy with fresh runtime state.
func (p *Process) Copy() *Process {
	return New(p.ID, p.ArrivalTime, p.BurstTime, p.Priority, p.QueueLevel, p.Dependencies...)
}

// CopyAll deep-copies a workload, preserving order.
func CopyAll(procs []*Process) []*Process {
	out := make([]*Process, len(procs))
	for i, p := range procs {
		out[i] = p.Copy()
	}
	return out
}

// DependsOn reports whether id is a declared dependency.
func (p *Process) DependsOn(id int) bool {
	for _, d := range p.Dependencies {
		if d == id {
			return true
		}
	}
	return false
}

// CanExecute reports whether every dependency has terminated.
func (p *Process) CanExecute(done IDSet) bool {
	for _, d := range p.Dependencies {
		if !done.Has(d) {
			return false
		}
	}
	return true
}

// Terminated reports whether the process has finished its burst.
func (p *Process) Terminated() bool {
	return p.State == StateTerminated
}
