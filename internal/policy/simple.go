package policy

import "github.com/joshharrison/schedsim/internal/process"

// FCFS runs the earliest-admitted eligible process.
type FCFS struct {
	gate
}

func NewFCFS(respectDeps bool) *FCFS {
	return &FCFS{gate: gate{respectDeps: respectDeps}}
}

func (f *FCFS) Name() string { return "FCFS" + f.suffix() }

func (f *FCFS) Reset([]*process.Process) error { return nil }

func (f *FCFS) Next(ready []*process.Process, done process.IDSet) *process.Process {
	for _, p := range ready {
		if f.eligible(p, done) {
			return p
		}
	}
	return nil
}

// SJF picks the eligible process with the least remaining time and keeps
// running it until it terminates or stops being eligible.
type SJF struct {
	gate
	current *process.Process
}

func NewSJF(respectDeps bool) *SJF {
	return &SJF{gate: gate{respectDeps: respectDeps}}
}

func (s *SJF) Name() string { return "SJF" + s.suffix() }

func (s *SJF) Reset([]*process.Process) error {
	s.current = nil
	return nil
}

func (s *SJF) Next(ready []*process.Process, done process.IDSet) *process.Process {
	if len(ready) == 0 {
		return nil
	}
	if s.current != nil && !s.current.Terminated() {
		if s.eligible(s.current, done) {
			return s.current
		}
	}
	s.current = firstMin(ready,
		func(p *process.Process) bool { return s.eligible(p, done) },
		func(p *process.Process) int { return p.RemainingTime })
	return s.current
}

// Priority is preemptive: a strictly more urgent eligible process always
// displaces the running one; equal priority keeps the running one.
type Priority struct {
	gate
	current *process.Process
}

func NewPriority(respectDeps bool) *Priority {
	return &Priority{gate: gate{respectDeps: respectDeps}}
}

func (p *Priority) Name() string { return "Priority" + p.suffix() }

func (p *Priority) Reset([]*process.Process) error {
	p.current = nil
	return nil
}

func (p *Priority) Next(ready []*process.Process, done process.IDSet) *process.Process {
	ok := func(c *process.Process) bool { return p.eligible(c, done) }
	candidate := firstMin(ready, ok, func(c *process.Process) int { return c.Priority })
	if candidate == nil {
		return nil
	}
	if cur := p.current; cur != nil && !cur.Terminated() && ok(cur) && cur.Priority <= candidate.Priority {
		return cur
	}
	p.current = candidate
	return candidate
}
