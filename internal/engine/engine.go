package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/ledger"
	"github.com/joshharrison/schedsim/internal/policy"
	"github.com/joshharrison/schedsim/internal/process"
)

// ErrInvalidWorkload wraps every validation failure reported by Schedule.
var ErrInvalidWorkload = errors.New("invalid workload")

// Run is the outcome of one scheduling run.
type Run struct {
	Policy          string
	Ledger          *ledger.Ledger
	Processes       []*process.Process
	ContextSwitches int
	Elapsed         int // ticks simulated, idle ticks included
	IdleTicks       int
}

// Engine drives the discrete time-stepped simulation for one policy instance.
// An Engine is not safe for concurrent use; give each run its own.
type Engine struct {
	policy policy.Policy
	logger *slog.Logger

	now      int
	ready    []*process.Process
	done     process.IDSet
	ledger   *ledger.Ledger
	switches int
	idle     int
	last     *process.Process
}

// New creates an Engine that delegates selection to pol.
func New(pol policy.Policy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		policy: pol,
		logger: logger.With("component", "engine", "policy", pol.Name()),
	}
}

// Schedule runs procs to completion and returns the execution ledger and
// final process records. procs are reset first and mutated in place; pass a
// copy to keep a template intact.
func (e *Engine) Schedule(procs []*process.Process) (*Run, error) {
	if err := Validate(procs); err != nil {
		return nil, err
	}

	e.now = 0
	e.ready = e.ready[:0]
	e.done = make(process.IDSet, len(procs))
	e.ledger = ledger.New()
	e.switches = 0
	e.idle = 0
	e.last = nil
	for _, p := range procs {
		p.Reset()
	}
	if err := e.policy.Reset(procs); err != nil {
		return nil, fmt.Errorf("reset %s: %w", e.policy.Name(), err)
	}

	e.logger.Debug("run started", "processes", len(procs))

	for e.done.Len() < len(procs) {
		e.admit(procs)

		if p := e.policy.Next(e.ready, e.done); p != nil {
			e.execute(p)
		} else {
			e.idle++
			if e.last != nil && e.last.State == process.StateRunning {
				e.last.State = process.StateReady
			}
			e.last = nil
		}

		e.now++
	}

	e.logger.Debug("run finished", "elapsed", e.now, "context_switches", e.switches, "idle_ticks", e.idle)

	return &Run{
		Policy:          e.policy.Name(),
		Ledger:          e.ledger,
		Processes:       procs,
		ContextSwitches: e.switches,
		Elapsed:         e.now,
		IdleTicks:       e.idle,
	}, nil
}

// admit moves every process arriving at the current tick into the ready set.
func (e *Engine) admit(procs []*process.Process) {
	for _, p := range procs {
		if p.ArrivalTime == e.now && p.State == process.StateNew {
			p.State = process.StateReady
			e.ready = append(e.ready, p)
			e.logger.Debug("admitted", "tick", e.now, "pid", p.ID)
		}
	}
}

// execute runs p for one tick and retires it if its burst is exhausted.
func (e *Engine) execute(p *process.Process) {
	if prev, ok := e.ledger.Last(); ok && prev.ProcessID != p.ID {
		e.switches++
	}
	if e.last != nil && e.last != p && e.last.State == process.StateRunning {
		e.last.State = process.StateReady
	}

	if p.StartTime < 0 {
		p.StartTime = e.now
	}
	p.State = process.StateRunning
	p.RemainingTime--
	e.ledger.Append(p.ID, e.now)
	e.last = p

	if p.RemainingTime > 0 {
		return
	}

	p.State = process.StateTerminated
	p.CompletionTime = e.now + 1
	p.TurnaroundTime = p.CompletionTime - p.ArrivalTime
	p.WaitingTime = p.TurnaroundTime - p.BurstTime
	e.done.Add(p.ID)
	e.last = nil
	for i, r := range e.ready {
		if r == p {
			e.ready = append(e.ready[:i], e.ready[i+1:]...)
			break
		}
	}
	e.logger.Debug("terminated", "tick", p.CompletionTime, "pid", p.ID, "waiting", p.WaitingTime)
}

// Validate rejects workloads the simulation could not finish: empty sets,
// negative arrivals, non-positive bursts, duplicate ids, dependencies outside
// the set and dependency cycles.
func Validate(procs []*process.Process) error {
	if len(procs) == 0 {
		return fmt.Errorf("%w: no processes", ErrInvalidWorkload)
	}
	for _, p := range procs {
		if p == nil {
			return fmt.Errorf("%w: nil process", ErrInvalidWorkload)
		}
		if p.ArrivalTime < 0 {
			return fmt.Errorf("%w: process %d has negative arrival time %d", ErrInvalidWorkload, p.ID, p.ArrivalTime)
		}
		if p.BurstTime <= 0 {
			return fmt.Errorf("%w: process %d has burst time %d", ErrInvalidWorkload, p.ID, p.BurstTime)
		}
	}
	if _, err := graph.Build(procs); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkload, err)
	}
	return nil
}
