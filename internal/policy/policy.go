// Package policy implements the next-process selection rules the engine
// delegates to once per tick.
package policy

import (
	"fmt"
	"strings"

	"github.com/joshharrison/schedsim/internal/process"
)

// Policy picks the process to run for the next tick.
//
// Reset is called once at the start of every run, before the first Next.
// Next receives the ready set in admission order and the ids of terminated
// processes; it returns nil when nothing is eligible.
type Policy interface {
	Name() string
	Reset(procs []*process.Process) error
	Next(ready []*process.Process, done process.IDSet) *process.Process
}

// Kind enumerates the built-in policies.
type Kind string

const (
	KindFCFS            Kind = "fcfs"
	KindSJF             Kind = "sjf"
	KindRoundRobin      Kind = "rr"
	KindPriority        Kind = "priority"
	KindMultiLevelQueue Kind = "mlq"
	KindDependencyAware Kind = "dependency"
)

// Kinds lists every built-in policy in report order.
var Kinds = []Kind{KindFCFS, KindSJF, KindRoundRobin, KindPriority, KindMultiLevelQueue, KindDependencyAware}

// ParseKind accepts the short names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fcfs":
		return KindFCFS, nil
	case "sjf":
		return KindSJF, nil
	case "rr", "round-robin", "roundrobin":
		return KindRoundRobin, nil
	case "priority":
		return KindPriority, nil
	case "mlq":
		return KindMultiLevelQueue, nil
	case "dependency", "ipc":
		return KindDependencyAware, nil
	}
	return "", fmt.Errorf("unknown policy %q", s)
}

// Options configures a policy instance.
type Options struct {
	RespectDependencies bool
	TimeQuantum         int
	QueueAlgorithms     map[process.QueueLevel]process.Algorithm
}

// DefaultQueueAlgorithms is the level binding shipped in the default workload settings.
func DefaultQueueAlgorithms() map[process.QueueLevel]process.Algorithm {
	return map[process.QueueLevel]process.Algorithm{
		process.LevelA: process.AlgRR,
		process.LevelB: process.AlgFCFS,
		process.LevelC: process.AlgSJF,
	}
}

// New builds a fresh policy instance of the given kind.
func New(kind Kind, opts Options) (Policy, error) {
	if opts.TimeQuantum <= 0 && (kind == KindRoundRobin || kind == KindMultiLevelQueue) {
		return nil, fmt.Errorf("%s: time quantum must be positive, got %d", kind, opts.TimeQuantum)
	}
	switch kind {
	case KindFCFS:
		return NewFCFS(opts.RespectDependencies), nil
	case KindSJF:
		return NewSJF(opts.RespectDependencies), nil
	case KindRoundRobin:
		return NewRoundRobin(opts.TimeQuantum, opts.RespectDependencies), nil
	case KindPriority:
		return NewPriority(opts.RespectDependencies), nil
	case KindMultiLevelQueue:
		return NewMultiLevelQueue(opts.TimeQuantum, opts.QueueAlgorithms, opts.RespectDependencies)
	case KindDependencyAware:
		return NewDependencyAware(), nil
	}
	return nil, fmt.Errorf("unknown policy kind %q", kind)
}

// gate holds the dependency-respecting mode flag shared by every policy.
type gate struct {
	respectDeps bool
}

func (g gate) eligible(p *process.Process, done process.IDSet) bool {
	return !g.respectDeps || p.CanExecute(done)
}

func (g gate) suffix() string {
	if g.respectDeps {
		return " (IPC)"
	}
	return ""
}

// firstMin returns the eligible process minimising key, keeping the
// earliest one in ready order on ties.
func firstMin(ready []*process.Process, ok func(*process.Process) bool, key func(*process.Process) int) *process.Process {
	var best *process.Process
	for _, p := range ready {
		if !ok(p) {
			continue
		}
		if best == nil || key(p) < key(best) {
			best = p
		}
	}
	return best
}
