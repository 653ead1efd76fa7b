package policy

import (
	"fmt"

	"github.com/joshharrison/schedsim/internal/process"
)

// MultiLevelQueue partitions the ready set by queue level and serves the
// levels in strict A, B, C order. Each level keeps its own sub-policy, so
// per-level state (SJF continuation, RR rotation and quantum) survives while a
// higher level holds the CPU. There is no aging.
type MultiLevelQueue struct {
	gate
	Algorithms map[process.QueueLevel]process.Algorithm

	levels     map[process.QueueLevel]Policy
	partitions map[process.QueueLevel][]*process.Process
}

func NewMultiLevelQueue(quantum int, algs map[process.QueueLevel]process.Algorithm, respectDeps bool) (*MultiLevelQueue, error) {
	if algs == nil {
		algs = DefaultQueueAlgorithms()
	}
	m := &MultiLevelQueue{
		gate:       gate{respectDeps: respectDeps},
		Algorithms: make(map[process.QueueLevel]process.Algorithm, len(process.Levels)),
		levels:     make(map[process.QueueLevel]Policy, len(process.Levels)),
		partitions: make(map[process.QueueLevel][]*process.Process, len(process.Levels)),
	}
	for _, level := range process.Levels {
		alg, ok := algs[level]
		if !ok {
			alg = level.DefaultAlgorithm()
		}
		var sub Policy
		switch alg {
		case process.AlgFCFS:
			sub = NewFCFS(respectDeps)
		case process.AlgSJF:
			sub = NewSJF(respectDeps)
		case process.AlgRR:
			sub = NewRoundRobin(quantum, respectDeps)
		default:
			return nil, fmt.Errorf("level %s: unsupported algorithm %q", level, alg)
		}
		m.Algorithms[level] = alg
		m.levels[level] = sub
	}
	return m, nil
}

func (m *MultiLevelQueue) Name() string { return "MLQ" + m.suffix() }

func (m *MultiLevelQueue) Reset(procs []*process.Process) error {
	for _, level := range process.Levels {
		if err := m.levels[level].Reset(procs); err != nil {
			return fmt.Errorf("reset level %s: %w", level, err)
		}
	}
	return nil
}

func (m *MultiLevelQueue) Next(ready []*process.Process, done process.IDSet) *process.Process {
	for _, level := range process.Levels {
		m.partitions[level] = m.partitions[level][:0]
	}
	for _, p := range ready {
		m.partitions[p.QueueLevel] = append(m.partitions[p.QueueLevel], p)
	}

	for _, level := range process.Levels {
		part := m.partitions[level]
		if len(part) == 0 {
			continue
		}
		if p := m.levels[level].Next(part, done); p != nil {
			return p
		}
	}
	return nil
}
