package process

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of a simulated process.
type State string

const (
	StateNew        State = "NEW"
	StateReady      State = "READY"
	StateRunning    State = "RUNNING"
	StateWaiting    State = "WAITING"
	StateTerminated State = "TERMINATED"
)

// QueueLevel is one of the three fixed multi-level queue levels.
// A is scanned first, C last.
type QueueLevel string

const (
	LevelA QueueLevel = "A"
	LevelB QueueLevel = "B"
	LevelC QueueLevel = "C"
)

// Levels lists every queue level in scan order.
var Levels = []QueueLevel{LevelA, LevelB, LevelC}

// ParseQueueLevel converts "A", "B" or "C" (case-insensitive) to a QueueLevel.
func ParseQueueLevel(s string) (QueueLevel, error) {
	switch QueueLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelA:
		return LevelA, nil
	case LevelB:
		return LevelB, nil
	case LevelC:
		return LevelC, nil
	}
	return "", fmt.Errorf("unknown queue level %q", s)
}

// DefaultAlgorithm is the algorithm a level is traditionally associated with.
func (l QueueLevel) DefaultAlgorithm() Algorithm {
	switch l {
	case LevelA:
		return AlgFCFS
	case LevelB:
		return AlgSJF
	default:
		return AlgRR
	}
}

// Algorithm names a per-level scheduling discipline of the multi-level queue.
type Algorithm string

const (
	AlgFCFS Algorithm = "FCFS"
	AlgSJF  Algorithm = "SJF"
	AlgRR   Algorithm = "RR"
)

// ParseAlgorithm converts "FCFS", "SJF" or "RR" (case-insensitive) to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToUpper(strings.TrimSpace(s))) {
	case AlgFCFS:
		return AlgFCFS, nil
	case AlgSJF:
		return AlgSJF, nil
	case AlgRR:
		return AlgRR, nil
	}
	return "", fmt.Errorf("unknown queue algorithm %q", s)
}

// IDSet is a set of process IDs.
type IDSet map[int]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Add(id int) { s[id] = struct{}{} }

func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }
