package policy

import (
	"container/list"

	"github.com/joshharrison/schedsim/internal/process"
)

// RoundRobin grants each process at most Quantum consecutive ticks before
// rotating it to the tail of its own rotation queue.
type RoundRobin struct {
	gate
	Quantum int

	queue   *list.List // of *process.Process, rotation order
	index   map[int]*list.Element
	current *process.Process
	used    int // ticks granted to current in its present slice
}

func NewRoundRobin(quantum int, respectDeps bool) *RoundRobin {
	rr := &RoundRobin{gate: gate{respectDeps: respectDeps}, Quantum: quantum}
	rr.Reset(nil)
	return rr
}

func (r *RoundRobin) Name() string { return "Round Robin" + r.suffix() }

func (r *RoundRobin) Reset([]*process.Process) error {
	r.queue = list.New()
	r.index = make(map[int]*list.Element)
	r.current = nil
	r.used = 0
	return nil
}

func (r *RoundRobin) Next(ready []*process.Process, done process.IDSet) *process.Process {
	r.sync(ready)
	if r.queue.Len() == 0 {
		return nil
	}

	if cur := r.current; cur != nil && r.index[cur.ID] != nil && r.used < r.Quantum && r.eligible(cur, done) {
		r.used++
		return cur
	}

	if cur := r.current; cur != nil {
		if e := r.index[cur.ID]; e != nil {
			r.queue.MoveToBack(e)
		}
	}
	r.current = nil
	r.used = 0

	for n := r.queue.Len(); n > 0; n-- {
		front := r.queue.Front()
		p := front.Value.(*process.Process)
		if r.eligible(p, done) {
			r.current = p
			r.used = 1
			return p
		}
		r.queue.MoveToBack(front)
	}
	return nil
}

// sync appends newly admitted processes in ready order and drops the ones
// that have left the ready set.
func (r *RoundRobin) sync(ready []*process.Process) {
	present := make(map[int]bool, len(ready))
	for _, p := range ready {
		present[p.ID] = true
		if _, ok := r.index[p.ID]; !ok {
			r.index[p.ID] = r.queue.PushBack(p)
		}
	}
	for id, e := range r.index {
		if !present[id] {
			r.queue.Remove(e)
			delete(r.index, id)
		}
	}
}
