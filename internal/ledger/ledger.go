package ledger

import "github.com/joshharrison/schedsim/internal/process"

// Entry records that a process held the CPU during [Start, End).
type Entry struct {
	ProcessID int           `json:"process_id"`
	Start     int           `json:"start_time"`
	End       int           `json:"end_time"`
	State     process.State `json:"state"`
}

// Duration is the number of ticks the entry covers.
func (e Entry) Duration() int { return e.End - e.Start }

// Slice is a run of consecutive entries for the same process, as drawn on a Gantt chart.
type Slice struct {
	ProcessID int `json:"process_id"`
	Start     int `json:"start_time"`
	End       int `json:"end_time"`
}

// Ledger is the append-only execution history of one scheduling run.
// Entries are chronological because the engine only appends at the current tick.
type Ledger struct {
	entries []Entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// FromEntries rebuilds a ledger from previously recorded entries.
func FromEntries(entries []Entry) *Ledger {
	return &Ledger{entries: append([]Entry(nil), entries...)}
}

// Append records one unit of execution for pid starting at tick start.
func (l *Ledger) Append(pid, start int) Entry {
	e := Entry{ProcessID: pid, Start: start, End: start + 1, State: process.StateRunning}
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Last returns the most recent entry.
func (l *Ledger) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Entries returns a copy of all entries.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ForProcess returns the entries attributed to pid, in order.
func (l *Ledger) ForProcess(pid int) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.ProcessID == pid {
			out = append(out, e)
		}
	}
	return out
}

// BusyTime sums the durations of all Running entries.
func (l *Ledger) BusyTime() int {
	total := 0
	for _, e := range l.entries {
		if e.State == process.StateRunning {
			total += e.Duration()
		}
	}
	return total
}

// Slices coalesces adjacent entries of the same process. An idle gap
// always starts a new slice.
func (l *Ledger) Slices() []Slice {
	var out []Slice
	for _, e := range l.entries {
		if n := len(out); n > 0 && out[n-1].ProcessID == e.ProcessID && out[n-1].End == e.Start {
			out[n-1].End = e.End
			continue
		}
		out = append(out, Slice{ProcessID: e.ProcessID, Start: e.Start, End: e.End})
	}
	return out
}
