package ledger

import (
	"testing"

	"github.com/joshharrison/schedsim/internal/process"
)

func TestAppendAndLast(t *testing.T) {
	l := New()
	if _, ok := l.Last(); ok {
		t.Fatal("expected no last entry on an empty ledger")
	}

	l.Append(1, 0)
	e := l.Append(2, 1)

	if e.Start != 1 || e.End != 2 || e.State != process.StateRunning {
		t.Errorf("unexpected entry %+v", e)
	}
	last, ok := l.Last()
	if !ok || last.ProcessID != 2 {
		t.Errorf("expected last entry for process 2, got %+v", last)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", l.Len())
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	l := New()
	l.Append(1, 0)

	entries := l.Entries()
	entries[0].ProcessID = 99

	if last, _ := l.Last(); last.ProcessID != 1 {
		t.Error("Entries should return a copy, not a reference")
	}
}

func TestSlices_CoalescesRuns(t *testing.T) {
	l := New()
	l.Append(1, 0)
	l.Append(1, 1)
	l.Append(2, 2)
	// idle tick at 3
	l.Append(2, 4)
	l.Append(1, 5)

	got := l.Slices()
	want := []Slice{{1, 0, 2}, {2, 2, 3}, {2, 4, 5}, {1, 5, 6}}
	if len(got) != len(want) {
		t.Fatalf("expected %d slices, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slice %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestForProcessAndBusyTime(t *testing.T) {
	l := New()
	l.Append(1, 0)
	l.Append(2, 1)
	l.Append(1, 3)

	if n := len(l.ForProcess(1)); n != 2 {
		t.Errorf("expected 2 entries for process 1, got %d", n)
	}
	if l.BusyTime() != 3 {
		t.Errorf("expected busy time 3, got %d", l.BusyTime())
	}
}

func TestFromEntries_Copies(t *testing.T) {
	src := []Entry{
		{ProcessID: 1, Start: 0, End: 1, State: process.StateRunning},
		{ProcessID: 1, Start: 1, End: 2, State: process.StateRunning},
	}
	l := FromEntries(src)
	src[0].ProcessID = 9

	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
	if got := l.Slices(); len(got) != 1 || got[0].ProcessID != 1 || got[0].End != 2 {
		t.Errorf("unexpected slices %+v", got)
	}
}
