package graph

import (
	"errors"
	"testing"

	"github.com/joshharrison/schedsim/internal/process"
)

func proc(id int, deps ...int) *process.Process {
	return process.New(id, 0, 1, id, process.LevelA, deps...)
}

func TestBuild_Diamond(t *testing.T) {
	// 1 -> 2 -> 4
	// 1 -> 3 -> 4
	procs := []*process.Process{proc(1), proc(2, 1), proc(3, 1), proc(4, 2, 3)}

	g, err := Build(procs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.ProcessCount() != 4 {
		t.Errorf("expected 4 processes, got %d", g.ProcessCount())
	}
	if len(g.Roots) != 1 || g.Roots[0] != 1 {
		t.Errorf("expected roots=[1], got %v", g.Roots)
	}
	if len(g.Leaves) != 1 || g.Leaves[0] != 4 {
		t.Errorf("expected leaves=[4], got %v", g.Leaves)
	}
	if g.DependentCount(1) != 2 {
		t.Errorf("expected 1 to have 2 dependents, got %v", g.Dependents[1])
	}
	if deps := g.Dependencies[4]; len(deps) != 2 || deps[0] != 2 || deps[1] != 3 {
		t.Errorf("expected 4 to depend on [2 3], got %v", deps)
	}
}

func TestBuild_KeysCoverEveryProcess(t *testing.T) {
	g, err := Build([]*process.Process{proc(5), proc(9)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []int{5, 9} {
		if _, ok := g.Dependents[id]; !ok {
			t.Errorf("expected key %d in dependents map", id)
		}
	}
	if len(g.Dependents) != 2 {
		t.Errorf("expected exactly 2 keys, got %d", len(g.Dependents))
	}
}

func TestBuild_DuplicateEdgesCollapsed(t *testing.T) {
	g, err := Build([]*process.Process{proc(1), proc(2, 1, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.DependentCount(1) != 1 {
		t.Errorf("expected duplicate edge to collapse, got %v", g.Dependents[1])
	}
}

func TestBuild_CycleDetection(t *testing.T) {
	// 1 -> 2 -> 3 -> 1
	_, err := Build([]*process.Process{proc(1, 3), proc(2, 1), proc(3, 2)})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	t.Logf("cycle error (expected): %v", err)
}

func TestBuild_SelfDependency(t *testing.T) {
	_, err := Build([]*process.Process{proc(1, 1)})
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestBuild_UnknownDependency(t *testing.T) {
	_, err := Build([]*process.Process{proc(1), proc(2, 42)})
	if !errors.Is(err, ErrUnknownDependency) {
		t.Fatalf("expected unknown dependency error, got %v", err)
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	if _, err := Build([]*process.Process{proc(1), proc(1)}); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	g := &DependencyGraph{
		IDs:        []int{1, 2},
		Dependents: map[int][]int{1: {2}},
	}
	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestDetectCycle_WithCycle(t *testing.T) {
	g := &DependencyGraph{
		IDs:        []int{1, 2, 3},
		Dependents: map[int][]int{1: {2}, 2: {3}, 3: {1}},
	}
	cycle := g.DetectCycle()
	if cycle == nil {
		t.Fatal("expected cycle, got nil")
	}
	if len(cycle) < 3 {
		t.Errorf("expected cycle of length >= 3, got %v", cycle)
	}
}

func TestChainDepth(t *testing.T) {
	// 1 -> 2 -> 3 -> 4, plus 1 -> 5
	g, err := Build([]*process.Process{proc(1), proc(2, 1), proc(3, 2), proc(4, 3), proc(5, 1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[int]int{1: 4, 2: 3, 3: 2, 4: 1, 5: 1}
	for id, want := range cases {
		if got := g.ChainDepth(id, process.NewIDSet()); got != want {
			t.Errorf("ChainDepth(%d) = %d, want %d", id, got, want)
		}
	}
}

func TestChainDepth_DiamondTakesLongestBranch(t *testing.T) {
	// 1 -> 2 -> 4 -> 5
	// 1 -> 3 -> 4
	g, err := Build([]*process.Process{proc(1), proc(2, 1), proc(3, 1), proc(4, 2, 3), proc(5, 4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.ChainDepth(1, process.NewIDSet()); got != 4 {
		t.Errorf("expected depth 4, got %d", got)
	}
}

func TestChainDepth_VisitedGuardsCycles(t *testing.T) {
	// Hand-built cyclic graph; Build would refuse it.
	g := &DependencyGraph{
		IDs:        []int{1, 2},
		Dependents: map[int][]int{1: {2}, 2: {1}},
	}
	if got := g.ChainDepth(1, process.NewIDSet()); got != 2 {
		t.Errorf("expected bounded depth 2, got %d", got)
	}
}
