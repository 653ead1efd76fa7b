package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/joshharrison/schedsim/internal/cpm"
	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/ledger"
	"github.com/joshharrison/schedsim/internal/orchestrator"
	"github.com/joshharrison/schedsim/internal/planner"
	"github.com/joshharrison/schedsim/internal/policy"
	"github.com/joshharrison/schedsim/internal/process"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func makeProcesses() []*process.Process {
	return []*process.Process{
		process.New(1, 0, 3, 2, process.LevelA),
		process.New(2, 0, 2, 1, process.LevelB, 1),
	}
}

func analyze(t *testing.T, procs []*process.Process) (*graph.DependencyGraph, *cpm.Result) {
	t.Helper()
	g, err := graph.Build(procs)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	result, err := cpm.Analyze(g, procs)
	if err != nil {
		t.Fatalf("cpm analyze: %v", err)
	}
	return g, result
}

// makeReporter runs the FCFS-only plan and returns a populated reporter.
func makeReporter(t *testing.T) *Reporter {
	t.Helper()
	procs := makeProcesses()
	g, result := analyze(t, procs)
	plan, err := planner.Generate(g, result, planner.PlanConfig{Kinds: []policy.Kind{policy.KindFCFS}})
	if err != nil {
		t.Fatalf("generate plan: %v", err)
	}
	r := New(plan, procs)
	if _, err := orchestrator.New(plan, orchestrator.Config{}, nil, r).Run(context.Background(), procs); err != nil {
		t.Fatalf("run plan: %v", err)
	}
	return r
}

func TestRecord_CollectsResults(t *testing.T) {
	r := makeReporter(t)
	results := r.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Run.Label != "FCFS (IPC)" || results[1].Run.Label != "FCFS" {
		t.Errorf("unexpected labels %q, %q", results[0].Run.Label, results[1].Run.Label)
	}
}

func TestPrintWorkload(t *testing.T) {
	r := makeReporter(t)
	var buf bytes.Buffer
	r.PrintWorkload(&buf)
	out := buf.String()

	for _, want := range []string{"PROCESS", "ARRIVAL", "DEPENDENCIES", "Round Robin quantum: 4", "A=RR, B=FCFS, C=SJF"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintComparison(t *testing.T) {
	r := makeReporter(t)
	var buf bytes.Buffer
	r.PrintComparison(&buf)
	out := buf.String()

	for _, want := range []string{"FCFS (IPC)", "Non-IPC", "1.50", "100.0", "BEST WAIT"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintAnalysis(t *testing.T) {
	r := makeReporter(t)
	_, result := analyze(t, r.Processes)
	var buf bytes.Buffer
	r.PrintAnalysis(&buf, result)
	out := buf.String()

	if !strings.Contains(out, "2 levels") {
		t.Errorf("expected level count in output:\n%s", out)
	}
	if !strings.Contains(out, "P1 → P2") {
		t.Errorf("expected critical path in output:\n%s", out)
	}
}

func TestWriteGantt(t *testing.T) {
	var buf bytes.Buffer
	writeGantt(&buf, []ledger.Slice{
		{ProcessID: 1, Start: 0, End: 3},
		{ProcessID: 2, Start: 3, End: 5},
	})

	want := "  |  P1   P2 |\n   0     3   5\n"
	if buf.String() != want {
		t.Errorf("gantt mismatch:\ngot  %q\nwant %q", buf.String(), want)
	}
}

func TestWriteGantt_IdleGap(t *testing.T) {
	var buf bytes.Buffer
	writeGantt(&buf, []ledger.Slice{
		{ProcessID: 1, Start: 0, End: 1},
		{ProcessID: 2, Start: 3, End: 4},
	})

	want := "  |P1····P2|\n   0 1   3 4\n"
	if buf.String() != want {
		t.Errorf("gantt mismatch:\ngot  %q\nwant %q", buf.String(), want)
	}
}

func TestPrintDetails(t *testing.T) {
	r := makeReporter(t)
	var buf bytes.Buffer
	r.PrintDetails(&buf)
	out := buf.String()

	if !strings.Contains(out, "FCFS (IPC) calculation:") {
		t.Errorf("expected breakdown header:\n%s", out)
	}
	if !strings.Contains(out, "Average Waiting Time = 3 / 2 = 1.50") {
		t.Errorf("expected average derivation:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	r := makeReporter(t)
	s := r.Summary()
	if !strings.Contains(s, "Waiting time:") || !strings.Contains(s, "FCFS (IPC) (1.50)") {
		t.Errorf("unexpected summary:\n%s", s)
	}
}

func TestJSON(t *testing.T) {
	r := makeReporter(t)
	data, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out struct {
		PlanID string `json:"plan_id"`
		Runs   []struct {
			Label   string         `json:"label"`
			Gantt   []ledger.Slice `json:"gantt"`
			Metrics struct {
				AvgWaitingTime float64 `json:"avg_waiting_time"`
			} `json:"metrics"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.PlanID != r.Plan.ID {
		t.Errorf("expected plan id %s, got %s", r.Plan.ID, out.PlanID)
	}
	if len(out.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(out.Runs))
	}
	if out.Runs[0].Metrics.AvgWaitingTime != 1.5 {
		t.Errorf("expected avg wait 1.5, got %v", out.Runs[0].Metrics.AvgWaitingTime)
	}
	if len(out.Runs[0].Gantt) != 2 {
		t.Errorf("expected 2 gantt slices, got %v", out.Runs[0].Gantt)
	}
}
