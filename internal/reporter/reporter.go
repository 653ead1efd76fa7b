package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/joshharrison/schedsim/internal/cpm"
	"github.com/joshharrison/schedsim/internal/ledger"
	"github.com/joshharrison/schedsim/internal/metrics"
	"github.com/joshharrison/schedsim/internal/orchestrator"
	"github.com/joshharrison/schedsim/internal/planner"
	"github.com/joshharrison/schedsim/internal/process"
	"github.com/joshharrison/schedsim/internal/ui"
	"github.com/joshharrison/schedsim/internal/workload"
)

// Reporter collects run results and renders them for the terminal.
type Reporter struct {
	Plan      *planner.Plan
	Processes []*process.Process

	mu      sync.Mutex
	results []*orchestrator.Result
}

// New creates a new Reporter for plan over the given workload template.
func New(plan *planner.Plan, procs []*process.Process) *Reporter {
	return &Reporter{Plan: plan, Processes: procs}
}

// Record implements orchestrator.ResultSink.
func (r *Reporter) Record(_ context.Context, res *orchestrator.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

// Results returns the recorded results in arrival order.
func (r *Reporter) Results() []*orchestrator.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*orchestrator.Result(nil), r.results...)
}

// PrintWorkload writes the process table and the scheduler settings in effect.
func (r *Reporter) PrintWorkload(w io.Writer) {
	fmt.Fprintf(w, "%s\n", ui.BoldCyan("Initial Process Settings"))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Process", "Arrival", "Burst", "Priority", "Queue", "Dependencies"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, d := range workload.Descriptors(r.Processes) {
		table.Append([]string{
			strconv.Itoa(d.ProcessID),
			strconv.Itoa(d.ArrivalTime),
			strconv.Itoa(d.BurstTime),
			strconv.Itoa(d.Priority),
			d.QueueLevel,
			formatIDs(d.Dependencies),
		})
	}
	table.Render()

	cfg := r.Plan.Config
	fmt.Fprintf(w, "\n%s\n", ui.BoldCyan("Scheduler Settings"))
	fmt.Fprintf(w, "  Round Robin quantum: %s\n", ui.Bold(cfg.TimeQuantum))
	fmt.Fprintf(w, "  MLQ levels:          ")
	for i, level := range process.Levels {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s=%s", level, cfg.QueueAlgorithms[level])
	}
	fmt.Fprintf(w, "\n  Parallel runs:       %d\n\n", cfg.MaxParallel)
}

// PrintAnalysis writes the dependency levels and critical path of the workload.
func (r *Reporter) PrintAnalysis(w io.Writer, analysis *cpm.Result) {
	fmt.Fprintf(w, "%s (%d levels, longest chain %d ticks)\n\n",
		ui.BoldCyan("Dependency analysis"), len(analysis.Levels), analysis.TotalDuration)

	for _, level := range analysis.Levels {
		fmt.Fprintf(w, "  %s %d\n", ui.BoldWhite("LEVEL"), level.Index+1)
		for _, id := range level.ProcessIDs {
			ps := analysis.Processes[id]
			critical := " "
			if ps.IsCritical {
				critical = ui.BoldYellow("⚡")
			}
			fmt.Fprintf(w, "    %s %s  ES=%-3d EF=%-3d slack=%-3d depth=%d\n",
				critical, ui.ProcessPrefix(id), ps.ES, ps.EF, ps.Slack, ps.Depth)
		}
	}

	if len(analysis.CriticalPath) > 0 {
		parts := make([]string, len(analysis.CriticalPath))
		for i, id := range analysis.CriticalPath {
			parts[i] = fmt.Sprintf("P%d", id)
		}
		fmt.Fprintf(w, "\nCritical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(parts, " → ")))
	}
	fmt.Fprintln(w)
}

// PrintComparison writes one row per run, grouped by dependency mode.
func (r *Reporter) PrintComparison(w io.Writer) {
	results := r.Results()
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("Policy comparison"), ui.Dim(r.Plan.ID))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Policy", "Mode", "Avg Wait", "Avg Turnaround", "Avg Response", "CPU %", "Switches", "Throughput", "Makespan"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, res := range results {
		m := res.Metrics
		table.Append([]string{
			res.Run.Label,
			string(res.Run.Group),
			fmt.Sprintf("%.2f", m.AvgWaitingTime),
			fmt.Sprintf("%.2f", m.AvgTurnaroundTime),
			fmt.Sprintf("%.2f", m.AvgResponseTime),
			fmt.Sprintf("%.1f", m.CPUUtilization),
			strconv.Itoa(m.ContextSwitches),
			fmt.Sprintf("%.2f", m.Throughput),
			strconv.Itoa(m.Makespan),
		})
	}
	if best := bestBy(results, func(m metrics.Metrics) float64 { return m.AvgWaitingTime }); best != nil {
		table.SetFooter([]string{"", "", "Best wait", best.Run.Label, "", "", "", "", ""})
	}
	table.Render()
	fmt.Fprintln(w)
}

// PrintGantt writes a text Gantt chart for every run.
func (r *Reporter) PrintGantt(w io.Writer) {
	for _, res := range r.Results() {
		fmt.Fprintf(w, "%s\n", ui.BoldWhite(res.Run.Label))
		writeGantt(w, res.Sim.Ledger.Slices())
		fmt.Fprintln(w)
	}
}

// cellWidth is the number of columns one tick occupies in the chart.
const cellWidth = 2

func writeGantt(w io.Writer, slices []ledger.Slice) {
	var bar, axis strings.Builder
	t, col := 0, 0
	mark := func(tick int) {
		if pad := col - axis.Len(); pad > 0 {
			axis.WriteString(strings.Repeat(" ", pad))
		} else if axis.Len() > 0 {
			return
		}
		axis.WriteString(strconv.Itoa(tick))
	}
	advance := func(cells string, ticks int) {
		bar.WriteString(cells)
		col += ticks * cellWidth
	}

	for _, s := range slices {
		if s.Start > t {
			mark(t)
			advance(ui.Idle((s.Start-t)*cellWidth), s.Start-t)
			t = s.Start
		}
		mark(t)
		advance(ui.Block(s.ProcessID, (s.End-s.Start)*cellWidth), s.End-s.Start)
		t = s.End
	}
	mark(t)

	fmt.Fprintf(w, "  |%s|\n   %s\n", bar.String(), axis.String())
}

// PrintDetails writes the step-by-step metric derivation of every run.
func (r *Reporter) PrintDetails(w io.Writer) {
	for _, res := range r.Results() {
		for _, line := range metrics.Breakdown(res.Metrics) {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
}

// Summary returns a short verdict naming the best run on each headline metric.
func (r *Reporter) Summary() string {
	results := r.Results()
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", ui.BoldGreen("Best policies"))
	fmt.Fprintf(&b, "%s\n", ui.Cyan("═════════════"))

	rows := []struct {
		name   string
		key    func(metrics.Metrics) float64
		format string
	}{
		{"Waiting time", func(m metrics.Metrics) float64 { return m.AvgWaitingTime }, "%.2f"},
		{"Turnaround time", func(m metrics.Metrics) float64 { return m.AvgTurnaroundTime }, "%.2f"},
		{"Response time", func(m metrics.Metrics) float64 { return m.AvgResponseTime }, "%.2f"},
		{"Context switches", func(m metrics.Metrics) float64 { return float64(m.ContextSwitches) }, "%.0f"},
	}
	for _, row := range rows {
		best := bestBy(results, row.key)
		if best == nil {
			continue
		}
		fmt.Fprintf(&b, "%-17s %s (%s)\n", row.name+":", ui.Bold(best.Run.Label), fmt.Sprintf(row.format, row.key(best.Metrics)))
	}
	return b.String()
}

// bestBy returns the first result minimising key, or nil if there are none.
func bestBy(results []*orchestrator.Result, key func(metrics.Metrics) float64) *orchestrator.Result {
	var best *orchestrator.Result
	for _, res := range results {
		if best == nil || key(res.Metrics) < key(best.Metrics) {
			best = res
		}
	}
	return best
}

// JSON returns the machine-readable comparison.
func (r *Reporter) JSON() ([]byte, error) {
	type runOutput struct {
		RunID               string          `json:"run_id"`
		Label               string          `json:"label"`
		Kind                string          `json:"kind"`
		RespectDependencies bool            `json:"respect_dependencies"`
		Metrics             metrics.Metrics `json:"metrics"`
		Gantt               []ledger.Slice  `json:"gantt"`
		IdleTicks           int             `json:"idle_ticks"`
	}

	type output struct {
		PlanID    string                `json:"plan_id"`
		Processes []workload.Descriptor `json:"processes"`
		Runs      []runOutput           `json:"runs"`
	}

	o := output{
		PlanID:    r.Plan.ID,
		Processes: workload.Descriptors(r.Processes),
	}
	results := r.Results()
	sort.SliceStable(results, func(i, j int) bool { return results[i].Run.Index < results[j].Run.Index })
	for _, res := range results {
		o.Runs = append(o.Runs, runOutput{
			RunID:               res.Run.RunID,
			Label:               res.Run.Label,
			Kind:                string(res.Run.Kind),
			RespectDependencies: res.Run.RespectDependencies,
			Metrics:             res.Metrics,
			Gantt:               res.Sim.Ledger.Slices(),
			IdleTicks:           res.Sim.IdleTicks,
		})
	}

	return json.MarshalIndent(o, "", "  ")
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
