package reporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/joshharrison/schedsim/internal/ledger"
	"github.com/joshharrison/schedsim/internal/store"
	"github.com/joshharrison/schedsim/internal/ui"
)

// PrintHistory writes stored runs as a table, newest first.
func PrintHistory(w io.Writer, runs []store.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, ui.Dim("No runs recorded."))
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "Plan", "Policy", "Avg Wait", "Avg Turnaround", "CPU %", "Switches", "Recorded"})
	for _, r := range runs {
		table.Append([]string{
			shortID(r.ID),
			r.PlanID,
			r.Label,
			fmt.Sprintf("%.2f", r.AvgWaitingTime),
			fmt.Sprintf("%.2f", r.AvgTurnaroundTime),
			fmt.Sprintf("%.1f", r.CPUUtilization),
			strconv.Itoa(r.ContextSwitches),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}

// PrintLedger writes the Gantt chart of a stored ledger.
func PrintLedger(w io.Writer, title string, entries []ledger.Entry) {
	fmt.Fprintf(w, "%s\n", ui.BoldWhite(title))
	writeGantt(w, ledger.FromEntries(entries).Slices())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
