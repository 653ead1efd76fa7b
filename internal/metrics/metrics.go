// Package metrics derives per-process and aggregate performance figures from
// a finished run. Everything is computed from the ledger; the engine-stamped
// fields on the processes are not consulted.
package metrics

import (
	"fmt"
	"strings"

	"github.com/joshharrison/schedsim/internal/engine"
)

// ProcessStats are the ledger-derived figures for one process.
type ProcessStats struct {
	ProcessID      int `json:"process_id"`
	ArrivalTime    int `json:"arrival_time"`
	BurstTime      int `json:"burst_time"`
	StartTime      int `json:"start_time"` // -1 if the process never ran
	CompletionTime int `json:"completion_time"`
	TotalRunTime   int `json:"total_run_time"`
	TurnaroundTime int `json:"turnaround_time"`
	WaitingTime    int `json:"waiting_time"`
	ResponseTime   int `json:"response_time"`
}

// Metrics summarises one run.
type Metrics struct {
	Policy            string         `json:"policy"`
	Processes         []ProcessStats `json:"processes"`
	AvgWaitingTime    float64        `json:"avg_waiting_time"`
	AvgTurnaroundTime float64        `json:"avg_turnaround_time"`
	AvgResponseTime   float64        `json:"avg_response_time"`
	CPUUtilization    float64        `json:"cpu_utilization"` // percent
	ContextSwitches   int            `json:"context_switches"`
	Throughput        float64        `json:"throughput"` // completed processes per 100 ticks
	Makespan          int            `json:"makespan"`
	Elapsed           int            `json:"elapsed"`
	TotalWaitingTime  int            `json:"total_waiting_time"`
	TotalTurnaround   int            `json:"total_turnaround_time"`
	BusyTime          int            `json:"busy_time"`
}

// Calculate computes Metrics for run. It is pure; calling it twice on the same
// run yields identical results.
func Calculate(run *engine.Run) Metrics {
	m := Metrics{
		Policy:          run.Policy,
		ContextSwitches: run.ContextSwitches,
		Elapsed:         run.Elapsed,
		Processes:       make([]ProcessStats, 0, len(run.Processes)),
	}

	index := make(map[int]int, len(run.Processes))
	for _, p := range run.Processes {
		index[p.ID] = len(m.Processes)
		m.Processes = append(m.Processes, ProcessStats{
			ProcessID:   p.ID,
			ArrivalTime: p.ArrivalTime,
			BurstTime:   p.BurstTime,
			StartTime:   -1,
		})
	}

	for _, e := range run.Ledger.Entries() {
		i, ok := index[e.ProcessID]
		if !ok {
			continue
		}
		s := &m.Processes[i]
		if s.StartTime < 0 || e.Start < s.StartTime {
			s.StartTime = e.Start
		}
		if e.End > s.CompletionTime {
			s.CompletionTime = e.End
		}
		s.TotalRunTime += e.Duration()
		if e.End > m.Makespan {
			m.Makespan = e.End
		}
	}

	responded := 0
	for i := range m.Processes {
		s := &m.Processes[i]
		s.TurnaroundTime = s.CompletionTime - s.ArrivalTime
		s.WaitingTime = s.TurnaroundTime - s.TotalRunTime
		m.TotalWaitingTime += s.WaitingTime
		m.TotalTurnaround += s.TurnaroundTime
		if s.StartTime >= 0 {
			s.ResponseTime = s.StartTime - s.ArrivalTime
			m.AvgResponseTime += float64(s.ResponseTime)
			responded++
		}
	}

	if n := len(m.Processes); n > 0 {
		m.AvgWaitingTime = float64(m.TotalWaitingTime) / float64(n)
		m.AvgTurnaroundTime = float64(m.TotalTurnaround) / float64(n)
	}
	if responded > 0 {
		m.AvgResponseTime /= float64(responded)
	}

	m.BusyTime = run.Ledger.BusyTime()
	if run.Elapsed > 0 {
		m.CPUUtilization = 100 * float64(m.BusyTime) / float64(run.Elapsed)
	}
	if m.Makespan > 0 {
		m.Throughput = 100 * float64(responded) / float64(m.Makespan)
	}
	return m
}

// Breakdown renders the step-by-step derivation of m, one line per element.
func Breakdown(m Metrics) []string {
	rule := strings.Repeat("=", 50)
	lines := []string{
		fmt.Sprintf("%s calculation:", m.Policy),
		rule,
	}
	for _, s := range m.Processes {
		start := "never"
		if s.StartTime >= 0 {
			start = fmt.Sprint(s.StartTime)
		}
		lines = append(lines,
			fmt.Sprintf("Process %d:", s.ProcessID),
			fmt.Sprintf("- Arrival Time: %d", s.ArrivalTime),
			fmt.Sprintf("- Burst Time: %d", s.BurstTime),
			fmt.Sprintf("- First Start Time: %s", start),
			fmt.Sprintf("- Completion Time: %d", s.CompletionTime),
			fmt.Sprintf("- Total Run Time: %d", s.TotalRunTime),
			fmt.Sprintf("- Turnaround Time = %d - %d = %d", s.CompletionTime, s.ArrivalTime, s.TurnaroundTime),
			fmt.Sprintf("- Waiting Time = %d - %d = %d", s.TurnaroundTime, s.TotalRunTime, s.WaitingTime),
			"",
		)
	}
	n := len(m.Processes)
	lines = append(lines,
		fmt.Sprintf("Total Waiting Time = %d", m.TotalWaitingTime),
		fmt.Sprintf("Average Waiting Time = %d / %d = %.2f", m.TotalWaitingTime, n, m.AvgWaitingTime),
		fmt.Sprintf("Total Turnaround Time = %d", m.TotalTurnaround),
		fmt.Sprintf("Average Turnaround Time = %d / %d = %.2f", m.TotalTurnaround, n, m.AvgTurnaroundTime),
		fmt.Sprintf("CPU Utilization = %d / %d = %.1f%%", m.BusyTime, m.Elapsed, m.CPUUtilization),
		fmt.Sprintf("Context Switches = %d", m.ContextSwitches),
		rule,
	)
	return lines
}
