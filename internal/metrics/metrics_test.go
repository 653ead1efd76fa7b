package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/schedsim/internal/engine"
	"github.com/joshharrison/schedsim/internal/ledger"
	"github.com/joshharrison/schedsim/internal/policy"
	"github.com/joshharrison/schedsim/internal/process"
)

func dependentPair() []*process.Process {
	return []*process.Process{
		process.New(1, 0, 3, 1, process.LevelA),
		process.New(2, 0, 2, 1, process.LevelA, 1),
	}
}

func run(t *testing.T, pol policy.Policy, procs []*process.Process) *engine.Run {
	t.Helper()
	r, err := engine.New(pol, nil).Schedule(procs)
	require.NoError(t, err)
	return r
}

func TestCalculate_DependentPair(t *testing.T) {
	m := Calculate(run(t, policy.NewFCFS(true), dependentPair()))

	require.Len(t, m.Processes, 2)
	assert.Equal(t, ProcessStats{
		ProcessID: 1, ArrivalTime: 0, BurstTime: 3,
		StartTime: 0, CompletionTime: 3, TotalRunTime: 3,
		TurnaroundTime: 3, WaitingTime: 0, ResponseTime: 0,
	}, m.Processes[0])
	assert.Equal(t, ProcessStats{
		ProcessID: 2, ArrivalTime: 0, BurstTime: 2,
		StartTime: 3, CompletionTime: 5, TotalRunTime: 2,
		TurnaroundTime: 5, WaitingTime: 3, ResponseTime: 3,
	}, m.Processes[1])

	assert.Equal(t, "FCFS (IPC)", m.Policy)
	assert.InDelta(t, 1.5, m.AvgWaitingTime, 1e-9)
	assert.InDelta(t, 4.0, m.AvgTurnaroundTime, 1e-9)
	assert.InDelta(t, 1.5, m.AvgResponseTime, 1e-9)
	assert.InDelta(t, 100.0, m.CPUUtilization, 1e-9)
	assert.InDelta(t, 40.0, m.Throughput, 1e-9)
	assert.Equal(t, 1, m.ContextSwitches)
	assert.Equal(t, 5, m.Makespan)
}

func TestCalculate_IdleLowersUtilization(t *testing.T) {
	procs := []*process.Process{
		process.New(1, 0, 2, 1, process.LevelA),
		process.New(2, 6, 2, 1, process.LevelA),
	}
	m := Calculate(run(t, policy.NewFCFS(false), procs))

	assert.Equal(t, 4, m.BusyTime)
	assert.Equal(t, 8, m.Elapsed)
	assert.InDelta(t, 50.0, m.CPUUtilization, 1e-9)
	assert.Equal(t, 0, m.Processes[1].WaitingTime)
}

func TestCalculate_MatchesEngineStamps(t *testing.T) {
	procs := []*process.Process{
		process.New(1, 0, 4, 2, process.LevelA),
		process.New(2, 1, 3, 1, process.LevelB),
		process.New(3, 2, 2, 3, process.LevelC, 1),
	}
	pol, err := policy.New(policy.KindRoundRobin, policy.Options{TimeQuantum: 2, RespectDependencies: true})
	require.NoError(t, err)
	m := Calculate(run(t, pol, procs))

	for i, p := range procs {
		assert.Equal(t, p.CompletionTime, m.Processes[i].CompletionTime, "pid %d", p.ID)
		assert.Equal(t, p.WaitingTime, m.Processes[i].WaitingTime, "pid %d", p.ID)
		assert.Equal(t, p.TurnaroundTime, m.Processes[i].TurnaroundTime, "pid %d", p.ID)
		assert.Equal(t, p.StartTime, m.Processes[i].StartTime, "pid %d", p.ID)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	r := run(t, policy.NewSJF(false), dependentPair())
	assert.Equal(t, Calculate(r), Calculate(r))
}

func TestCalculate_ZeroElapsed(t *testing.T) {
	m := Calculate(&engine.Run{Policy: "FCFS", Ledger: ledger.New()})

	assert.Empty(t, m.Processes)
	assert.Zero(t, m.CPUUtilization)
	assert.Zero(t, m.Throughput)
	assert.Zero(t, m.AvgWaitingTime)
}

func TestBreakdown(t *testing.T) {
	m := Calculate(run(t, policy.NewFCFS(true), dependentPair()))
	lines := Breakdown(m)

	assert.Equal(t, "FCFS (IPC) calculation:", lines[0])
	assert.Contains(t, lines, "- Turnaround Time = 5 - 0 = 5")
	assert.Contains(t, lines, "- Waiting Time = 5 - 2 = 3")
	assert.Contains(t, lines, "Average Waiting Time = 3 / 2 = 1.50")
	assert.Contains(t, lines, "CPU Utilization = 5 / 5 = 100.0%")
	assert.Contains(t, lines, "Context Switches = 1")
}
