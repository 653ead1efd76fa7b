// Package exporter publishes run metrics as Prometheus gauges and writes
// them in the node-exporter textfile format.
package exporter

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshharrison/schedsim/internal/orchestrator"
)

const namespace = "schedsim"

var labels = []string{"policy", "mode"}

// Exporter collects one sample per run. It implements orchestrator.ResultSink.
type Exporter struct {
	registry *prometheus.Registry

	avgWaiting      *prometheus.GaugeVec
	avgTurnaround   *prometheus.GaugeVec
	avgResponse     *prometheus.GaugeVec
	cpuUtilization  *prometheus.GaugeVec
	contextSwitches *prometheus.GaugeVec
	throughput      *prometheus.GaugeVec
	makespan        *prometheus.GaugeVec
	runDuration     *prometheus.HistogramVec
	runsTotal       prometheus.Counter
}

func gauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// New creates an Exporter backed by its own registry.
func New() *Exporter {
	e := &Exporter{
		registry:        prometheus.NewRegistry(),
		avgWaiting:      gauge("avg_waiting_ticks", "Average waiting time of the last run, in ticks"),
		avgTurnaround:   gauge("avg_turnaround_ticks", "Average turnaround time of the last run, in ticks"),
		avgResponse:     gauge("avg_response_ticks", "Average response time of the last run, in ticks"),
		cpuUtilization:  gauge("cpu_utilization_percent", "Share of simulated ticks the CPU was busy"),
		contextSwitches: gauge("context_switches", "Context switches in the last run"),
		throughput:      gauge("throughput_per_100_ticks", "Completed processes per 100 ticks"),
		makespan:        gauge("makespan_ticks", "Tick at which the last process completed"),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time spent simulating one run",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, labels),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Simulation runs recorded",
		}),
	}
	e.registry.MustRegister(
		e.avgWaiting, e.avgTurnaround, e.avgResponse, e.cpuUtilization,
		e.contextSwitches, e.throughput, e.makespan, e.runDuration, e.runsTotal,
	)
	return e
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Record sets the gauges for the run's policy and dependency mode.
func (e *Exporter) Record(_ context.Context, r *orchestrator.Result) error {
	lv := []string{r.Metrics.Policy, string(r.Run.Group)}
	m := r.Metrics

	e.avgWaiting.WithLabelValues(lv...).Set(m.AvgWaitingTime)
	e.avgTurnaround.WithLabelValues(lv...).Set(m.AvgTurnaroundTime)
	e.avgResponse.WithLabelValues(lv...).Set(m.AvgResponseTime)
	e.cpuUtilization.WithLabelValues(lv...).Set(m.CPUUtilization)
	e.contextSwitches.WithLabelValues(lv...).Set(float64(m.ContextSwitches))
	e.throughput.WithLabelValues(lv...).Set(m.Throughput)
	e.makespan.WithLabelValues(lv...).Set(float64(m.Makespan))
	e.runDuration.WithLabelValues(lv...).Observe(r.Duration.Seconds())
	e.runsTotal.Inc()
	return nil
}

// WriteTextfile writes every collected metric to path atomically.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
