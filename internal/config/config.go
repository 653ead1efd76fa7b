package config

import (
	"fmt"
	"maps"

	"github.com/go-playground/validator/v10"

	"github.com/joshharrison/schedsim/internal/logging"
	"github.com/joshharrison/schedsim/internal/policy"
	"github.com/joshharrison/schedsim/internal/process"
	"github.com/joshharrison/schedsim/internal/workload"
)

// Config holds every tunable of a simulation session.
type Config struct {
	TimeQuantum     int                                      `validate:"gt=0"`
	QueueAlgorithms map[process.QueueLevel]process.Algorithm `validate:"required,dive,keys,oneof=A B C,endkeys,oneof=FCFS SJF RR"`
	MaxParallel     int                                      `validate:"gte=1"`
	LogLevel        string                                   `validate:"oneof=debug info warn warning error"`
	LogFormat       string                                   `validate:"oneof=text json"`
	WorkloadPath    string                                   `validate:"required"`
	DBPath          string // SQLite run history; empty disables it
	MetricsFile     string // Prometheus textfile; empty disables it
}

var validate = validator.New()

// Default returns the settings the original workload files ship with.
func Default() Config {
	return Config{
		TimeQuantum:     4,
		QueueAlgorithms: policy.DefaultQueueAlgorithms(),
		MaxParallel:     4,
		LogLevel:        "info",
		LogFormat:       logging.FormatText,
		WorkloadPath:    "process_config.json",
	}
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplySettings overlays the scheduler settings stored with a workload.
// Zero or missing values leave the current configuration in place.
func (c *Config) ApplySettings(s workload.Settings) {
	if s.TimeQuantum > 0 {
		c.TimeQuantum = s.TimeQuantum
	}
	if len(s.QueueAlgorithms) == 0 {
		return
	}
	algs := make(map[process.QueueLevel]process.Algorithm, len(process.Levels))
	maps.Copy(algs, c.QueueAlgorithms)
	maps.Copy(algs, s.QueueAlgorithms)
	c.QueueAlgorithms = algs
}

// PolicyOptions returns the options for one planned run.
func (c Config) PolicyOptions(respectDeps bool) policy.Options {
	return policy.Options{
		RespectDependencies: respectDeps,
		TimeQuantum:         c.TimeQuantum,
		QueueAlgorithms:     maps.Clone(c.QueueAlgorithms),
	}
}

// Settings returns the scheduler settings to persist alongside a workload.
func (c Config) Settings() workload.Settings {
	return workload.Settings{
		TimeQuantum:     c.TimeQuantum,
		QueueAlgorithms: maps.Clone(c.QueueAlgorithms),
	}
}
