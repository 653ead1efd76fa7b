package workload

import (
	"errors"

	"github.com/joshharrison/schedsim/internal/process"
)

// ErrInvalid is returned when a workload file cannot be turned into a process set.
var ErrInvalid = errors.New("invalid workload file")

// Workload is a process template plus the scheduler settings stored with it.
type Workload struct {
	Processes []*process.Process
	Settings  Settings
}

// Settings are the scheduler parameters a workload file may carry.
// Zero values mean "not specified".
type Settings struct {
	TimeQuantum     int                                      `json:"time_quantum" yaml:"time_quantum"`
	QueueAlgorithms map[process.QueueLevel]process.Algorithm `json:"mlq_algorithms" yaml:"mlq_algorithms"`
}

// Descriptor is the on-disk form of one process.
type Descriptor struct {
	ProcessID    int    `json:"process_id" yaml:"process_id" validate:"gt=0"`
	ArrivalTime  int    `json:"arrival_time" yaml:"arrival_time" validate:"gte=0"`
	BurstTime    int    `json:"burst_time" yaml:"burst_time" validate:"gte=1"`
	Priority     int    `json:"priority" yaml:"priority"`
	QueueLevel   string `json:"queue_level" yaml:"queue_level" validate:"oneof=A B C a b c"`
	Dependencies []int  `json:"dependencies" yaml:"dependencies" validate:"dive,gt=0"`
}

type file struct {
	Processes []Descriptor `json:"processes" yaml:"processes" validate:"required,min=1,dive"`
	Metadata  metadata     `json:"metadata" yaml:"metadata"`
}

type metadata struct {
	SchedulerSettings Settings `json:"scheduler_settings" yaml:"scheduler_settings"`
}

// GenerateOptions controls random workload generation.
type GenerateOptions struct {
	Count           int
	MaxDependencies int // length of the generated dependency chain minus one; 0 disables it
	MaxArrival      int
	MinBurst        int
	MaxBurst        int
	Seed            uint64 // 0 picks a random seed
}

// DefaultGenerateOptions mirrors the classic ten-process classroom workload.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Count:           10,
		MaxDependencies: 3,
		MaxArrival:      20,
		MinBurst:        10,
		MaxBurst:        20,
	}
}
