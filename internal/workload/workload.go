// Package workload loads, saves and generates process templates.
package workload

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/policy"
	"github.com/joshharrison/schedsim/internal/process"
)

var validate = validator.New()

// DefaultSettings are written into freshly generated workloads.
func DefaultSettings() Settings {
	return Settings{TimeQuantum: 4, QueueAlgorithms: policy.DefaultQueueAlgorithms()}
}

// Load reads a workload from a JSON or YAML file, chosen by extension.
func Load(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	if isYAML(path) {
		return decodeYAML(data)
	}
	return decodeJSON(data)
}

// Exists checks if a workload file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save writes w to path as JSON, or YAML for .yaml/.yml paths.
func Save(path string, w *Workload) error {
	f := file{
		Processes: Descriptors(w.Processes),
		Metadata:  metadata{SchedulerSettings: w.Settings},
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(f)
	} else {
		data, err = json.MarshalIndent(f, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("marshal workload: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create workload dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// LoadOrGenerate loads path if it exists, otherwise generates a workload
// with opts and saves it there. The bool reports whether it was generated.
func LoadOrGenerate(path string, opts GenerateOptions, logger *slog.Logger) (*Workload, bool, error) {
	if Exists(path) {
		w, err := Load(path)
		if err != nil {
			return nil, false, err
		}
		logger.Info("workload loaded", "path", path, "processes", len(w.Processes))
		return w, false, nil
	}

	w, err := Generate(opts)
	if err != nil {
		return nil, false, err
	}
	if err := Save(path, w); err != nil {
		return nil, false, fmt.Errorf("save generated workload: %w", err)
	}
	logger.Info("workload generated", "path", path, "processes", len(w.Processes))
	return w, true, nil
}

// Generate builds a random workload: unique shuffled priorities 1..Count,
// uniform arrivals and bursts, random queue levels, and a single dependency
// chain threaded through MaxDependencies+1 randomly chosen processes.
func Generate(opts GenerateOptions) (*Workload, error) {
	switch {
	case opts.Count < 1:
		return nil, fmt.Errorf("generate: count must be positive, got %d", opts.Count)
	case opts.MaxArrival < 0:
		return nil, fmt.Errorf("generate: max arrival must be non-negative, got %d", opts.MaxArrival)
	case opts.MinBurst < 1 || opts.MaxBurst < opts.MinBurst:
		return nil, fmt.Errorf("generate: burst range [%d, %d] is invalid", opts.MinBurst, opts.MaxBurst)
	case opts.MaxDependencies < 0:
		return nil, fmt.Errorf("generate: max dependencies must be non-negative, got %d", opts.MaxDependencies)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	r := rand.New(rand.NewPCG(seed, seed>>1|1))

	priorities := r.Perm(opts.Count)
	procs := make([]*process.Process, opts.Count)
	for i := range procs {
		procs[i] = process.New(
			i+1,
			r.IntN(opts.MaxArrival+1),
			opts.MinBurst+r.IntN(opts.MaxBurst-opts.MinBurst+1),
			priorities[i]+1,
			process.Levels[r.IntN(len(process.Levels))],
		)
	}

	if opts.MaxDependencies > 0 {
		chain := r.Perm(opts.Count)[:min(opts.MaxDependencies+1, opts.Count)]
		for i := 1; i < len(chain); i++ {
			p := procs[chain[i]]
			p.Dependencies = append(p.Dependencies, procs[chain[i-1]].ID)
		}
	}

	return &Workload{Processes: procs, Settings: DefaultSettings()}, nil
}

// Descriptors converts processes to their on-disk form.
func Descriptors(procs []*process.Process) []Descriptor {
	out := make([]Descriptor, len(procs))
	for i, p := range procs {
		out[i] = Descriptor{
			ProcessID:    p.ID,
			ArrivalTime:  p.ArrivalTime,
			BurstTime:    p.BurstTime,
			Priority:     p.Priority,
			QueueLevel:   string(p.QueueLevel),
			Dependencies: append([]int{}, p.Dependencies...),
		}
	}
	return out
}

func decodeJSON(data []byte) (*Workload, error) {
	var f struct {
		Processes []Descriptor `json:"processes"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	// Settings are optional and loosely typed in hand-written files, so they
	// are read by path instead of through the struct decoder.
	var s Settings
	root := gjson.GetBytes(data, "metadata.scheduler_settings")
	if q := root.Get("time_quantum"); q.Exists() {
		s.TimeQuantum = int(q.Int())
	}
	if algs := root.Get("mlq_algorithms"); algs.IsObject() {
		s.QueueAlgorithms = make(map[process.QueueLevel]process.Algorithm)
		algs.ForEach(func(k, v gjson.Result) bool {
			s.QueueAlgorithms[process.QueueLevel(k.String())] = process.Algorithm(v.String())
			return true
		})
	}
	return build(f.Processes, s)
}

func decodeYAML(data []byte) (*Workload, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return build(f.Processes, f.Metadata.SchedulerSettings)
}

func build(descs []Descriptor, s Settings) (*Workload, error) {
	if err := validate.Struct(file{Processes: descs}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	procs := make([]*process.Process, len(descs))
	for i, d := range descs {
		level, err := process.ParseQueueLevel(d.QueueLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: process %d: %w", ErrInvalid, d.ProcessID, err)
		}
		procs[i] = process.New(d.ProcessID, d.ArrivalTime, d.BurstTime, d.Priority, level, d.Dependencies...)
	}
	if _, err := graph.Build(procs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	settings, err := normalize(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &Workload{Processes: procs, Settings: settings}, nil
}

func normalize(s Settings) (Settings, error) {
	if s.TimeQuantum < 0 {
		return s, fmt.Errorf("time quantum must be positive, got %d", s.TimeQuantum)
	}
	if len(s.QueueAlgorithms) == 0 {
		s.QueueAlgorithms = nil
		return s, nil
	}
	algs := make(map[process.QueueLevel]process.Algorithm, len(s.QueueAlgorithms))
	for k, v := range s.QueueAlgorithms {
		level, err := process.ParseQueueLevel(string(k))
		if err != nil {
			return s, err
		}
		alg, err := process.ParseAlgorithm(string(v))
		if err != nil {
			return s, fmt.Errorf("level %s: %w", level, err)
		}
		algs[level] = alg
	}
	s.QueueAlgorithms = algs
	return s, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
