package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joshharrison/schedsim/internal/config"
	"github.com/joshharrison/schedsim/internal/cpm"
	"github.com/joshharrison/schedsim/internal/exporter"
	"github.com/joshharrison/schedsim/internal/graph"
	"github.com/joshharrison/schedsim/internal/logging"
	"github.com/joshharrison/schedsim/internal/orchestrator"
	"github.com/joshharrison/schedsim/internal/planner"
	"github.com/joshharrison/schedsim/internal/policy"
	"github.com/joshharrison/schedsim/internal/reporter"
	"github.com/joshharrison/schedsim/internal/store"
	"github.com/joshharrison/schedsim/internal/ui"
	"github.com/joshharrison/schedsim/internal/workload"
	"github.com/spf13/cobra"
)

var (
	flagWorkload    string
	flagLogLevel    string
	flagLogFormat   string
	flagQuantum     int
	flagMaxParallel int
	flagJSON        bool
	flagDB          string
	flagMetricsFile string
	flagPolicies    string
	flagSeed        uint64
	flagDryRun      bool
	flagForce       bool
)

func main() {
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:   "schedsim",
		Short: "Compare CPU scheduling policies on a dependent workload",
		Long: `Schedsim runs a process workload through FCFS, SJF, Round Robin, Priority,
multi-level queue and dependency-aware schedulers, with and without
inter-process dependencies, and compares waiting time, turnaround time,
CPU utilization and context switches across every run.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagWorkload, "workload", defaults.WorkloadPath, "Workload file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	rootCmd.PersistentFlags().IntVar(&flagQuantum, "quantum", defaults.TimeQuantum, "Round Robin time quantum, overrides the workload file")
	rootCmd.PersistentFlags().IntVar(&flagMaxParallel, "max-parallel", defaults.MaxParallel, "Max concurrent simulation runs")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
}

// buildConfig layers defaults, the workload's own settings and any flags the
// user set explicitly, in that order.
func buildConfig(cmd *cobra.Command, settings workload.Settings) (config.Config, error) {
	cfg := config.Default()
	cfg.WorkloadPath = flagWorkload
	cfg.LogLevel = flagLogLevel
	cfg.LogFormat = flagLogFormat
	cfg.MaxParallel = flagMaxParallel
	cfg.DBPath = flagDB
	cfg.MetricsFile = flagMetricsFile

	cfg.ApplySettings(settings)
	if f := cmd.Flag("quantum"); f != nil && f.Changed {
		cfg.TimeQuantum = flagQuantum
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildPlan is shared logic for the run and show commands.
func buildPlan(cfg config.Config, w *workload.Workload) (*planner.Plan, *cpm.Result, error) {
	g, err := graph.Build(w.Processes)
	if err != nil {
		return nil, nil, fmt.Errorf("build dependency graph: %w", err)
	}

	analysis, err := cpm.Analyze(g, w.Processes)
	if err != nil {
		return nil, nil, fmt.Errorf("critical path analysis: %w", err)
	}

	kinds, err := parseKinds(flagPolicies)
	if err != nil {
		return nil, nil, err
	}

	plan, err := planner.Generate(g, analysis, planner.PlanConfig{
		TimeQuantum:     cfg.TimeQuantum,
		QueueAlgorithms: cfg.QueueAlgorithms,
		MaxParallel:     cfg.MaxParallel,
		Kinds:           kinds,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("generate plan: %w", err)
	}

	return plan, analysis, nil
}

// parseKinds turns a comma separated policy list into kinds. Empty means all.
func parseKinds(s string) ([]policy.Kind, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var kinds []policy.Kind
	for _, name := range strings.Split(s, ",") {
		k, err := policy.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func runCmd() *cobra.Command {
	var (
		flagDetails bool
		flagGantt   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate every policy on the workload and compare the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			opts := workload.DefaultGenerateOptions()
			opts.Seed = flagSeed
			w, generated, err := workload.LoadOrGenerate(flagWorkload, opts, logger)
			if err != nil {
				return err
			}

			cfg, err := buildConfig(cmd, w.Settings)
			if err != nil {
				return err
			}

			plan, _, err := buildPlan(cfg, w)
			if err != nil {
				return err
			}

			if flagDryRun {
				if flagJSON {
					return outputJSON(plan)
				}
				fmt.Printf("🎯 %s\n", ui.Yellow("Dry run: plan generated but not executed."))
				fmt.Printf("Would simulate %s runs over %s processes (max %d parallel)\n",
					ui.Bold(plan.TotalRuns), ui.Bold(plan.Processes), plan.Config.MaxParallel)
				for _, run := range plan.Runs {
					fmt.Printf("  %s  %-28s %s\n", ui.Dim(run.RunID[:8]), run.Label, ui.Dim(string(run.Group)))
				}
				return nil
			}

			rpt := reporter.New(plan, w.Processes)
			sinks := []orchestrator.ResultSink{rpt}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.DBPath != "" {
				st, err := store.NewSQLiteStore(cfg.DBPath, logger)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
				}
				sinks = append(sinks, st)
			}

			var exp *exporter.Exporter
			if cfg.MetricsFile != "" {
				exp = exporter.New()
				sinks = append(sinks, exp)
			}

			orch := orchestrator.New(plan, orchestrator.Config{MaxParallel: cfg.MaxParallel}, logger, sinks...)
			if _, err := orch.Run(ctx, w.Processes); err != nil {
				return fmt.Errorf("run plan %s: %w", plan.ID, err)
			}

			if exp != nil {
				if err := exp.WriteTextfile(cfg.MetricsFile); err != nil {
					return err
				}
				logger.Info("metrics written", "path", cfg.MetricsFile)
			}

			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			ui.PrintLogo(os.Stdout)
			if generated {
				fmt.Printf("🎲 %s %s\n\n", ui.Yellow("Generated a new workload at"), ui.Bold(flagWorkload))
			}
			rpt.PrintWorkload(os.Stdout)
			rpt.PrintComparison(os.Stdout)
			if flagGantt {
				fmt.Println()
				rpt.PrintGantt(os.Stdout)
			}
			if flagDetails {
				fmt.Println()
				rpt.PrintDetails(os.Stdout)
			}
			fmt.Println(rpt.Summary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagDetails, "details", false, "Print the step-by-step metric calculation for every run")
	cmd.Flags().BoolVar(&flagGantt, "gantt", false, "Print a Gantt chart for every run")
	cmd.Flags().StringVar(&flagDB, "db", "", "Record runs in this SQLite database")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&flagPolicies, "policies", "", "Comma separated policies to run (fcfs,sjf,rr,priority,mlq,dependency)")
	cmd.Flags().Uint64Var(&flagSeed, "seed", 0, "Seed used if a workload has to be generated")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show plan without executing")

	return cmd
}

func generateCmd() *cobra.Command {
	opts := workload.DefaultGenerateOptions()
	var flagOutput string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a fresh random workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagWorkload
			if flagOutput != "" {
				path = flagOutput
			}
			if workload.Exists(path) && !flagForce {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg, err := buildConfig(cmd, workload.Settings{})
			if err != nil {
				return err
			}

			opts.Seed = flagSeed
			w, err := workload.Generate(opts)
			if err != nil {
				return err
			}
			w.Settings = cfg.Settings()

			if err := workload.Save(path, w); err != nil {
				return err
			}
			newLogger().Info("workload generated", "path", path, "processes", len(w.Processes))

			if flagJSON {
				return outputJSON(workload.Descriptors(w.Processes))
			}
			fmt.Printf("🎲 %s %s processes to %s\n", ui.BoldCyan("Generated"), ui.Bold(len(w.Processes)), path)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", opts.Count, "Number of processes")
	cmd.Flags().IntVar(&opts.MaxDependencies, "max-deps", opts.MaxDependencies, "Length of the generated dependency chain minus one")
	cmd.Flags().IntVar(&opts.MaxArrival, "max-arrival", opts.MaxArrival, "Latest arrival time")
	cmd.Flags().IntVar(&opts.MinBurst, "min-burst", opts.MinBurst, "Shortest burst time")
	cmd.Flags().IntVar(&opts.MaxBurst, "max-burst", opts.MaxBurst, "Longest burst time")
	cmd.Flags().Uint64Var(&flagSeed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing workload file")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Write to this path instead of --workload")

	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the workload and its dependency analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := workload.Load(flagWorkload)
			if err != nil {
				return err
			}

			cfg, err := buildConfig(cmd, w.Settings)
			if err != nil {
				return err
			}

			plan, analysis, err := buildPlan(cfg, w)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(struct {
					Processes []workload.Descriptor `json:"processes"`
					Settings  workload.Settings     `json:"settings"`
					Analysis  *cpm.Result           `json:"analysis"`
				}{workload.Descriptors(w.Processes), cfg.Settings(), analysis})
			}

			rpt := reporter.New(plan, w.Processes)
			rpt.PrintWorkload(os.Stdout)
			rpt.PrintAnalysis(os.Stdout, analysis)
			return nil
		},
	}

	return cmd
}

func historyCmd() *cobra.Command {
	var (
		flagHistoryDB string
		flagLimit     int
		flagRun       string
		flagPurge     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded in the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flagHistoryDB); err != nil {
				return fmt.Errorf("no run history at %s (record some with run --db): %w", flagHistoryDB, err)
			}

			ctx := cmd.Context()
			st, err := store.NewSQLiteStore(flagHistoryDB, newLogger())
			if err != nil {
				return err
			}
			defer st.Close()

			switch {
			case flagPurge != "":
				n, err := st.DeletePlan(ctx, flagPurge)
				if err != nil {
					return err
				}
				fmt.Printf("🗑  Deleted %s runs of %s\n", ui.Bold(n), flagPurge)
				return nil

			case flagRun != "":
				entries, err := st.Ledger(ctx, flagRun)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(entries)
				}
				reporter.PrintLedger(os.Stdout, flagRun, entries)
				return nil
			}

			runs, err := st.ListRuns(ctx, flagLimit)
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(runs)
			}
			reporter.PrintHistory(os.Stdout, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagHistoryDB, "db", "schedsim.db", "SQLite database path")
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Max runs to list (-1 for all)")
	cmd.Flags().StringVar(&flagRun, "run", "", "Show the Gantt chart of one stored run")
	cmd.Flags().StringVar(&flagPurge, "purge", "", "Delete every run of a plan ID")

	return cmd
}

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
