package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema contains the DDL for the run history tables.
// Each statement uses IF NOT EXISTS so Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id               TEXT PRIMARY KEY,
		plan_id          TEXT NOT NULL,
		label            TEXT NOT NULL,
		kind             TEXT NOT NULL,
		respect_deps     INTEGER NOT NULL DEFAULT 0,
		processes        INTEGER NOT NULL,
		avg_waiting      REAL NOT NULL,
		avg_turnaround   REAL NOT NULL,
		avg_response     REAL NOT NULL,
		cpu_utilization  REAL NOT NULL,
		context_switches INTEGER NOT NULL,
		throughput       REAL NOT NULL,
		makespan         INTEGER NOT NULL,
		idle_ticks       INTEGER NOT NULL DEFAULT 0,
		process_stats    TEXT NOT NULL DEFAULT '[]',
		created_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ledger_entries (
		run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		process_id INTEGER NOT NULL,
		start_time INTEGER NOT NULL,
		end_time   INTEGER NOT NULL,
		state      TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_plan_id ON runs(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
