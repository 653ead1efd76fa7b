// Package store keeps a SQLite history of simulation runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joshharrison/schedsim/internal/ledger"
	"github.com/joshharrison/schedsim/internal/metrics"
	"github.com/joshharrison/schedsim/internal/orchestrator"
	"github.com/joshharrison/schedsim/internal/process"
)

// RunRecord is one stored run with its headline metrics.
type RunRecord struct {
	ID                  string
	PlanID              string
	Label               string
	Kind                string
	RespectDependencies bool
	Processes           int
	AvgWaitingTime      float64
	AvgTurnaroundTime   float64
	AvgResponseTime     float64
	CPUUtilization      float64
	ContextSwitches     int
	Throughput          float64
	Makespan            int
	IdleTicks           int
	ProcessStats        []metrics.ProcessStats
	CreatedAt           time.Time
}

// SQLiteStore records run results in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    time.Now,
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// Record stores a run and its full ledger. It implements orchestrator.ResultSink.
func (s *SQLiteStore) Record(ctx context.Context, r *orchestrator.Result) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", r.Run.RunID)

	stats, err := json.Marshal(r.Metrics.Processes)
	if err != nil {
		return fmt.Errorf("marshal process stats: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m := r.Metrics
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, plan_id, label, kind, respect_deps, processes, avg_waiting, avg_turnaround,
		 avg_response, cpu_utilization, context_switches, throughput, makespan, idle_ticks, process_stats, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Run.RunID, r.PlanID, r.Run.Label, string(r.Run.Kind), r.Run.RespectDependencies, len(m.Processes),
		m.AvgWaitingTime, m.AvgTurnaroundTime, m.AvgResponseTime, m.CPUUtilization,
		m.ContextSwitches, m.Throughput, m.Makespan, r.Sim.IdleTicks, string(stats),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_entries (run_id, seq, process_id, start_time, end_time, state) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range r.Sim.Ledger.Entries() {
		if _, err := stmt.ExecContext(ctx, r.Run.RunID, i, e.ProcessID, e.Start, e.End, string(e.State)); err != nil {
			return fmt.Errorf("insert ledger entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "limit", limit)

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plan_id, label, kind, respect_deps, processes, avg_waiting, avg_turnaround, avg_response,
		 cpu_utilization, context_switches, throughput, makespan, idle_ticks, process_stats, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var stats, createdAt string
		if err := rows.Scan(&rec.ID, &rec.PlanID, &rec.Label, &rec.Kind, &rec.RespectDependencies, &rec.Processes,
			&rec.AvgWaitingTime, &rec.AvgTurnaroundTime, &rec.AvgResponseTime, &rec.CPUUtilization,
			&rec.ContextSwitches, &rec.Throughput, &rec.Makespan, &rec.IdleTicks, &stats, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stats), &rec.ProcessStats); err != nil {
			return nil, fmt.Errorf("unmarshal process stats: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Ledger returns the stored execution ledger of a run, in order.
func (s *SQLiteStore) Ledger(ctx context.Context, runID string) ([]ledger.Entry, error) {
	s.logger.Debug("sql", "op", "select", "table", "ledger_entries", "run_id", runID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT process_id, start_time, end_time, state FROM ledger_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var state string
		if err := rows.Scan(&e.ProcessID, &e.Start, &e.End, &state); err != nil {
			return nil, err
		}
		e.State = process.State(state)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeletePlan removes every run recorded for planID, ledgers included.
func (s *SQLiteStore) DeletePlan(ctx context.Context, planID string) (int64, error) {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "plan_id", planID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ledger_entries WHERE run_id IN (SELECT id FROM runs WHERE plan_id = ?)`, planID); err != nil {
		return 0, fmt.Errorf("delete ledger entries: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE plan_id = ?`, planID)
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
