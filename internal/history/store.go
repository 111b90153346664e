// Package history persists completed pipeline runs to a local SQLite
// database so past runs can be inspected after the terminal scrolls away.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jakesherman/prefixrun/internal/pipeline"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         int64
	Directory  string
	StartedAt  time.Time
	FinishedAt time.Time
	TotalSteps int
	Succeeded  int
	Failed     int
	Status     string // "success" or "failed"
}

// Step is one recorded file execution within a run. Files never attempted
// are stored too, with zero times and status "not_attempted".
type Step struct {
	Ord         int
	Name        string
	StartedAt   time.Time
	FinishedAt  time.Time
	ElapsedSecs float64
	ExitCode    int
	Status      string
	Error       string
}

// Store wraps the SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		directory TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		total_steps INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		ord INTEGER NOT NULL,
		name TEXT NOT NULL,
		started_at TIMESTAMP,
		finished_at TIMESTAMP,
		elapsed_secs REAL,
		exit_code INTEGER,
		status TEXT NOT NULL,
		error TEXT,
		UNIQUE(run_id, ord)
	);

	CREATE INDEX IF NOT EXISTS idx_steps_run ON steps(run_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate history db: %w", err)
	}
	return nil
}

// RecordRun stores a completed run and all of its step rows, attempted or
// not. Returns the new run's ID.
func (s *Store) RecordRun(started, finished time.Time, rep *pipeline.Report) (int64, error) {
	sum := rep.Summarize()
	status := "success"
	if sum.Failed > 0 || sum.NotAttempted > 0 {
		status = "failed"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(
		`INSERT INTO runs (directory, started_at, finished_at, total_steps, succeeded, failed, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.Directory, started, finished, sum.Total, sum.Succeeded, sum.Failed, status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, f := range rep.Files {
		rec := rep.Record(f.Name)
		if rec == nil {
			_, err = tx.Exec(
				`INSERT INTO steps (run_id, ord, name, status) VALUES (?, ?, ?, ?)`,
				runID, f.Order, f.Name, "not_attempted",
			)
		} else {
			stepStatus := "failure"
			if rec.Success {
				stepStatus = "success"
			}
			_, err = tx.Exec(
				`INSERT INTO steps (run_id, ord, name, started_at, finished_at, elapsed_secs, exit_code, status, error)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, f.Order, f.Name, rec.StartedAt, rec.EndedAt, rec.Elapsed.Seconds(), rec.ExitCode, stepStatus, rec.Error,
			)
		}
		if err != nil {
			return 0, fmt.Errorf("insert step %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, directory, started_at, finished_at, total_steps, succeeded, failed, status
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Directory, &r.StartedAt, &r.FinishedAt,
			&r.TotalSteps, &r.Succeeded, &r.Failed, &r.Status); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunSteps returns the step rows of one run in prefix order.
func (s *Store) RunSteps(runID int64) ([]Step, error) {
	rows, err := s.db.Query(
		`SELECT ord, name, started_at, finished_at, elapsed_secs, exit_code, status, error
		 FROM steps WHERE run_id = ? ORDER BY ord ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		var started, finished sql.NullTime
		var elapsed sql.NullFloat64
		var exitCode sql.NullInt64
		var errMsg sql.NullString
		if err := rows.Scan(&st.Ord, &st.Name, &started, &finished, &elapsed, &exitCode, &st.Status, &errMsg); err != nil {
			return nil, err
		}
		if started.Valid {
			st.StartedAt = started.Time
		}
		if finished.Valid {
			st.FinishedAt = finished.Time
		}
		if elapsed.Valid {
			st.ElapsedSecs = elapsed.Float64
		}
		if exitCode.Valid {
			st.ExitCode = int(exitCode.Int64)
		}
		if errMsg.Valid {
			st.Error = errMsg.String
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
