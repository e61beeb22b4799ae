// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of batch import runs and the
// outcome of every step, so past runs can be listed and their gaps and
// failures reviewed after the terminal output is gone.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/codedocx/pkg/types"
)

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Run is one recorded batch import.
type Run struct {
	ID         string              `json:"id" yaml:"id"`
	Directory  string              `json:"directory" yaml:"directory"`
	Output     string              `json:"output" yaml:"output"`
	Policy     types.FailurePolicy `json:"policy" yaml:"policy"`
	StartedAt  time.Time           `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time           `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Summary    types.RunSummary    `json:"summary" yaml:"summary"`
}

// Step is one recorded step outcome.
type Step struct {
	Sequence      int            `json:"sequence" yaml:"sequence"`
	Kind          types.StepKind `json:"kind" yaml:"kind"`
	File          string         `json:"file,omitempty" yaml:"file,omitempty"`
	QuestionIndex int            `json:"question_index,omitempty" yaml:"question_index,omitempty"`
	Percent       float64        `json:"percent" yaml:"percent"`
	Status        string         `json:"status" yaml:"status"`
	Error         string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			directory TEXT NOT NULL,
			output TEXT,
			policy TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			state TEXT NOT NULL,
			appended INTEGER NOT NULL DEFAULT 0,
			gaps INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			warnings TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS steps (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			sequence INTEGER NOT NULL,
			kind TEXT NOT NULL,
			file TEXT,
			question_index INTEGER,
			percent REAL,
			status TEXT,
			error TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, dir, output string, policy types.FailurePolicy) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, directory, output, policy, started_at, state) VALUES (?, ?, ?, ?, ?, ?)`,
		id, dir, output, string(policy), formatTime(time.Now()), string(types.JobRunning),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// RecordStep appends a step outcome to a run.
func (s *Store) RecordStep(ctx context.Context, runID string, out types.StepOutcome) error {
	var errText string
	if out.Err != nil {
		errText = out.Err.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO steps (run_id, position, sequence, kind, file, question_index, percent, status, error)
		 VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM steps WHERE run_id = ?), ?, ?, ?, ?, ?, ?, ?)`,
		runID, runID, out.Sequence, string(out.Kind), out.File, out.QuestionIndex, out.Percent, out.Status, errText,
	)
	if err != nil {
		return fmt.Errorf("inserting step %d: %w", out.Sequence, err)
	}
	return nil
}

// FinishRun stores the final summary of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, summary types.RunSummary) error {
	warnings, err := json.Marshal(summary.Warnings)
	if err != nil {
		return fmt.Errorf("encoding warnings: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, state = ?, appended = ?, gaps = ?, failed = ?, warnings = ? WHERE id = ?`,
		formatTime(time.Now()), string(summary.State), summary.Appended, summary.Gaps, summary.Failed,
		string(warnings), runID,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return nil
}

const runColumns = `id, directory, output, policy, started_at, finished_at, state, appended, gaps, failed, warnings`

// Runs returns the most recent runs, newest first. limit <= 0 means 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns a single run by ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// Steps returns the recorded steps of a run in the order they happened.
func (s *Store) Steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sequence, kind, file, question_index, percent, status, error
		 FROM steps WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			st                  Step
			kind                string
			file, status, errTx sql.NullString
			qi                  sql.NullInt64
			pct                 sql.NullFloat64
		)
		if err := rows.Scan(&st.Sequence, &kind, &file, &qi, &pct, &status, &errTx); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		st.Kind = types.StepKind(kind)
		st.File = file.String
		st.QuestionIndex = int(qi.Int64)
		st.Percent = pct.Float64
		st.Status = status.String
		st.Error = errTx.String
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                          Run
		output, finished, warnings sql.NullString
		policy, started, state     string
	)
	err := sc.Scan(&r.ID, &r.Directory, &output, &policy, &started, &finished, &state,
		&r.Summary.Appended, &r.Summary.Gaps, &r.Summary.Failed, &warnings)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}

	r.Output = output.String
	r.Policy = types.FailurePolicy(policy)
	r.Summary.State = types.JobState(state)
	r.StartedAt = parseTime(started)
	if finished.Valid {
		r.FinishedAt = parseTime(finished.String)
	}
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &r.Summary.Warnings); err != nil {
			return Run{}, fmt.Errorf("decoding warnings for run %s: %w", r.ID, err)
		}
	}
	return r, nil
}

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
