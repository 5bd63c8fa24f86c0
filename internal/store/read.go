package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/conform/internal/suite"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded conformance run.
type Run struct {
	ID             string       `json:"id"`
	Seq            int64        `json:"seq"`
	Module         string       `json:"module"`
	Implementation string       `json:"implementation"`
	Pattern        string       `json:"pattern,omitempty"`
	Success        bool         `json:"success"`
	Counts         suite.Counts `json:"counts"`

	// Report is the run's canonical JSON report.
	Report     string `json:"-"`
	ReportHash string `json:"report_hash"`
}

// TestRecord is one test's outcome within a run.
type TestRecord struct {
	RunID          string        `json:"run_id"`
	Seq            int64         `json:"seq"`
	Implementation string        `json:"implementation"`
	Outcome        suite.Outcome `json:"outcome"`
}

const runColumns = `
	id, seq, module, implementation, pattern, success,
	tests_run, passed, failures, errors, skipped, expected_failures, unexpected_successes,
	report, report_hash`

// Runs returns every run of module, oldest first. An empty module returns
// runs of all modules. Returns an empty slice (not nil) when nothing is
// recorded.
func (s *Store) Runs(ctx context.Context, module string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if module != "" {
		query += ` WHERE module = ?`
		args = append(args, module)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with the given ID, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// LatestRun returns the most recent run of module, or ErrRunNotFound.
func (s *Store) LatestRun(ctx context.Context, module string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE module = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, module)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run of %s: %w", module, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Outcomes returns the outcomes of a run in the order they were reported.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]suite.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT test_id, status, detail, excluded
		FROM outcomes
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []suite.Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

// TestHistory returns every recorded outcome of one test of module across
// runs, oldest first.
func (s *Store) TestHistory(ctx context.Context, module, testID string) ([]TestRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.implementation, o.test_id, o.status, o.detail, o.excluded
		FROM outcomes o
		JOIN runs r ON r.id = o.run_id
		WHERE r.module = ? AND o.test_id = ?
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC, o.idx ASC
	`, module, testID)
	if err != nil {
		return nil, fmt.Errorf("query test history: %w", err)
	}
	defer rows.Close()

	records := []TestRecord{}
	for rows.Next() {
		var rec TestRecord
		var status string
		var excluded int
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.Implementation,
			&rec.Outcome.ID, &status, &rec.Outcome.Detail, &excluded); err != nil {
			return nil, fmt.Errorf("scan test history: %w", err)
		}
		rec.Outcome.Status = suite.Status(status)
		rec.Outcome.Excluded = excluded != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test history: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var success int
	c := &run.Counts
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Module,
		&run.Implementation,
		&run.Pattern,
		&success,
		&c.Run,
		&c.Passed,
		&c.Failures,
		&c.Errors,
		&c.Skipped,
		&c.ExpectedFailures,
		&c.UnexpectedSuccesses,
		&run.Report,
		&run.ReportHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Success = success != 0
	return run, nil
}

func scanOutcome(row scanner) (suite.Outcome, error) {
	var o suite.Outcome
	var status string
	var excluded int
	if err := row.Scan(&o.ID, &status, &o.Detail, &excluded); err != nil {
		return suite.Outcome{}, fmt.Errorf("scan outcome: %w", err)
	}
	o.Status = suite.Status(status)
	o.Excluded = excluded != 0
	return o, nil
}
