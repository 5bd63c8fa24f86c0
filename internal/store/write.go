package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/conform/internal/suite"
)

// RecordRun appends a run and its outcomes in one transaction and returns
// the stored row. The run's seq is one past the largest seq in the store.
//
// The report column holds rep.CanonicalJSON() and report_hash its
// ReportHash, so stored runs can be compared with each other and with a
// fresh report.
func (s *Store) RecordRun(ctx context.Context, rep suite.Report, pattern string) (Run, error) {
	report, err := rep.CanonicalJSON()
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return Run{}, err
	}

	run := Run{
		ID:             s.ids.Generate(),
		Seq:            seq,
		Module:         rep.Module,
		Implementation: rep.Implementation,
		Pattern:        pattern,
		Success:        rep.Success,
		Counts:         rep.Counts,
		Report:         string(report),
		ReportHash:     ReportHash(report),
	}

	c := run.Counts
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, module, implementation, pattern, success,
		 tests_run, passed, failures, errors, skipped, expected_failures, unexpected_successes,
		 report, report_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Module,
		run.Implementation,
		run.Pattern,
		boolToInt(run.Success),
		c.Run,
		c.Passed,
		c.Failures,
		c.Errors,
		c.Skipped,
		c.ExpectedFailures,
		c.UnexpectedSuccesses,
		run.Report,
		run.ReportHash,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (run_id, idx, test_id, status, detail, excluded)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("record run: prepare outcomes: %w", err)
	}
	defer stmt.Close()

	for i, o := range rep.Outcomes {
		if _, err := stmt.ExecContext(ctx, run.ID, i, o.ID, string(o.Status), o.Detail, boolToInt(o.Excluded)); err != nil {
			return Run{}, fmt.Errorf("record run: insert outcome %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

// nextSeq returns the logical clock value for the next run.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&last); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return last.Int64 + 1, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
