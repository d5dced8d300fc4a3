package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordRun persists a finished run and its findings in one transaction.
// An empty run ID is replaced by a fresh UUID; a zero StartedAt by now.
func (s *SQLiteStore) RecordRun(run *core.AuditRun, findings []core.AuditFinding) error {
	if s.db == nil {
		return ErrNotOpened
	}

	if run.ID == "" {
		run.ID = generateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.FindingCount = len(findings)

	s.logger.Debug("recording run",
		slog.String("id", run.ID),
		slog.String("environment", run.Environment),
		slog.Int("findings", len(findings)))

	tx, err := s.db.BeginTx(ctx(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx(),
		`INSERT INTO audit_runs (id, environment, started_at, model_count, finding_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Environment, run.StartedAt.UTC().Format(timeLayout), run.ModelCount, run.FindingCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx(),
		`INSERT INTO audit_findings (run_id, position, rule_id, model, column_name, severity, message) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range findings {
		f := &findings[i]
		f.RunID = run.ID
		if _, err := stmt.ExecContext(ctx(), run.ID, i, f.RuleID, f.Model, f.Column, f.Severity.String(), f.Message); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns all runs.
func (s *SQLiteStore) ListRuns(limit int) ([]*core.AuditRun, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT id, environment, started_at, model_count, finding_count
		 FROM audit_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*core.AuditRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*core.AuditRun, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	row := s.db.QueryRowContext(ctx(),
		`SELECT id, environment, started_at, model_count, finding_count FROM audit_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetFindings returns the findings of a run in recorded order.
func (s *SQLiteStore) GetFindings(runID string) ([]core.AuditFinding, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx(),
		`SELECT run_id, rule_id, model, column_name, severity, message
		 FROM audit_findings WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []core.AuditFinding
	for rows.Next() {
		var (
			f        core.AuditFinding
			severity string
		)
		if err := rows.Scan(&f.RunID, &f.RuleID, &f.Model, &f.Column, &severity, &f.Message); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Severity, _ = core.ParseSeverity(severity)
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}
	return findings, nil
}

// DeleteOldRuns keeps the newest keep runs and deletes the rest along with
// their findings. Returns the number of runs deleted.
func (s *SQLiteStore) DeleteOldRuns(keep int) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}

	res, err := s.db.ExecContext(ctx(), `
		DELETE FROM audit_runs WHERE id NOT IN (
			SELECT id FROM audit_runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*core.AuditRun, error) {
	var (
		run       core.AuditRun
		startedAt string
	)
	if err := row.Scan(&run.ID, &run.Environment, &startedAt, &run.ModelCount, &run.FindingCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at for run %s: %w", run.ID, err)
	}
	run.StartedAt = t
	return &run, nil
}
