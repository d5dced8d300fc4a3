package core

import "time"

// Store defines the interface for audit history persistence.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// RecordRun persists a finished run and its findings in one transaction.
	RecordRun(run *AuditRun, findings []AuditFinding) error
	ListRuns(limit int) ([]*AuditRun, error)
	GetRun(id string) (*AuditRun, error)
	GetFindings(runID string) ([]AuditFinding, error)
}

// AuditRun is one recorded execution of the audit command.
type AuditRun struct {
	ID           string
	Environment  string
	StartedAt    time.Time
	ModelCount   int
	FindingCount int
}

// AuditFinding is one diagnostic recorded for a run.
type AuditFinding struct {
	RunID    string
	RuleID   string
	Model    string
	Column   string
	Severity Severity
	Message  string
}
