// Package state records audit history in SQLite.
// Each audit run is stored with its findings so results can be compared
// across runs and environments.
package state

import (
	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// Type aliases so callers only need this package.
type (
	// Store is an alias for core.Store.
	Store = core.Store

	// Run is an alias for core.AuditRun.
	Run = core.AuditRun

	// Finding is an alias for core.AuditFinding.
	Finding = core.AuditFinding
)

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
