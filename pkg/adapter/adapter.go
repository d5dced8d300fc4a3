// Package adapter provides the database adapter contract used to introspect
// live table schemas for modeldoctor audits.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// Type aliases so adapter implementations only need this package.
type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column

	// Metadata is an alias for core.TableMetadata.
	Metadata = core.TableMetadata
)

// Adapter defines the interface that all database adapters must implement.
// Adapters are read-only.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// TableExists reports whether the table exists. The table may be
	// qualified as schema.table.
	TableExists(ctx context.Context, table string) (bool, error)

	// GetTableMetadata retrieves the columns of a table in table order.
	// Each column carries its normalized type and character limit.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)
}
