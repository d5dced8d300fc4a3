// Package sqlite provides a SQLite schema introspection adapter built on the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/modeldoctor/pkg/adapter"
	"github.com/leapstack-labs/modeldoctor/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// DefaultSchema is the name SQLite gives the primary database.
const DefaultSchema = "main"

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// Connect opens the database file. An empty path opens an in-memory
// database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	a.Logger.Debug("connected to sqlite", slog.String("path", path))
	return nil
}

func (a *Adapter) schema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return DefaultSchema
}

// TableExists reports whether the table exists.
func (a *Adapter) TableExists(ctx context.Context, table string) (bool, error) {
	if a.DB == nil {
		return false, adapter.ErrNotConnected
	}

	schema, name := adapter.ParseQualifiedName(table, a.schema())

	var count int
	err := a.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_list WHERE schema = ? AND name = ? AND type IN ('table', 'view')`,
		schema, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return count > 0, nil
}

// GetTableMetadata reads the table's columns with PRAGMA table_info. The
// declared type is kept verbatim, so VARCHAR(255) yields a limit of 255.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	if a.DB == nil {
		return nil, adapter.ErrNotConnected
	}

	schema, name := adapter.ParseQualifiedName(table, a.schema())

	rows, err := a.DB.QueryContext(ctx,
		`SELECT cid, name, type, "notnull" FROM pragma_table_info(?, ?) ORDER BY cid`,
		name, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var (
			col     core.Column
			cid     int
			notNull int
		)
		if err := rows.Scan(&cid, &col.Name, &col.SQLType, &notNull); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Position = cid + 1
		col.Nullable = notNull == 0
		col.Type, col.Limit = adapter.NormalizeType(col.SQLType)
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	a.Logger.Debug("introspected table",
		slog.String("schema", schema),
		slog.String("table", name),
		slog.Int("columns", len(columns)))

	return &adapter.Metadata{
		Schema:  schema,
		Name:    name,
		Columns: columns,
	}, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
