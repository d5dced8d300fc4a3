// Package duckdb provides a DuckDB schema introspection adapter.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/modeldoctor/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// DefaultSchema is the schema DuckDB creates tables in by default.
const DefaultSchema = "main"

const memoryPath = ":memory:"

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
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
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := parseParams(cfg.Params)
	if err != nil {
		return err
	}

	db, err := sql.Open("duckdb", dsn(cfg.Path, params))
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	if err := configure(ctx, db, params); err != nil {
		_ = db.Close()
		return err
	}

	a.DB = db
	a.Cfg = cfg
	a.Logger.Debug("connected to duckdb", slog.String("path", cfg.Path), slog.Bool("read_only", params.ReadOnly))
	return nil
}

func dsn(path string, params *Params) string {
	if path == "" || path == memoryPath {
		return memoryPath
	}
	if params.ReadOnly {
		return path + "?access_mode=READ_ONLY"
	}
	return path
}

// configure loads extensions and applies session settings.
func configure(ctx context.Context, db *sql.DB, params *Params) error {
	for _, ext := range params.Extensions {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("LOAD %s", ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}

	keys := make([]string, 0, len(params.Settings))
	for k := range params.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		//nolint:gosec // settings come from the project config
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", k, params.Settings[k])); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", k, err)
		}
	}
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
	return a.TableExistsCommon(ctx, table, a.schema(), adapter.QuestionPlaceholder)
}

// GetTableMetadata retrieves metadata for a specified table.
// DuckDB drops VARCHAR length modifiers, so its string columns never
// carry a limit.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.schema(), adapter.QuestionPlaceholder)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
