package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// ErrNotConnected is returned by adapter methods called before Connect.
var ErrNotConnected = errors.New("database connection not established")

// Placeholder formats the n-th (1-based) bind parameter of a query.
type Placeholder func(n int) string

// DollarPlaceholder formats $1, $2, ... (PostgreSQL).
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// QuestionPlaceholder formats ? for every parameter (DuckDB, SQLite).
func QuestionPlaceholder(int) string { return "?" }

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses defaultSchema if the reference is not qualified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.SplitN(table, ".", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// TableExistsCommon checks information_schema.tables for the table.
func (b *BaseSQLAdapter) TableExistsCommon(ctx context.Context, table, defaultSchema string, ph Placeholder) (bool, error) {
	if b.DB == nil {
		return false, ErrNotConnected
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // placeholders are generated, not user input
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = %s AND table_name = %s
	`, ph(1), ph(2))

	var count int
	if err := b.DB.QueryRowContext(ctx, query, schema, tableName).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return count > 0, nil
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata
// over information_schema.columns, including character_maximum_length.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table, defaultSchema string, ph Placeholder) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // placeholders are generated, not user input
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			character_maximum_length,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, ph(1), ph(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var (
			col      core.Column
			limit    sql.NullInt64
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.SQLType, &limit, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		col.Type, col.Limit = NormalizeType(col.SQLType)
		if col.Type == core.ColumnTypeString && limit.Valid && limit.Int64 > 0 {
			n := int(limit.Int64)
			col.Limit = &n
		}
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	if b.Logger != nil {
		b.Logger.Debug("introspected table",
			slog.String("schema", schema),
			slog.String("table", tableName),
			slog.Int("columns", len(columns)))
	}

	return &core.TableMetadata{
		Schema:  schema,
		Name:    tableName,
		Columns: columns,
	}, nil
}
