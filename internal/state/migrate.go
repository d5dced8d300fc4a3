package state

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate runs all pending database migrations.
func (s *SQLiteStore) Migrate() error {
	if s.db == nil {
		return ErrNotOpened
	}
	if err := MigrateWithDB(s.db); err != nil {
		return err
	}
	s.logger.Debug("state schema up to date")
	return nil
}

// MigrateWithDB runs migrations using a raw database connection.
// This is useful for testing or when you have a db connection from elsewhere.
func MigrateWithDB(db *sql.DB) error {
	configureGoose()

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// GetMigrationVersion returns the current migration version.
func (s *SQLiteStore) GetMigrationVersion() (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}

	configureGoose()
	return goose.GetDBVersion(s.db)
}

func configureGoose() {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	// sqlite is a registered dialect name, so this cannot fail.
	_ = goose.SetDialect("sqlite")
}
