package core

// ProjectConfig holds project-level configuration.
type ProjectConfig struct {
	Manifest  []string      `koanf:"manifest"`
	ModelsDir string        `koanf:"models_dir"`
	Target    *TargetConfig `koanf:"target"`
	Audit     *AuditConfig  `koanf:"audit"`
}

// TargetConfig holds the database whose schema is introspected.
type TargetConfig struct {
	Type string `koanf:"type"` // postgres, duckdb, sqlite

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options (e.g. sslmode)
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g. DuckDB settings)
	Params map[string]any `koanf:"params"`
}

// AuditConfig holds rule configuration for the audit command.
type AuditConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any
