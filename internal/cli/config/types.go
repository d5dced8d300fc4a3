// Package config provides configuration management for the modeldoctor CLI.
//
// The shared types (TargetConfig, AuditConfig) live in pkg/core and are
// re-exported here as aliases so commands need only this package.
package config

import (
	sharedcfg "github.com/leapstack-labs/modeldoctor/internal/config"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// AuditConfig is an alias for the shared rule configuration.
type AuditConfig = core.AuditConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = core.RuleOptions

// Config holds all CLI configuration options.
type Config struct {
	Manifest     []string             `koanf:"manifest"`
	ModelsDir    string               `koanf:"models_dir"`
	StatePath    string               `koanf:"state_path"`
	NoHistory    bool                 `koanf:"no_history"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Concurrency  int                  `koanf:"concurrency"`
	DocsURL      string               `koanf:"docs_url"`
	Target       *TargetConfig        `koanf:"target"`
	Audit        *AuditConfig         `koanf:"audit"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Manifest  []string      `koanf:"manifest"`
	ModelsDir string        `koanf:"models_dir"`
	Target    *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultStateFile   = sharedcfg.DefaultStateFile
	DefaultEnv         = "dev"
	DefaultOutput      = "auto" // TTY=text, non-TTY=markdown
	DefaultConcurrency = 4
	EnvPrefix          = "MODELDOCTOR_"
)
