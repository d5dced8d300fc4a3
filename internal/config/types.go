// Package config locates and reads modeldoctor project configuration.
// It holds the parts shared by the CLI loader and tests: project root
// discovery, defaults and target validation.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/modeldoctor/pkg/adapter"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// defaultSchemas maps adapter types to the schema searched when a table
// name is not qualified.
var defaultSchemas = map[string]string{
	"postgres": "public",
	"duckdb":   "main",
	"sqlite":   "main",
}

// DefaultSchemaForType returns the default schema for a database type.
// Unknown types fall back to "main".
func DefaultSchemaForType(dbType string) string {
	if s, ok := defaultSchemas[strings.ToLower(dbType)]; ok {
		return s
	}
	return "main"
}

// ValidateTarget checks that the target names a registered adapter.
// A nil target is valid: audits then run against declared columns only.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil {
		return nil
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}
