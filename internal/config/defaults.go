package config

import (
	"strings"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// Default configuration values.
const (
	DefaultManifest  = "models.yaml"
	DefaultStateFile = ".modeldoctor/state.db"
	DefaultPort      = 5432
)

// ApplyDefaults fills unset project fields. The default manifest is only
// used when no models directory is configured either.
func ApplyDefaults(c *core.ProjectConfig) {
	if c == nil {
		return
	}
	if len(c.Manifest) == 0 && c.ModelsDir == "" {
		c.Manifest = []string{DefaultManifest}
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}
	t.Type = strings.ToLower(t.Type)
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if t.Type == "postgres" && t.Port == 0 {
		t.Port = DefaultPort
	}
}
