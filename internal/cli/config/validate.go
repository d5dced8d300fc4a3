package config

import (
	"errors"
	"fmt"
	"os"

	intconfig "github.com/leapstack-labs/modeldoctor/internal/config"
)

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	return intconfig.DefaultSchemaForType(dbType)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Manifest) == 0 && c.ModelsDir == "" {
		return errors.New("no model sources configured\nHint: set manifest or models_dir in modeldoctor.yaml, or pass --manifest")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return intconfig.ValidateTarget(c.Target)
}

// ValidateSources checks that every configured manifest and the models
// directory exist.
func (c *Config) ValidateSources() error {
	for _, m := range c.Manifest {
		if _, err := os.Stat(m); os.IsNotExist(err) {
			return fmt.Errorf("manifest does not exist: %s\nHint: create it or use --manifest to specify a different path", m)
		}
	}
	if c.ModelsDir != "" {
		info, err := os.Stat(c.ModelsDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("models directory does not exist: %s\nHint: create the directory or use --models-dir to specify a different path", c.ModelsDir)
		}
		if err == nil && !info.IsDir() {
			return fmt.Errorf("models_dir is not a directory: %s", c.ModelsDir)
		}
	}
	return nil
}
