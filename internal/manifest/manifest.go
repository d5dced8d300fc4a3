// Package manifest loads model declarations for an audit.
//
// Models are declared either in YAML manifest files or as Go structs
// carrying gorm and validate tags. Both sources produce Definitions, which
// the loader completes with live column metadata.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// Source identifies where a definition was declared.
type Source string

// Definition sources.
const (
	SourceYAML   Source = "yaml"
	SourceStruct Source = "struct"
)

// Definition is a model as declared, before introspection.
type Definition struct {
	core.Model
	// File is the file the model was declared in.
	File   string
	Source Source
	// InlineColumns is true when Columns were listed explicitly in a YAML
	// manifest. Inline columns take precedence over live introspection.
	InlineColumns bool
}

// ParseError reports a problem in a manifest file.
type ParseError struct {
	File    string
	Model   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Model != "" {
		fmt.Fprintf(&b, ": model %s", e.Model)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrNoModels is returned when neither a manifest nor a models directory
// yields any model.
var ErrNoModels = errors.New("no models declared")

// Load reads YAML manifests and Go model directories and returns all
// definitions in declaration order. Model names must be unique across
// sources.
func Load(manifests []string, modelsDir string) ([]Definition, error) {
	var defs []Definition

	for _, path := range manifests {
		fileDefs, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}

	if modelsDir != "" {
		dirDefs, err := LoadStructs(modelsDir)
		if err != nil {
			return nil, err
		}
		defs = append(defs, dirDefs...)
	}

	if len(defs) == 0 {
		return nil, ErrNoModels
	}

	seen := make(map[string]string, len(defs))
	for _, d := range defs {
		if prev, dup := seen[d.Name]; dup {
			return nil, &ParseError{
				File:    d.File,
				Model:   d.Name,
				Message: fmt.Sprintf("already declared in %s", prev),
			}
		}
		seen[d.Name] = d.File
	}

	return defs, nil
}

// LoadFile reads one YAML manifest.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(data, filepath.ToSlash(path))
}

// Models extracts the model descriptors from definitions.
func Models(defs []Definition) []core.Model {
	models := make([]core.Model, len(defs))
	for i := range defs {
		models[i] = defs[i].Model
	}
	return models
}
