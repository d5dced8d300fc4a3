package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/leapstack-labs/modeldoctor/pkg/adapter"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"gopkg.in/yaml.v3"
)

// yamlManifest is the on-disk layout of a manifest file.
type yamlManifest struct {
	Models []yamlModel `yaml:"models"`
}

type yamlModel struct {
	Name              string           `yaml:"name"`
	Table             string           `yaml:"table"`
	InheritanceColumn *string          `yaml:"inheritance_column"`
	Associations      []map[string]any `yaml:"associations"`
	Validators        []map[string]any `yaml:"validators"`
	Columns           []yamlColumn     `yaml:"columns"`
}

type yamlColumn struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Limit    *int   `yaml:"limit"`
	Nullable *bool  `yaml:"nullable"`
}

// validatorKinds maps the validator keys accepted in a manifest to their
// kind. Anything that is neither length nor inclusion is ValidatorOther.
var validatorKinds = map[string]core.ValidatorKind{
	"length":       core.ValidatorLength,
	"inclusion":    core.ValidatorInclusion,
	"exclusion":    core.ValidatorOther,
	"presence":     core.ValidatorOther,
	"absence":      core.ValidatorOther,
	"format":       core.ValidatorOther,
	"uniqueness":   core.ValidatorOther,
	"numericality": core.ValidatorOther,
	"acceptance":   core.ValidatorOther,
	"confirmation": core.ValidatorOther,
	"comparison":   core.ValidatorOther,
}

var associationKinds = map[string]core.AssociationKind{
	"belongs_to":              core.AssociationBelongsTo,
	"has_one":                 core.AssociationHasOne,
	"has_many":                core.AssociationHasMany,
	"has_and_belongs_to_many": core.AssociationHasAndBelongsToMany,
}

// Parse decodes a YAML manifest. file is used for error messages only.
func Parse(data []byte, file string) ([]Definition, error) {
	var m yamlManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ParseError{File: file, Message: "invalid YAML", Err: err}
	}

	defs := make([]Definition, 0, len(m.Models))
	for i := range m.Models {
		def, err := m.Models[i].definition(file, i)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (ym *yamlModel) definition(file string, index int) (Definition, error) {
	if ym.Name == "" {
		return Definition{}, &ParseError{File: file, Message: fmt.Sprintf("model at index %d has no name", index)}
	}
	fail := func(format string, args ...any) (Definition, error) {
		return Definition{}, &ParseError{File: file, Model: ym.Name, Message: fmt.Sprintf(format, args...)}
	}

	model := core.Model{
		Name:              ym.Name,
		TableName:         ym.Table,
		InheritanceColumn: core.DefaultInheritanceColumn,
	}
	if ym.InheritanceColumn != nil {
		model.InheritanceColumn = *ym.InheritanceColumn
	}

	for i, raw := range ym.Associations {
		assoc, err := parseAssociation(raw)
		if err != nil {
			return fail("association %d: %v", i+1, err)
		}
		model.Associations = append(model.Associations, assoc)
	}

	for i, raw := range ym.Validators {
		v, err := parseValidator(raw)
		if err != nil {
			return fail("validator %d: %v", i+1, err)
		}
		model.Validators = append(model.Validators, v)
	}

	for i, yc := range ym.Columns {
		if yc.Name == "" {
			return fail("column at position %d has no name", i+1)
		}
		if yc.Type == "" {
			return fail("column %q has no type", yc.Name)
		}
		col := core.Column{
			Name:     yc.Name,
			SQLType:  yc.Type,
			Nullable: yc.Nullable == nil || *yc.Nullable,
			Position: i + 1,
		}
		col.Type, col.Limit = adapter.NormalizeType(yc.Type)
		if yc.Limit != nil && col.Type == core.ColumnTypeString {
			col.Limit = yc.Limit
		}
		model.Columns = append(model.Columns, col)
	}

	if err := model.Validate(); err != nil {
		return Definition{}, &ParseError{File: file, Model: ym.Name, Message: "invalid columns", Err: err}
	}

	return Definition{
		Model:         model,
		File:          file,
		Source:        SourceYAML,
		InlineColumns: len(model.Columns) > 0,
	}, nil
}

// parseAssociation decodes entries such as
//
//	{belongs_to: access, polymorphic: true}
func parseAssociation(raw map[string]any) (core.Association, error) {
	var assoc core.Association
	found := 0
	for key, val := range raw {
		kind, ok := associationKinds[key]
		if !ok {
			continue
		}
		name, ok := val.(string)
		if !ok || name == "" {
			return assoc, fmt.Errorf("%s expects an association name", key)
		}
		assoc.Kind = kind
		assoc.Name = name
		found++
	}
	switch found {
	case 0:
		return assoc, fmt.Errorf("missing association kind (one of belongs_to, has_one, has_many, has_and_belongs_to_many)")
	case 1:
	default:
		return assoc, fmt.Errorf("more than one association kind")
	}

	if p, ok := raw["polymorphic"]; ok {
		b, ok := p.(bool)
		if !ok {
			return assoc, fmt.Errorf("polymorphic must be a boolean")
		}
		assoc.Polymorphic = b
	}
	if ft, ok := raw["foreign_type"]; ok {
		s, ok := ft.(string)
		if !ok {
			return assoc, fmt.Errorf("foreign_type must be a string")
		}
		assoc.ForeignTypeColumn = s
	}
	if assoc.Polymorphic && assoc.ForeignTypeColumn == "" {
		assoc.ForeignTypeColumn = assoc.Name + "_type"
	}
	return assoc, nil
}

// parseValidator decodes the short form
//
//	{length: [name, nickname], maximum: 10}
//
// and the explicit form used for custom validators
//
//	{kind: email, attributes: [email]}
func parseValidator(raw map[string]any) (core.Validator, error) {
	var (
		v       core.Validator
		attrKey string
	)

	if kind, ok := raw["kind"]; ok {
		name, ok := kind.(string)
		if !ok || name == "" {
			return v, fmt.Errorf("kind must be a non-empty string")
		}
		v.Kind = core.ValidatorOther
		if k, known := validatorKinds[name]; known {
			v.Kind = k
		}
		attrKey = "attributes"
	} else {
		var keys []string
		for key := range raw {
			if _, known := validatorKinds[key]; known {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		switch len(keys) {
		case 0:
			return v, fmt.Errorf("missing validator kind")
		case 1:
		default:
			return v, fmt.Errorf("more than one validator kind: %v", keys)
		}
		attrKey = keys[0]
		v.Kind = validatorKinds[attrKey]
	}

	attrs, err := stringList(raw[attrKey])
	if err != nil {
		return v, fmt.Errorf("%s: %w", attrKey, err)
	}
	if len(attrs) == 0 {
		return v, fmt.Errorf("%s: no attributes", attrKey)
	}
	v.Attributes = attrs

	v.Options = make(map[string]any, len(raw))
	for key, val := range raw {
		if key == attrKey || key == "kind" {
			continue
		}
		v.Options[key] = val
	}

	if v.Kind == core.ValidatorLength {
		if err := normalizeLengthOptions(v.Options); err != nil {
			return v, err
		}
	}
	return v, nil
}

func stringList(val any) ([]string, error) {
	switch t := val.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("attribute names must be strings, got %v", item)
			}
			out = append(out, s)
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected a name or a list of names, got %T", val)
	}
}
