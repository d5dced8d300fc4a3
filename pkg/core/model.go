package core

import (
	"errors"
	"fmt"
)

// SchemaMigrationsTable is the bookkeeping table maintained by the migration
// tool. It is never audited.
const SchemaMigrationsTable = "schema_migrations"

// DefaultInheritanceColumn is the column that stores the concrete class name
// for single-table inheritance.
const DefaultInheritanceColumn = "type"

// ErrInvalidModel is returned when a model descriptor violates a structural
// precondition (missing column name or type, duplicate column names).
var ErrInvalidModel = errors.New("invalid model")

// ColumnType is the normalized, dialect independent type of a column.
type ColumnType string

// Column type constants.
const (
	ColumnTypeString    ColumnType = "string"
	ColumnTypeText      ColumnType = "text"
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeFloat     ColumnType = "float"
	ColumnTypeDecimal   ColumnType = "decimal"
	ColumnTypeBoolean   ColumnType = "boolean"
	ColumnTypeDate      ColumnType = "date"
	ColumnTypeDatetime  ColumnType = "datetime"
	ColumnTypeTime      ColumnType = "time"
	ColumnTypeBinary    ColumnType = "binary"
	ColumnTypeJSON      ColumnType = "json"
	ColumnTypeUUID      ColumnType = "uuid"
	ColumnTypeOther     ColumnType = "other"
	ColumnTypeUndefined ColumnType = ""
)

// AssociationKind identifies the flavour of a model association.
type AssociationKind string

// Association kinds.
const (
	AssociationBelongsTo           AssociationKind = "belongs_to"
	AssociationHasOne              AssociationKind = "has_one"
	AssociationHasMany             AssociationKind = "has_many"
	AssociationHasAndBelongsToMany AssociationKind = "has_and_belongs_to_many"
)

// ValidatorKind identifies a declared validator.
type ValidatorKind string

// Validator kinds. Everything that is neither a length nor an inclusion
// validator is reported as ValidatorOther.
const (
	ValidatorLength    ValidatorKind = "length"
	ValidatorInclusion ValidatorKind = "inclusion"
	ValidatorOther     ValidatorKind = "other"
)

// Option keys understood on length validators.
const (
	OptionMinimum = "minimum"
	OptionMaximum = "maximum"
)

// Model describes a persistent model class and the table backing it.
type Model struct {
	// Name is the model class name, e.g. "User".
	Name string
	// TableName is the backing table. Empty for abstract models.
	TableName string
	// Exists reports whether the table exists in the database.
	Exists bool
	// InheritanceColumn stores the concrete class name for STI.
	InheritanceColumn string
	Associations      []Association
	Validators        []Validator
	// Columns are the table's columns in table order.
	Columns []Column
}

// Column describes one column of a table.
type Column struct {
	Name string
	Type ColumnType
	// Limit is the declared character limit. Nil means unbounded.
	Limit *int
	// SQLType is the raw type as reported by the database or manifest.
	SQLType  string
	Nullable bool
	Position int
}

// Association describes a declared association.
type Association struct {
	Kind AssociationKind
	Name string
	// Polymorphic is true for polymorphic belongs_to associations.
	Polymorphic bool
	// ForeignTypeColumn names the column holding the target class name.
	ForeignTypeColumn string
}

// Validator describes a declared validator.
type Validator struct {
	Kind       ValidatorKind
	Attributes []string
	Options    map[string]any
}

// ModelError reports a structural problem with a single model.
type ModelError struct {
	Model  string
	Column string
	Reason string
}

func (e *ModelError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("model %s, column %q: %s", e.Model, e.Column, e.Reason)
	}
	return fmt.Sprintf("model %s: %s", e.Model, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidModel.
func (e *ModelError) Unwrap() error {
	return ErrInvalidModel
}

// IntPtr returns a pointer to n. Handy for Column.Limit literals.
func IntPtr(n int) *int {
	return &n
}

// Auditable reports whether the model takes part in an audit: it must have a
// table, the table must exist, and it must not be the migrations table.
func (m *Model) Auditable() bool {
	return m.TableName != "" && m.TableName != SchemaMigrationsTable && m.Exists
}

// Validate checks the structural preconditions of the model's columns.
func (m *Model) Validate() error {
	seen := make(map[string]struct{}, len(m.Columns))
	for i := range m.Columns {
		col := &m.Columns[i]
		if col.Name == "" {
			return &ModelError{Model: m.Name, Reason: fmt.Sprintf("column at position %d has no name", i+1)}
		}
		if col.Type == ColumnTypeUndefined {
			return &ModelError{Model: m.Name, Column: col.Name, Reason: "column has no type"}
		}
		if _, dup := seen[col.Name]; dup {
			return &ModelError{Model: m.Name, Column: col.Name, Reason: "duplicate column name"}
		}
		seen[col.Name] = struct{}{}
	}
	return nil
}

// Column returns the column with the given name.
func (m *Model) Column(name string) (*Column, bool) {
	for i := range m.Columns {
		if m.Columns[i].Name == name {
			return &m.Columns[i], true
		}
	}
	return nil, false
}

// HasAttribute reports whether the validator applies to the attribute.
func (v *Validator) HasAttribute(name string) bool {
	for _, a := range v.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// HasOption reports whether the option key is present, regardless of value.
func (v *Validator) HasOption(key string) bool {
	_, ok := v.Options[key]
	return ok
}
