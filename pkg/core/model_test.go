package core_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Auditable(t *testing.T) {
	tests := []struct {
		name  string
		model core.Model
		want  bool
	}{
		{"regular table", core.Model{Name: "User", TableName: "users", Exists: true}, true},
		{"abstract model", core.Model{Name: "ApplicationRecord", Exists: true}, false},
		{"missing table", core.Model{Name: "Ghost", TableName: "ghosts"}, false},
		{"migrations table", core.Model{Name: "SchemaMigration", TableName: "schema_migrations", Exists: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.model.Auditable())
		})
	}
}

func TestModel_Validate(t *testing.T) {
	t.Run("valid columns", func(t *testing.T) {
		m := core.Model{Name: "User", Columns: []core.Column{
			{Name: "id", Type: core.ColumnTypeInteger},
			{Name: "email", Type: core.ColumnTypeString, Limit: core.IntPtr(255)},
		}}
		assert.NoError(t, m.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		m := core.Model{Name: "User", Columns: []core.Column{{Type: core.ColumnTypeString}}}
		err := m.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidModel))
		assert.Contains(t, err.Error(), "position 1 has no name")
	})

	t.Run("missing type", func(t *testing.T) {
		m := core.Model{Name: "User", Columns: []core.Column{{Name: "email"}}}
		err := m.Validate()
		require.Error(t, err)

		var modelErr *core.ModelError
		require.True(t, errors.As(err, &modelErr))
		assert.Equal(t, "User", modelErr.Model)
		assert.Equal(t, "email", modelErr.Column)
	})

	t.Run("duplicate column", func(t *testing.T) {
		m := core.Model{Name: "User", Columns: []core.Column{
			{Name: "email", Type: core.ColumnTypeString},
			{Name: "email", Type: core.ColumnTypeText},
		}}
		err := m.Validate()
		require.ErrorIs(t, err, core.ErrInvalidModel)
		assert.Contains(t, err.Error(), "duplicate column name")
	})
}

func TestModel_Column(t *testing.T) {
	m := core.Model{Columns: []core.Column{{Name: "id"}, {Name: "email"}}}

	col, ok := m.Column("email")
	require.True(t, ok)
	assert.Equal(t, "email", col.Name)

	_, ok = m.Column("missing")
	assert.False(t, ok)
}

func TestValidator_Helpers(t *testing.T) {
	v := core.Validator{
		Kind:       core.ValidatorLength,
		Attributes: []string{"name", "nickname"},
		Options:    map[string]any{core.OptionMinimum: nil},
	}

	assert.True(t, v.HasAttribute("nickname"))
	assert.False(t, v.HasAttribute("email"))
	assert.True(t, v.HasOption(core.OptionMinimum), "a key with a nil value is still present")
	assert.False(t, v.HasOption(core.OptionMaximum))
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in     string
		want   core.Severity
		wantOK bool
	}{
		{"error", core.SeverityError, true},
		{"WARNING", core.SeverityWarning, true},
		{"info", core.SeverityInfo, true},
		{"hint", core.SeverityHint, true},
		{"fatal", core.SeverityWarning, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := core.ParseSeverity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want.String(), got.String())
			}
		})
	}
}
