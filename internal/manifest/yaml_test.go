package manifest

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	defs, err := LoadFile("testdata/app.yaml")
	require.NoError(t, err)
	require.Len(t, defs, 3)

	user := defs[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, "users", user.TableName)
	assert.Equal(t, "type", user.InheritanceColumn)
	assert.Equal(t, "testdata/app.yaml", user.File)
	assert.Equal(t, SourceYAML, user.Source)
	assert.True(t, user.InlineColumns)

	require.Len(t, user.Associations, 2)
	assert.Equal(t, core.Association{
		Kind:              core.AssociationBelongsTo,
		Name:              "access",
		Polymorphic:       true,
		ForeignTypeColumn: "access_type",
	}, user.Associations[0])
	assert.Equal(t, core.AssociationHasMany, user.Associations[1].Kind)
	assert.False(t, user.Associations[1].Polymorphic)

	require.Len(t, user.Validators, 5)
	assert.Equal(t, core.ValidatorLength, user.Validators[0].Kind)
	assert.Equal(t, []string{"name"}, user.Validators[0].Attributes)
	assert.Equal(t, map[string]any{"maximum": 10}, user.Validators[0].Options)

	assert.Equal(t, []string{"nickname"}, user.Validators[1].Attributes)
	assert.Equal(t, map[string]any{"minimum": 1, "maximum": 10}, user.Validators[1].Options)

	assert.Equal(t, core.ValidatorInclusion, user.Validators[2].Kind)
	assert.Equal(t, core.ValidatorOther, user.Validators[3].Kind)
	assert.Equal(t, core.ValidatorOther, user.Validators[4].Kind)
	assert.Equal(t, []string{"email"}, user.Validators[4].Attributes)

	require.Len(t, user.Columns, 8)
	id := user.Columns[0]
	assert.Equal(t, core.ColumnTypeInteger, id.Type)
	assert.False(t, id.Nullable)
	assert.Equal(t, 1, id.Position)

	assert.Equal(t, core.ColumnTypeString, user.Columns[1].Type)
	assert.Nil(t, user.Columns[1].Limit)
	assert.True(t, user.Columns[1].Nullable)
	assert.Equal(t, core.IntPtr(500), user.Columns[3].Limit)
	assert.Equal(t, core.IntPtr(20), user.Columns[4].Limit)
	assert.Equal(t, 8, user.Columns[7].Position)

	comment := defs[1]
	assert.Equal(t, "kind", comment.InheritanceColumn)
	assert.False(t, comment.InlineColumns)
	assert.Empty(t, comment.Columns)

	abstract := defs[2]
	assert.Empty(t, abstract.TableName)
}

func TestParse_LengthRanges(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{"inclusive range", "in: 1..10", map[string]any{"minimum": 1, "maximum": 10}},
		{"exclusive range", "in: 1...10", map[string]any{"minimum": 1, "maximum": 9}},
		{"within", "within: 2..4", map[string]any{"minimum": 2, "maximum": 4}},
		{"endless range", "in: 5..", map[string]any{"minimum": 5}},
		{"two element list", "in: [3, 6]", map[string]any{"minimum": 3, "maximum": 6}},
		{"maximum only", "maximum: 10", map[string]any{"maximum": 10}},
		{"minimum only", "minimum: 10", map[string]any{"minimum": 10}},
		{"exact", "is: 4", map[string]any{"is": 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "models:\n  - name: User\n    validators:\n      - length: [name]\n        " + tt.input + "\n"
			defs, err := Parse([]byte(doc), "m.yaml")
			require.NoError(t, err)
			require.Len(t, defs, 1)
			require.Len(t, defs[0].Validators, 1)
			assert.Equal(t, tt.want, defs[0].Validators[0].Options)
		})
	}
}

func TestParse_InclusionKeepsInOption(t *testing.T) {
	doc := `
models:
  - name: User
    validators:
      - inclusion: [status]
        in: 1..3
`
	defs, err := Parse([]byte(doc), "m.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"in": "1..3"}, defs[0].Validators[0].Options)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		model   string
		message string
	}{
		{
			name:    "invalid yaml",
			input:   "models: [",
			message: "invalid YAML",
		},
		{
			name:    "unknown field",
			input:   "models:\n  - name: User\n    tabel: users\n",
			message: "invalid YAML",
		},
		{
			name:    "missing name",
			input:   "models:\n  - table: users\n",
			message: "model at index 0 has no name",
		},
		{
			name:    "column without type",
			input:   "models:\n  - name: User\n    columns:\n      - {name: email}\n",
			model:   "User",
			message: `column "email" has no type`,
		},
		{
			name:    "column without name",
			input:   "models:\n  - name: User\n    columns:\n      - {type: varchar}\n",
			model:   "User",
			message: "column at position 1 has no name",
		},
		{
			name:    "bad range",
			input:   "models:\n  - name: User\n    validators:\n      - length: [name]\n        in: 10..1\n",
			model:   "User",
			message: "end before start",
		},
		{
			name:    "range bound overflow",
			input:   "models:\n  - name: User\n    validators:\n      - length: [name]\n        in: 99999999999999999999..1\n",
			model:   "User",
			message: "invalid range",
		},
		{
			name:    "range end overflow",
			input:   "models:\n  - name: User\n    validators:\n      - length: [name]\n        in: 1..99999999999999999999\n",
			model:   "User",
			message: "value out of range",
		},
		{
			name:    "unknown validator",
			input:   "models:\n  - name: User\n    validators:\n      - checks: [name]\n",
			model:   "User",
			message: "missing validator kind",
		},
		{
			name:    "two validator kinds",
			input:   "models:\n  - name: User\n    validators:\n      - length: [name]\n        inclusion: [name]\n",
			model:   "User",
			message: "more than one validator kind",
		},
		{
			name:    "association without kind",
			input:   "models:\n  - name: User\n    associations:\n      - polymorphic: true\n",
			model:   "User",
			message: "missing association kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "bad.yaml")
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "bad.yaml", perr.File)
			assert.Equal(t, tt.model, perr.Model)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_DuplicateColumn(t *testing.T) {
	doc := `
models:
  - name: User
    columns:
      - {name: name, type: varchar}
      - {name: name, type: text}
`
	_, err := Parse([]byte(doc), "dup.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidModel)
	assert.Contains(t, err.Error(), "duplicate column name")
}

func TestParse_Nullable(t *testing.T) {
	doc := `
models:
  - name: User
    columns:
      - {name: id, type: bigint, nullable: false}
      - {name: name, type: varchar}
      - {name: bio, type: text, nullable: true}
`
	defs, err := Parse([]byte(doc), "m.yaml")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Len(t, defs[0].Columns, 3)

	assert.False(t, defs[0].Columns[0].Nullable)
	assert.True(t, defs[0].Columns[1].Nullable, "nullable defaults to true")
	assert.True(t, defs[0].Columns[2].Nullable)
}

func TestParse_Empty(t *testing.T) {
	defs, err := Parse(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestLoad(t *testing.T) {
	t.Run("single manifest", func(t *testing.T) {
		defs, err := Load([]string{"testdata/app.yaml"}, "")
		require.NoError(t, err)
		assert.Len(t, defs, 3)
	})

	t.Run("duplicate model across sources", func(t *testing.T) {
		_, err := Load([]string{"testdata/app.yaml", "testdata/app.yaml"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model User: already declared in testdata/app.yaml")
	})

	t.Run("nothing declared", func(t *testing.T) {
		_, err := Load(nil, "")
		assert.ErrorIs(t, err, ErrNoModels)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load([]string{"testdata/missing.yaml"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read manifest")
	})
}

func TestModels(t *testing.T) {
	defs, err := LoadFile("testdata/app.yaml")
	require.NoError(t, err)

	models := Models(defs)
	require.Len(t, models, 3)
	assert.Equal(t, "User", models[0].Name)
	assert.Equal(t, "Comment", models[1].Name)
}
