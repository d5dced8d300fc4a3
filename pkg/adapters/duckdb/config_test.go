package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name:  "empty map returns empty struct",
			input: map[string]any{},
			want:  &Params{},
		},
		{
			name: "extensions only",
			input: map[string]any{
				"extensions": []any{"json", "icu"},
			},
			want: &Params{
				Extensions: []string{"json", "icu"},
			},
		},
		{
			name: "settings only",
			input: map[string]any{
				"settings": map[string]any{
					"memory_limit": "4GB",
					"threads":      "4",
				},
			},
			want: &Params{
				Settings: map[string]string{
					"memory_limit": "4GB",
					"threads":      "4",
				},
			},
		},
		{
			name: "read only from string",
			input: map[string]any{
				"read_only": "true",
			},
			want: &Params{ReadOnly: true},
		},
		{
			name: "full config",
			input: map[string]any{
				"read_only":  true,
				"extensions": []any{"json"},
				"settings": map[string]any{
					"threads": 2,
				},
			},
			want: &Params{
				ReadOnly:   true,
				Extensions: []string{"json"},
				Settings:   map[string]string{"threads": "2"},
			},
		},
		{
			name: "unknown key is rejected",
			input: map[string]any{
				"secrets": []any{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDSN(t *testing.T) {
	assert.Equal(t, ":memory:", dsn("", &Params{}))
	assert.Equal(t, "app.duckdb", dsn("app.duckdb", &Params{}))
	assert.Equal(t, "app.duckdb?access_mode=READ_ONLY", dsn("app.duckdb", &Params{ReadOnly: true}))
	assert.Equal(t, ":memory:", dsn(":memory:", &Params{ReadOnly: true}))
}
