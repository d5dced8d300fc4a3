package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/modeldoctor/internal/cli/config"
	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	intconfig "github.com/leapstack-labs/modeldoctor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			wantFiles: []string{"modeldoctor.yaml", "models.yaml", ".gitignore"},
		},
		{
			name:      "init example project",
			args:      []string{"--example"},
			wantFiles: []string{"modeldoctor.yaml", "models.yaml", "app/models/comment.go"},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "modeldoctor.yaml"), []byte("existing"), 0o600))
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "modeldoctor.yaml"), []byte("existing"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"modeldoctor.yaml", "models.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append([]string{dir}, tt.args...))

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "already exists")
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(dir, f))
			}
			assert.Contains(t, buf.String(), "modeldoctor project initialized!")

			cfg, err := intconfig.LoadFromDir(dir)
			require.NoError(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, []string{"models.yaml"}, cfg.Manifest)
		})
	}
}

func TestInitCommand_NewDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "app")

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(dir, "modeldoctor.yaml"))
}

func TestInitCommand_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.yaml"), []byte("models: []\n"), 0o600))

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(filepath.Join(dir, "models.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "models: []\n", string(content))
}

func TestInitCommand_ExampleAudit(t *testing.T) {
	dir := t.TempDir()
	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir, "--example"})
	require.NoError(t, cmd.Execute())

	cfg, err := config.LoadConfig(filepath.Join(dir, "modeldoctor.yaml"), nil)
	require.NoError(t, err)
	cfg.NoHistory = true

	stdout, _, err := execute(t, NewAuditCommand(), cfg, "--format", "json")
	require.ErrorIs(t, err, ErrMissingValidations)

	var out output.AuditOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))

	found := make(map[string][]string)
	for _, m := range out.Models {
		for _, f := range m.Findings {
			found[m.Name] = append(found[m.Name], f.Column)
		}
	}
	assert.Equal(t, []string{"title"}, found["Post"])
	assert.Equal(t, []string{"website"}, found["User"])
	assert.NotContains(t, found, "Comment")
	assert.NotContains(t, found, "Admin")
}

func TestListTemplateFiles(t *testing.T) {
	files, err := listTemplateFiles("minimal")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".gitignore", "modeldoctor.yaml", "models.yaml"}, files)

	files, err = listTemplateFiles("example")
	require.NoError(t, err)
	assert.Contains(t, files, "app/models/comment.go")
}

func TestRenameSpecialFiles(t *testing.T) {
	assert.Equal(t, ".gitignore", renameSpecialFiles("gitignore"))
	assert.Equal(t, "app/models/comment.go", renameSpecialFiles("app/models/comment.go.tmpl"))
	assert.Equal(t, "models.yaml", renameSpecialFiles("models.yaml"))
}
