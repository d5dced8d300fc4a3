package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/modeldoctor/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/modeldoctor/pkg/adapters/sqlite"
)

const testManifest = `models:
  - name: User
    table: users
    validators:
      - length: [bio]
        maximum: 500
      - length: [nickname]
        minimum: 2
    columns:
      - {name: id, type: integer}
      - {name: name, type: varchar}
      - {name: nickname, type: varchar}
      - {name: bio, type: varchar}
      - {name: email, type: "varchar(255)"}
      - {name: type, type: varchar}
  - name: Post
    table: posts
    columns:
      - {name: title, type: varchar}
      - {name: body, type: text}
  - name: Tag
    table: tags
    validators:
      - inclusion: [label]
        in: [a, b]
    columns:
      - {name: label, type: varchar}
  - name: ApplicationRecord
`

const cleanManifest = `models:
  - name: Tag
    table: tags
    validators:
      - inclusion: [label]
        in: [a, b]
    columns:
      - {name: label, type: varchar}
`

// setupProject writes a config and manifest into a temp dir and returns the
// loaded config.
func setupProject(t *testing.T, manifest string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.yaml"), []byte(manifest), 0o600))
	cfgPath := filepath.Join(dir, "modeldoctor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("manifest: models.yaml\n"), 0o600))

	cfg, err := config.LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	return cfg
}

// execute runs cmd with cfg in its context and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	cmd.SetContext(config.WithConfig(context.Background(), cfg))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
