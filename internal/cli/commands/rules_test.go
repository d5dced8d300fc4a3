package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRulesCommand(t *testing.T) {
	cmd := NewRulesCommand()

	assert.Equal(t, "rules [rule-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"group", "verbose", "format"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRulesCommand_ListAll(t *testing.T) {
	cfg := setupProject(t, cleanManifest)

	stdout, _, err := execute(t, NewRulesCommand(), cfg, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Audit Rules (1)")
	assert.Contains(t, stdout, "Validation")
	assert.Contains(t, stdout, "MV01")
	assert.Contains(t, stdout, "missing-string-length-validation")
}

func TestRulesCommand_FilterByGroup(t *testing.T) {
	t.Run("matching group", func(t *testing.T) {
		cfg := setupProject(t, cleanManifest)
		stdout, _, err := execute(t, NewRulesCommand(), cfg, "--group", "VALIDATION", "--format", "markdown")
		require.NoError(t, err)
		assert.Contains(t, stdout, "# Audit Rules")
		assert.Contains(t, stdout, "## Validation")
		assert.Contains(t, stdout, "- **MV01**")
	})

	t.Run("unknown group", func(t *testing.T) {
		cfg := setupProject(t, cleanManifest)
		stdout, _, err := execute(t, NewRulesCommand(), cfg, "--group", "indexes", "--format", "markdown")
		require.NoError(t, err)
		assert.NotContains(t, stdout, "MV01")
	})
}

func TestRulesCommand_Verbose(t *testing.T) {
	cfg := setupProject(t, cleanManifest)

	stdout, _, err := execute(t, NewRulesCommand(), cfg, "--verbose", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "  > ")
}

func TestRulesCommand_JSON(t *testing.T) {
	cfg := setupProject(t, cleanManifest)

	stdout, _, err := execute(t, NewRulesCommand(), cfg, "--format", "json")
	require.NoError(t, err)

	var out RulesJSONOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Equal(t, 1, out.Count)
	require.Len(t, out.Rules, 1)

	rule := out.Rules[0]
	assert.Equal(t, "MV01", rule.ID)
	assert.Equal(t, "validation", rule.Group)
	assert.Equal(t, "warning", rule.Severity)
	assert.ElementsMatch(t, []string{"ignore_models", "ignore_columns"}, rule.ConfigKeys)
	assert.Contains(t, rule.DocsURL, "mv01")
}

func TestRulesCommand_Table(t *testing.T) {
	cfg := setupProject(t, cleanManifest)

	stdout, _, err := execute(t, NewRulesCommand(), cfg, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, stdout, "SEVERITY")
	assert.Contains(t, stdout, "MV01")
}

func TestRulesCommand_ShowRule(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		cfg := setupProject(t, cleanManifest)
		stdout, _, err := execute(t, NewRulesCommand(), cfg, "mv01", "--format", "text")
		require.NoError(t, err)
		assert.Contains(t, stdout, "MV01 - missing-string-length-validation")
		assert.Contains(t, stdout, "Why This Matters")
		assert.Contains(t, stdout, "ignore_columns")
	})

	t.Run("markdown", func(t *testing.T) {
		cfg := setupProject(t, cleanManifest)
		stdout, _, err := execute(t, NewRulesCommand(), cfg, "MV01", "--format", "markdown")
		require.NoError(t, err)
		assert.Contains(t, stdout, "# MV01 - missing-string-length-validation")
		assert.Contains(t, stdout, "```yaml")
	})

	t.Run("json", func(t *testing.T) {
		cfg := setupProject(t, cleanManifest)
		stdout, _, err := execute(t, NewRulesCommand(), cfg, "MV01", "--format", "json")
		require.NoError(t, err)
		assert.Contains(t, stdout, `"id": "MV01"`)
	})

	t.Run("not found", func(t *testing.T) {
		cfg := setupProject(t, cleanManifest)
		_, _, err := execute(t, NewRulesCommand(), cfg, "XX01")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `rule "XX01" not found`)
	})
}

func TestTruncateOneLine(t *testing.T) {
	assert.Equal(t, "a b c", truncateOneLine("a\n  b\tc", 80))
	assert.Equal(t, "abcd...", truncateOneLine("abcdefghij", 7))
}

func TestGroupTitle(t *testing.T) {
	assert.Equal(t, "Validation", groupTitle("validation"))
	assert.Equal(t, "Data Integrity", groupTitle("data_integrity"))
}
