package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTestRenderer(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"TEXT", ModeText},
		{" markdown ", ModeMarkdown},
		{"md", ModeMarkdown},
		{"json", ModeJSON},
		{"table", ModeTable},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}

	assert.True(t, ValidMode("json"))
	assert.True(t, ValidMode("md"))
	assert.False(t, ValidMode("yaml"))
}

func TestEffectiveMode(t *testing.T) {
	r, _, _ := newTestRenderer(ModeAuto, true)
	assert.Equal(t, ModeText, r.EffectiveMode())

	r, _, _ = newTestRenderer(ModeAuto, false)
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())

	r, _, _ = newTestRenderer(ModeJSON, true)
	assert.Equal(t, ModeJSON, r.EffectiveMode())
	assert.True(t, r.IsTTY())
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_NoANSIWhenNotTTY(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)
	r.Println(r.Styles().Header1.Render("Audit"))
	r.Success("done")
	r.Warning("careful")

	assert.False(t, ansiPattern.MatchString(out.String()+errOut.String()))
	assert.Contains(t, out.String(), "Audit")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, errOut.String(), "careful")
}

func TestRenderer_Success(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown, false)
	r.Success("No missing validations")
	assert.Equal(t, "**No missing validations**\n", out.String())

	r, out, _ = newTestRenderer(ModeJSON, false)
	r.Success("ignored")
	assert.Empty(t, out.String())
}

func TestRenderer_StatusMessages(t *testing.T) {
	r, _, errOut := newTestRenderer(ModeMarkdown, false)
	r.Warning("no target configured")
	r.Info("using declared columns")
	assert.Equal(t, "Warning: no target configured\nInfo: using declared columns\n", errOut.String())
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON, false)
	require.NoError(t, r.JSON(AuditOutput{
		Environment: "dev",
		Models: []AuditModel{{
			Name:     "User",
			Table:    "users",
			Findings: []AuditFinding{{Column: "name", RuleID: "MV01", Severity: "warning"}},
		}},
		Summary: AuditSummary{ModelsAudited: 1, ModelsWithIssues: 1, Findings: 1, Warnings: 1},
	}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "dev", decoded["environment"])
	assert.NotContains(t, decoded, "run_id")
	summary := decoded["summary"].(map[string]any)
	assert.InDelta(t, 1, summary["findings"], 0)
}

func TestRenderer_Table(t *testing.T) {
	rows := [][]any{{"User", "name"}, {"Post", "title"}}

	r, out, _ := newTestRenderer(ModeMarkdown, false)
	r.Table([]string{"Model", "Column"}, rows)
	md := out.String()
	assert.Contains(t, md, "| Model | Column |")
	assert.Contains(t, md, "| User | name |")

	r, out, _ = newTestRenderer(ModeTable, false)
	r.Table([]string{"Model", "Column"}, rows)
	assert.Contains(t, out.String(), "MODEL")
	assert.Contains(t, out.String(), "Post")
	assert.False(t, strings.Contains(out.String(), "| Model |"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Audit", FormatHeader(1, "Audit"))
	assert.Equal(t, "## Summary", FormatHeader(2, "Summary"))
	assert.Equal(t, "# Clamped", FormatHeader(0, "Clamped"))
	assert.Equal(t, "- **Models:** 3", FormatKeyValue("Models", "3"))
	assert.Equal(t, "```yaml\nmodels: []\n```", FormatCodeBlock("yaml", "models: []\n"))
	assert.Equal(t, "`name`", FormatCode("name"))
}
