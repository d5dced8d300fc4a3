// Package output renders command results for terminals, pipes and tools.
//
// A Renderer picks its format from the requested OutputMode. ModeAuto
// resolves to styled text on a terminal and to markdown otherwise, so the
// same command reads well interactively and when piped into a file or an
// agent.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// OutputMode selects how results are rendered.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeTable    OutputMode = "table"
)

// Modes lists the accepted mode names, for flag help and completion.
var Modes = []string{string(ModeAuto), string(ModeText), string(ModeMarkdown), string(ModeJSON), string(ModeTable)}

// Mode converts a user supplied name into an OutputMode. Unknown and empty
// names resolve to ModeAuto.
func Mode(s string) OutputMode {
	switch m := OutputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeText, ModeMarkdown, ModeJSON, ModeTable:
		return m
	case "md":
		return ModeMarkdown
	default:
		return ModeAuto
	}
}

// ValidMode reports whether s names a known mode.
func ValidMode(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if s == m {
			return true
		}
	}
	return s == "md"
}

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
// Tests use it to simulate a TTY.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	r := &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
	}

	lr := lipgloss.NewRenderer(out)
	if isTTY && r.EffectiveMode() == ModeText {
		lr.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	r.styles = NewStyles(lr)
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode == ModeAuto || r.mode == "" {
		if r.isTTY {
			return ModeText
		}
		return ModeMarkdown
	}
	return r.mode
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success prints a success message. JSON mode stays silent so stdout
// remains a single document.
func (r *Renderer) Success(msg string) {
	switch r.EffectiveMode() {
	case ModeJSON:
	case ModeMarkdown:
		r.Println("**" + msg + "**")
	default:
		r.Println(r.styles.Success.Render("✓ " + msg))
	}
}

// Warning prints a warning to the error writer.
func (r *Renderer) Warning(msg string) {
	r.status(r.styles.Warning, "!", "Warning", msg)
}

// Info prints an informational message to the error writer.
func (r *Renderer) Info(msg string) {
	r.status(r.styles.Info, "i", "Info", msg)
}

func (r *Renderer) status(style lipgloss.Style, icon, label, msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, style.Render(icon+" "+msg))
		return
	}
	_, _ = fmt.Fprintf(r.errOut, "%s: %s\n", label, msg)
}

// Table renders rows under header. Markdown mode emits a pipe table,
// every other mode a box-drawn table.
func (r *Renderer) Table(header []string, rows [][]any) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)
	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	if r.isTTY {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	t.Render()
}
