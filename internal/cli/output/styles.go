package output

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	colorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
)

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Header1   lipgloss.Style
	Header2   lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Success   lipgloss.Style
	ModelName lipgloss.Style
	Column    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds the styles on r so they honour its color profile.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		Header2:   r.NewStyle().Bold(true).Underline(true),
		Bold:      r.NewStyle().Bold(true),
		Muted:     r.NewStyle().Foreground(colorMuted),
		Error:     r.NewStyle().Foreground(colorError),
		Warning:   r.NewStyle().Foreground(colorWarning),
		Info:      r.NewStyle().Foreground(colorInfo),
		Success:   r.NewStyle().Foreground(colorSuccess),
		ModelName: r.NewStyle().Bold(true).Foreground(colorPrimary),
		Column:    r.NewStyle().Foreground(colorWarning),

		StatusSuccess: r.NewStyle().Foreground(colorSuccess).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(colorError).SetString("✗"),
	}
}
