package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style

	// Status icons, rendered with String().
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles for w. Without a TTY the ASCII profile is used,
// so nothing renders escape codes.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	lr := lipgloss.NewRenderer(w)
	if isTTY {
		lr.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	green := lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}
	yellow := lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}
	red := lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}
	grey := lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"}

	return &Styles{
		Header1: lr.NewStyle().Bold(true).Underline(true),
		Header2: lr.NewStyle().Bold(true),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(grey),
		Success: lr.NewStyle().Foreground(green),
		Warning: lr.NewStyle().Foreground(yellow),
		Error:   lr.NewStyle().Foreground(red).Bold(true),
		Key:     lr.NewStyle().Foreground(grey),

		StatusSuccess: lr.NewStyle().Foreground(green).SetString("✓"),
		StatusWarning: lr.NewStyle().Foreground(yellow).SetString("!"),
		StatusFailed:  lr.NewStyle().Foreground(red).SetString("✗"),
	}
}
