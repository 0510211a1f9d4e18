package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the pre-configured lipgloss styles for the TUI.
type Styles struct {
	// Title style for the application header.
	Title lipgloss.Style

	// Subtitle style for section headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for the highlighted result.
	Selected lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// StatusBar style for the status line.
	StatusBar lipgloss.Style

	// Help style for the key binding hints.
	Help lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() *Styles {
	var (
		primary    = lipgloss.Color("#7C3AED") // Purple
		secondary  = lipgloss.Color("#06B6D4") // Cyan
		foreground = lipgloss.Color("#CDD6F4") // Light gray
		muted      = lipgloss.Color("#6C7086") // Medium gray
		errColour  = lipgloss.Color("#F38BA8") // Red
		barBg      = lipgloss.Color("#1E1E2E") // Dark gray
	)

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(secondary),

		Normal: lipgloss.NewStyle().
			Foreground(foreground),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground).
			Background(primary),

		Error: lipgloss.NewStyle().
			Foreground(errColour),

		StatusBar: lipgloss.NewStyle().
			Foreground(foreground).
			Background(barBg).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(muted),
	}
}
