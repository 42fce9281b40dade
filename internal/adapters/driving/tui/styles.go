package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the pre-configured lipgloss styles for the search screen.
type Styles struct {
	// Title style for the header.
	Title lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for paths and less important text.
	Muted lipgloss.Style

	// Selected style for the highlighted result.
	Selected lipgloss.Style

	// Score style for similarity scores.
	Score lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// InputField style for the query input box.
	InputField lipgloss.Style

	// Help style for the key hints at the bottom.
	Help lipgloss.Style
}

// DefaultStyles returns the default search screen styles.
func DefaultStyles() *Styles {
	var (
		primary    = lipgloss.Color("#7C3AED") // Purple
		secondary  = lipgloss.Color("#06B6D4") // Cyan
		foreground = lipgloss.Color("#CDD6F4") // Light gray
		muted      = lipgloss.Color("#6C7086") // Medium gray
		errorRed   = lipgloss.Color("#F38BA8") // Red
		border     = lipgloss.Color("#45475A") // Border gray
	)

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Normal: lipgloss.NewStyle().
			Foreground(foreground),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground).
			Background(primary),

		Score: lipgloss.NewStyle().
			Foreground(secondary),

		Error: lipgloss.NewStyle().
			Foreground(errorRed),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(muted),
	}
}
