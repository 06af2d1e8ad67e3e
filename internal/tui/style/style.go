// Package style defines lipgloss styles for the TUI.
package style

import "github.com/charmbracelet/lipgloss"

// Names omit a "Style" suffix since they're read through the package name
// (style.Title, style.Card).
var (
	// Title is used for headers and the loading spinner label.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	Subtitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	// Help is used for keyboard shortcut hints.
	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	// Key highlights a keyboard key.
	Key = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	// Progress colors the volume history sparkline.
	Progress = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	// Muted is used for de-emphasized text and muted volumes.
	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	Bullet = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205"))

	// Column is the header above each node column.
	Column = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("63")).
		Width(CardWidth + 2).
		Align(lipgloss.Center)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(CardWidth).
		Padding(0, 1)

	// Selected is the card under the cursor.
	Selected = Card.
			BorderForeground(lipgloss.Color("205"))

	// Grabbed is the card whose slider the user holds.
	Grabbed = Card.
		Border(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color("42"))

	ActiveTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1).
			Underline(true)

	InactiveTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// CardWidth is the inner width of a node card.
const CardWidth = 30
