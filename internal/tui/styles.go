package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the terminal styles
var Theme = struct {
	App        lipgloss.Style
	Input      lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Subtitle   lipgloss.Style
	Empty      lipgloss.Style
	HelpBox    lipgloss.Style
	HelpTitle  lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
}{
	App: lipgloss.NewStyle().
		Padding(1, 2),
	Input: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#89B4FA")).
		Padding(0, 1).
		MarginBottom(1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#73F59F")).
		Bold(true),
	Unselected: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EBDBB2")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#928374")),
	Empty: lipgloss.NewStyle().
		Faint(true).
		Italic(true),
	HelpBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(lipgloss.Color("#7B61FF")).
		Padding(0, 2),
	HelpTitle: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7B61FF")),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5A9")).
		MarginTop(1),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FB4934")),
}
