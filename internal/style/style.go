package style

import "github.com/charmbracelet/lipgloss"

// Bold and Dim are the base text styles shared across renderers.
var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)
	Red  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Green = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)
