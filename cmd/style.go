package cmd

import "github.com/charmbracelet/lipgloss"

var (
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func okMark() string {
	return okStyle.Render("✓")
}
