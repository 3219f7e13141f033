package repl

import "github.com/charmbracelet/lipgloss"

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Render

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Render

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Render

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true).
			Render

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Render
)
