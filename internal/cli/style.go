package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorSuccess   = lipgloss.Color("42")
	colorWarning   = lipgloss.Color("220")
	colorError     = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	toolNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)
)
