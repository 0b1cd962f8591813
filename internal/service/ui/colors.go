package ui

import "github.com/charmbracelet/lipgloss"

// ANSI base colors so the styles follow the terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// REPL
	PromptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	ToolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)
