package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Width(9).Foreground(lipgloss.Color("245"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	periodStyle  = lipgloss.NewStyle().Padding(0, 1)
	activeStyle  = periodStyle.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
	gainStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	lossStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	resultBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)
