package tui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	StatusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	// Cards
	CardStyle = lipgloss.NewStyle().
			Width(8).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
	CursorCardStyle = CardStyle.
			BorderForeground(lipgloss.Color("214")).
			Bold(true)
	FaceUpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	FlipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	LockedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	CompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	HelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
