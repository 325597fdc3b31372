package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle uses ANSI 6 (cyan), readable on light and dark terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (gray) keeps descriptions quieter than names.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// SectionStyle heads each block of `tuskmem show`.
	SectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)

	RoleStyles = map[string]lipgloss.Style{
		"user":      lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		"assistant": lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		"system":    lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}

	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Role renders a message role in its color, falling back to DescStyle.
func Role(role string) string {
	if style, ok := RoleStyles[role]; ok {
		return style.Render(role)
	}
	return DescStyle.Render(role)
}
