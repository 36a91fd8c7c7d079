package tui

import "github.com/charmbracelet/lipgloss"

// Style definitions.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))

	LabelStyle = lipgloss.NewStyle().Bold(true)

	HelpStyle = lipgloss.NewStyle().Faint(true)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	ButtonStyle = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())

	FocusedButtonStyle = ButtonStyle.
				BorderForeground(lipgloss.Color("63")).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)

// renderButton draws label in the focused or idle button style.
func renderButton(label string, focused bool) string {
	if focused {
		return FocusedButtonStyle.Render(label)
	}

	return ButtonStyle.Render(label)
}
