package teaui

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the pricing editor.
type Theme struct {
	Header TableHeaderTheme
	Table  TableTheme
	Footer FooterTheme
	Help   lipgloss.Style
}

// TableHeaderTheme styles the title line above the matrix.
type TableHeaderTheme struct {
	Title lipgloss.Style
	Hint  lipgloss.Style
}

// TableTheme styles the matrix cells.
type TableTheme struct {
	Label    lipgloss.Style
	Cursor   lipgloss.Style
	Draft    lipgloss.Style
	Disabled lipgloss.Style
}

// FooterTheme groups the action bar, the error note and the status line.
type FooterTheme struct {
	Button         lipgloss.Style
	ButtonDisabled lipgloss.Style
	Note           lipgloss.Style
	Status         lipgloss.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	disabled := lipgloss.NewStyle().Faint(true)
	bold := lipgloss.NewStyle().Bold(true)

	return Theme{
		Header: TableHeaderTheme{
			Title: bold.Underline(true),
			Hint:  lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
		},
		Table: TableTheme{
			Label:    bold,
			Cursor:   lipgloss.NewStyle().Reverse(true),
			Draft:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Disabled: disabled,
		},
		Footer: FooterTheme{
			Button:         bold,
			ButtonDisabled: disabled,
			Note:           lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Status:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Help: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
	}
}
