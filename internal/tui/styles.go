package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/slmtnm/s3browse/internal/viewmodel"
)

// Styles - Minimalistic theme
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff"))

	directoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0066cc")).
			Bold(true)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbbbbb"))

	crumbTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	crumbLinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0066cc")).
			Underline(true)

	enteredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00aa55"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#006600")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	browserStyle = lipgloss.NewStyle().
			BorderForeground(lipgloss.Color("#999999")).
			Padding(1, 2)

	tableHeaderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("#999999")).
				BorderBottom(true).
				Bold(true)

	tableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Background(lipgloss.Color("#0066cc")).
				Bold(true)
)

func iconGlyph(icon viewmodel.Icon) string {
	switch icon {
	case viewmodel.IconFolder:
		return "📁"
	case viewmodel.IconImage:
		return "🖼"
	case viewmodel.IconVideo:
		return "🎞"
	}
	return "📄"
}
