package tui

import "github.com/charmbracelet/lipgloss"

const (
	primaryColor   = "#7C3AED" // Purple
	secondaryColor = "#10B981" // Green
	errorColor     = "#EF4444" // Red
	dimColor       = "#6B7280" // Gray
	borderColor    = "#4B5563"
	textColor      = "#E5E7EB"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor)).
			Bold(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(textColor))

	// Boxes.
	questionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(borderColor)).
			Padding(0, 1)

	optionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(borderColor)).
			Foreground(lipgloss.Color(textColor)).
			Padding(0, 1)

	optionSelectedStyle = optionStyle.
				BorderForeground(lipgloss.Color(primaryColor)).
				Foreground(lipgloss.Color(primaryColor)).
				Bold(true)

	navStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(borderColor)).
			Foreground(lipgloss.Color(dimColor)).
			Width(3).
			Align(lipgloss.Center)

	navAnsweredStyle = navStyle.
				Foreground(lipgloss.Color(secondaryColor))

	navCurrentStyle = navStyle.
			BorderForeground(lipgloss.Color(primaryColor)).
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	arrowStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(textColor)).
			Foreground(lipgloss.Color(textColor)).
			Width(3).
			Align(lipgloss.Center)

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Background(lipgloss.Color(primaryColor)).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 2)

	// Form.
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(textColor)).
			Width(16)

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color(primaryColor)).
				Bold(true)
)
