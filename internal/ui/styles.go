package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan, headings and borders.
	colorSuccess = lipgloss.Color("#00E676") // Green, accepted outcomes.
	colorAccent  = lipgloss.Color("#FFD700") // Gold, stops needing attention.
	colorMuted   = lipgloss.Color("#8C8C8C") // Gray, labels.
)

// Summary box styles.
var (
	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(16)

	styleDecisionGood = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	styleDecisionStop = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)
)
