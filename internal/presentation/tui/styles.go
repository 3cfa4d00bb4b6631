package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorChanged = lipgloss.Color("#F59E0B")
	colorOK      = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Styles
var (
	CommandStyle = lipgloss.NewStyle().
			Bold(true)

	ChangedStyle = lipgloss.NewStyle().
			Foreground(colorChanged)

	OKStyle = lipgloss.NewStyle().
		Foreground(colorOK)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	MatchStyle = lipgloss.NewStyle().
			PaddingLeft(4)
)
