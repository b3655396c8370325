package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/edutate/vanessa/models"
)

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray
	ColorCyan      = lipgloss.Color("87")
	ColorBlue      = lipgloss.Color("75")
	ColorPurple    = lipgloss.Color("141")

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	StyleDone = lipgloss.NewStyle().Foreground(ColorSecondary).Strikethrough(true)

	// Chat prefixes
	StylePrefixAssistant = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StylePrefixUser      = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
)

// Icon returns a styled icon string
func Icon(icon string, style lipgloss.Style) string {
	return style.Render(icon)
}

// StatusStyle colors a timeline item status.
func StatusStyle(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusDone:
		return StyleSuccess
	case models.StatusInProgress:
		return StyleWarning
	default:
		return StyleSubtle
	}
}

// PriorityStyle colors a todo priority.
func PriorityStyle(p models.Priority) lipgloss.Style {
	switch p {
	case models.PriorityHigh:
		return StyleError
	case models.PriorityMedium:
		return StyleWarning
	case models.PriorityLow:
		return lipgloss.NewStyle().Foreground(ColorBlue)
	default:
		return StyleSubtle
	}
}

// CategoryStyle colors an event category.
func CategoryStyle(c models.Category) lipgloss.Style {
	switch c {
	case models.CategoryDeadline:
		return StyleError
	case models.CategoryTesting:
		return lipgloss.NewStyle().Foreground(ColorPurple)
	case models.CategoryVisit:
		return lipgloss.NewStyle().Foreground(ColorCyan)
	case models.CategoryToDo:
		return StyleWarning
	default:
		return StyleSubtle
	}
}
