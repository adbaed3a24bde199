package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leonardomso/gfmlink/internal/batch"
)

// Color palette.
var (
	PrimaryColor   = lipgloss.Color("205") // Pink
	SecondaryColor = lipgloss.Color("241") // Gray
	SuccessColor   = lipgloss.Color("82")  // Green
	ErrorColor     = lipgloss.Color("196") // Red
	WarningColor   = lipgloss.Color("214") // Orange (pending rewrites)
	MutedColor     = lipgloss.Color("245") // Dimmed text
)

// Text styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			MarginTop(1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	DetailLabelStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true)

	DiffAddStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	DiffRemoveStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	DiffHunkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // Blue
)

// SpinnerStyle returns the style for the spinner.
func SpinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PrimaryColor)
}

// Badge styles for file status.
var (
	badgeBase = lipgloss.NewStyle().Padding(0, 1)

	BadgeOK = badgeBase.
		Foreground(lipgloss.Color("0")).
		Background(SuccessColor)

	BadgeRewrite = badgeBase.
			Foreground(lipgloss.Color("0")).
			Background(WarningColor)

	BadgeWritten = badgeBase.
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("35")) // Darker green

	BadgeError = badgeBase.
			Foreground(lipgloss.Color("255")).
			Background(ErrorColor)
)

// StatusBadge returns a styled badge for a file status.
func StatusBadge(status batch.Status, written bool) string {
	if written {
		return BadgeWritten.Render("WRITTEN")
	}

	switch status {
	case batch.StatusUnchanged:
		return BadgeOK.Render(status.Label())
	case batch.StatusChanged:
		return BadgeRewrite.Render(status.Label())
	case batch.StatusFailed:
		return BadgeError.Render(status.Label())
	default:
		return BadgeError.Render("???")
	}
}
