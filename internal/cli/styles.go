package cli

import (
	"github.com/charmbracelet/lipgloss"

	"daybook/internal/core"
)

var (
	PrimaryColor = lipgloss.Color("#4ECDC4")
	SuccessColor = lipgloss.Color("#2ECC71")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
)

func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

// StatusStyle colours an account status: paid green, partial yellow, pending red.
func StatusStyle(s core.Status) lipgloss.Style {
	switch s {
	case core.StatusPaid:
		return SuccessStyle
	case core.StatusPartial:
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// MoneyStyle colours negative amounts red and others green.
func MoneyStyle(m core.Money) lipgloss.Style {
	if m.Cents < 0 {
		return ErrorStyle
	}
	return SuccessStyle
}
