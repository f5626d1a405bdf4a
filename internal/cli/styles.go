// Package cli renders terminal output for the tally commands using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	accent = lipgloss.Color("#5B8DEF")
	teal   = lipgloss.Color("#4ECDC4")
	amber  = lipgloss.Color("#FFE66D")
	red    = lipgloss.Color("#FF6B6B")
	mint   = lipgloss.Color("#95E1D3")
	gray   = lipgloss.Color("#666666")
)

// Text styles shared by the commands.
var (
	SuccessStyle  = lipgloss.NewStyle().Foreground(teal)
	WarningStyle  = lipgloss.NewStyle().Foreground(amber)
	ErrorStyle    = lipgloss.NewStyle().Foreground(red)
	InfoStyle     = lipgloss.NewStyle().Foreground(mint)
	SubtitleStyle = lipgloss.NewStyle().Foreground(gray).MarginBottom(1)

	// TableHeaderStyle is applied to the header row of tabwriter tables.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))

	// Balance styles: a positive balance is money the customer owes.
	OwedStyle    = lipgloss.NewStyle().Foreground(red).Bold(true)
	CreditStyle  = lipgloss.NewStyle().Foreground(teal)
	SettledStyle = lipgloss.NewStyle().Foreground(gray)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

// Message icons.
const (
	SuccessIcon = "✓"
	WarningIcon = "⚠️"
	errorIcon   = "✗"
	infoIcon    = "ℹ️"
	ledgerIcon  = "📒"
)

func iconLine(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess renders a confirmation line.
func FormatSuccess(message string) string { return iconLine(SuccessStyle, SuccessIcon, message) }

// FormatWarning renders a warning line.
func FormatWarning(message string) string { return iconLine(WarningStyle, WarningIcon, message) }

// FormatError renders an error line.
func FormatError(message string) string { return iconLine(ErrorStyle, errorIcon, message) }

// FormatInfo renders an informational line.
func FormatInfo(message string) string { return iconLine(InfoStyle, infoIcon, message) }

// FormatTitle renders a section heading.
func FormatTitle(title string) string { return iconLine(titleStyle, ledgerIcon, title) }

// RenderBox frames content under a heading.
func RenderBox(title, content string) string {
	heading := titleStyle.UnsetMargins().Render(ledgerIcon + " " + title)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, "", content))
}
