package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Palette shared by every view.
//
//nolint:gochecknoglobals // lipgloss colors are package-wide constants.
var (
	ColorHeader    = lipgloss.Color("#1A4D8F")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorHighlight = lipgloss.Color("#ED6A33")
	ColorMuted     = lipgloss.Color("240")
	ColorSuccess   = lipgloss.Color("#2A7432")
	ColorError     = lipgloss.Color("#ED2B2A")
)

// Text styles.
//
//nolint:gochecknoglobals // Reusable lipgloss styles.
var (
	HeaderStyle  = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	SummaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorHeader).
			Padding(0, 1)
)

// counts formats integers with thousands separators.
//
//nolint:gochecknoglobals // message.Printer is safe for concurrent use.
var counts = message.NewPrinter(language.English)

// IsTTY reports whether stdout is an interactive terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// FormatCount renders n with thousands separators, e.g. 12,500.
func FormatCount(n int) string {
	return counts.Sprintf("%d", n)
}
