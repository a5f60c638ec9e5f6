package tui

import "github.com/charmbracelet/lipgloss"

type focus int

const (
	focusInput focus = iota
	focusDeck
)

const (
	inputPlaceholder = "Paste or type the text to turn into flashcards…"
	inputCharLimit   = 100_000
	minContentWidth  = 40
	cardColumnWidth  = 28
	studyCardHeight  = 7
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helperStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	termStyle   = lipgloss.NewStyle().Bold(true)

	gridCellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	studyCardStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Align(lipgloss.Center, lipgloss.Center)
)
