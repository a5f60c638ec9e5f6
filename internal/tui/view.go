package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	parts := []string{titleStyle.Render("Flashcard Generator")}

	if card, ok := m.state.CurrentCard(); ok {
		face := card.Term
		side := "term"
		if m.flipped {
			face = card.Definition
			side = "definition"
		}
		position, total := m.state.Progress()
		parts = append(parts,
			helperStyle.Render(fmt.Sprintf("Card %d of %d (%s)", position, total, side)),
			studyCardStyle.Width(m.width-6).Height(studyCardHeight).Render(face),
			m.progress.ViewAs(m.state.ProgressFraction()),
			helperStyle.Render(m.studyHelp()),
		)
		return joinNonEmpty(parts)
	}

	parts = append(parts, m.input.View())
	if m.loading() {
		parts = append(parts, fmt.Sprintf("%s Generating flashcards…", m.spinner.View()))
	}
	if m.state.HasError() {
		parts = append(parts, errorStyle.Width(m.width).Render(m.state.Error))
	}
	if len(m.state.Flashcards) > 0 {
		parts = append(parts,
			headerStyle.Render(fmt.Sprintf("Your Flashcards (%d)", len(m.state.Flashcards))),
			m.deckGrid())
	}
	parts = append(parts, helperStyle.Render(m.deckHelp()))
	return joinNonEmpty(parts)
}

// deckGrid lays the cards out in as many columns as the width allows.
func (m *model) deckGrid() string {
	columns := max(1, m.width/(cardColumnWidth+2))
	cellWidth := cardColumnWidth

	var rows []string
	for start := 0; start < len(m.state.Flashcards); start += columns {
		end := min(start+columns, len(m.state.Flashcards))
		cells := make([]string, 0, end-start)
		for _, card := range m.state.Flashcards[start:end] {
			cells = append(cells, gridCellStyle.Width(cellWidth).Render(termStyle.Render(card.Term)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *model) studyHelp() string {
	return "space flip · ←/→ navigate · esc close · ctrl+r reset · ctrl+c quit"
}

func (m *model) deckHelp() string {
	if m.focus == focusInput {
		return "ctrl+g generate · tab/esc leave input · ctrl+r reset · ctrl+c quit"
	}
	if len(m.state.Flashcards) > 0 {
		return "s study · i edit input · ctrl+g generate · ctrl+r reset · q quit"
	}
	return "i edit input · ctrl+g generate · ctrl+r reset · q quit"
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n\n")
}
