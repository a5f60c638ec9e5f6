package domain

import "strings"

// Flashcard is a term/definition pair shown to the learner.
// It is a plain value: two cards are equal when both fields are equal.
type Flashcard struct {
	Term       string `json:"term"       validate:"required"`
	Definition string `json:"definition" validate:"required"`
}

// NewFlashcard builds a Flashcard, rejecting an empty term or definition.
// The values are kept exactly as given; no trimming is applied.
func NewFlashcard(term, definition string) (Flashcard, error) {
	card := Flashcard{Term: term, Definition: definition}
	if err := card.Validate(); err != nil {
		return Flashcard{}, err
	}
	return card, nil
}

// Validate checks that both sides of the card are present.
func (f Flashcard) Validate() error {
	if f.Term == "" {
		return NewValidationError("term", "cannot be empty", ErrEmptyContent)
	}
	if f.Definition == "" {
		return NewValidationError("definition", "cannot be empty", ErrEmptyContent)
	}
	return nil
}

// IsBlank reports whether s holds nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CloneFlashcards returns an independent copy of cards. A nil or empty input
// yields an empty, non-nil slice so JSON encodes it as [].
func CloneFlashcards(cards []Flashcard) []Flashcard {
	out := make([]Flashcard, len(cards))
	copy(out, cards)
	return out
}
