package study

import "github.com/phrazzld/flashgen/internal/domain"

// User-facing messages set on State.Error.
const (
	// MsgEmptyInput is shown when Generate is called with blank input text.
	MsgEmptyInput = "Please enter some text to generate flashcards."

	// MsgGenerationFailed is shown for every request or extraction failure.
	// The underlying cause is logged, never displayed.
	MsgGenerationFailed = "Failed to generate flashcards. The AI's response might not be in the correct format. Please try again or adjust your text."
)

// StudyMode is the one-card-at-a-time review cursor.
type StudyMode struct {
	IsOpen       bool `json:"is_open"`
	CurrentIndex int  `json:"current_index"`
}

// State is a point-in-time copy of a Store. An empty Error means no error.
type State struct {
	InputText  string             `json:"input_text"`
	Flashcards []domain.Flashcard `json:"flashcards"`
	IsLoading  bool               `json:"is_loading"`
	Error      string             `json:"error"`
	StudyMode  StudyMode          `json:"study_mode"`
}

// InitialState returns the state of a freshly created or reset store.
func InitialState() State {
	return State{
		InputText:  "",
		Flashcards: []domain.Flashcard{},
		IsLoading:  false,
		Error:      "",
		StudyMode:  StudyMode{IsOpen: false, CurrentIndex: 0},
	}
}

// Clone returns a copy of s that shares no memory with it.
func (s State) Clone() State {
	s.Flashcards = domain.CloneFlashcards(s.Flashcards)
	return s
}

// HasError reports whether an error message is set.
func (s State) HasError() bool {
	return s.Error != ""
}

// CurrentCard returns the card under the study cursor. The second result is
// false when study mode is closed or the deck is empty.
func (s State) CurrentCard() (domain.Flashcard, bool) {
	if !s.StudyMode.IsOpen {
		return domain.Flashcard{}, false
	}
	i := s.StudyMode.CurrentIndex
	if i < 0 || i >= len(s.Flashcards) {
		return domain.Flashcard{}, false
	}
	return s.Flashcards[i], true
}

// Progress returns the 1-based position of the cursor and the deck size.
// An empty deck yields (0, 0).
func (s State) Progress() (position, total int) {
	total = len(s.Flashcards)
	if total == 0 {
		return 0, 0
	}
	return s.StudyMode.CurrentIndex + 1, total
}

// ProgressFraction is Progress as a value in [0, 1] for progress bars.
func (s State) ProgressFraction() float64 {
	position, total := s.Progress()
	if total == 0 {
		return 0
	}
	return float64(position) / float64(total)
}

// AtFirstCard reports whether PrevCard would leave the cursor unchanged.
func (s State) AtFirstCard() bool {
	return s.StudyMode.CurrentIndex <= 0
}

// AtLastCard reports whether NextCard would leave the cursor unchanged.
func (s State) AtLastCard() bool {
	return s.StudyMode.CurrentIndex >= len(s.Flashcards)-1
}
