package extract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashcardsValidResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []domain.Flashcard
	}{
		{
			name: "bare array",
			text: `[{"term":"Paris","definition":"Capital of France"}]`,
			want: []domain.Flashcard{{Term: "Paris", Definition: "Capital of France"}},
		},
		{
			name: "array wrapped in prose and code fence",
			text: "Sure! Here are your cards:\n```json\n[{\"term\":\"CPU\",\"definition\":\"Central processing unit\"},\n {\"term\":\"RAM\",\"definition\":\"Random access memory\"}]\n```\nGood luck!",
			want: []domain.Flashcard{
				{Term: "CPU", Definition: "Central processing unit"},
				{Term: "RAM", Definition: "Random access memory"},
			},
		},
		{
			name: "order is preserved and duplicates kept",
			text: `[{"term":"b","definition":"2"},{"term":"a","definition":"1"},{"term":"b","definition":"2"}]`,
			want: []domain.Flashcard{
				{Term: "b", Definition: "2"},
				{Term: "a", Definition: "1"},
				{Term: "b", Definition: "2"},
			},
		},
		{
			name: "values are not trimmed",
			text: `[{"term":"  spaced  ","definition":" value "}]`,
			want: []domain.Flashcard{{Term: "  spaced  ", Definition: " value "}},
		},
		{
			name: "brackets inside strings do not end the list",
			text: `[{"term":"array [x]","definition":"uses ] and [ freely \" ]"}]`,
			want: []domain.Flashcard{{Term: "array [x]", Definition: `uses ] and [ freely " ]`}},
		},
		{
			name: "earlier non-JSON bracket is skipped",
			text: `[Note] The list: [{"term":"Go","definition":"A language"}]`,
			want: []domain.Flashcard{{Term: "Go", Definition: "A language"}},
		},
		{
			name: "quotes in prose before the list",
			text: `Here is the "deck" you asked for: [{"term":"Go","definition":"A language"}]`,
			want: []domain.Flashcard{{Term: "Go", Definition: "A language"}},
		},
		{
			name: "unclosed bracket before the list",
			text: `[draft [{"term":"Go","definition":"A language"}]`,
			want: []domain.Flashcard{{Term: "Go", Definition: "A language"}},
		},
		{
			name: "extra fields are ignored",
			text: `[{"term":"Go","definition":"A language","difficulty":3}]`,
			want: []domain.Flashcard{{Term: "Go", Definition: "A language"}},
		},
		{
			name: "empty list",
			text: `No terms found: []`,
			want: []domain.Flashcard{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cards, err := Flashcards(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, cards)
		})
	}
}

func TestFlashcardsFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		reason    error
		wantIndex int
	}{
		{name: "no list at all", text: "Sorry, I cannot help.", reason: ErrNoList, wantIndex: -1},
		{name: "empty text", text: "", reason: ErrNoList, wantIndex: -1},
		{name: "unclosed bracket", text: `[{"term":"a","definition":"b"}`, reason: ErrNoList, wantIndex: -1},
		{name: "balanced but not JSON", text: "[not json] and [also, not]", reason: ErrMalformed, wantIndex: -1},
		{name: "trailing comma", text: `[{"term":"a","definition":"b"},]`, reason: ErrMalformed, wantIndex: -1},
		{name: "missing term", text: `[{"definition":"b"}]`, reason: ErrInvalidShape, wantIndex: 0},
		{name: "missing definition", text: `[{"term":"a","definition":"b"},{"term":"c"}]`, reason: ErrInvalidShape, wantIndex: 1},
		{name: "empty term", text: `[{"term":"","definition":"b"}]`, reason: ErrInvalidShape, wantIndex: 0},
		{name: "null definition", text: `[{"term":"a","definition":null}]`, reason: ErrInvalidShape, wantIndex: 0},
		{name: "non-string term", text: `[{"term":42,"definition":"b"}]`, reason: ErrInvalidShape, wantIndex: 0},
		{name: "element is not an object", text: `["a","b"]`, reason: ErrInvalidShape, wantIndex: 0},
		{name: "null element", text: `[null]`, reason: ErrInvalidShape, wantIndex: 0},
		{name: "keys are case sensitive", text: `[{"Term":"a","Definition":"b"}]`, reason: ErrInvalidShape, wantIndex: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cards, err := Flashcards(tc.text)
			require.Error(t, err)
			assert.Nil(t, cards, "no cards may be returned on failure")

			assert.True(t, errors.Is(err, ErrExtraction), "error should match ErrExtraction")
			assert.True(t, errors.Is(err, tc.reason), "error should match %v, got %v", tc.reason, err)

			var exErr *ExtractionError
			require.True(t, errors.As(err, &exErr))
			assert.Equal(t, tc.wantIndex, exErr.Index)
		})
	}
}

func TestFindList(t *testing.T) {
	t.Parallel()

	region, err := FindList(`prefix [1, [2, 3]] suffix [4]`)
	require.NoError(t, err)
	assert.Equal(t, `[1, [2, 3]]`, region)
}

func TestFindListUnmatchedBracketFlood(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("[", 100_000) + `[{"term":"Go","definition":"A language"}]`

	start := time.Now()
	cards, err := Flashcards(text)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, []domain.Flashcard{{Term: "Go", Definition: "A language"}}, cards)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestFindListCandidateLimit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("[x] ", maxListCandidates) + `[{"term":"Go","definition":"A language"}]`

	_, err := FindList(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)

	region, err := FindList(strings.Repeat("[x] ", maxListCandidates-1) + `[1]`)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, region)
}

func TestExtractionErrorMessage(t *testing.T) {
	t.Parallel()

	err := newExtractionError(ErrInvalidShape, 2, "term is required")
	assert.Equal(t, "extraction failed: invalid shape: element 2: term is required", err.Error())

	err = newExtractionError(ErrNoList, -1, "")
	assert.Equal(t, "extraction failed: no list found", err.Error())
}

func TestExtractorInterface(t *testing.T) {
	t.Parallel()

	var x Extractor = New()
	cards, err := x.Extract(`[{"term":"t","definition":"d"}]`)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
