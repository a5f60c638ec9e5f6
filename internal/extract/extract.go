// Package extract recovers flashcards from loosely structured model output.
//
// Models are asked for a bare JSON array but often wrap it in prose or code
// fences. The extractor scans for the first balanced, parseable bracketed
// region, decodes it, and accepts it only if every element carries a
// non-empty "term" and "definition". It never returns a card with a missing
// field.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/flashgen/internal/domain"
)

// Extractor converts raw model output into flashcards.
type Extractor interface {
	Extract(text string) ([]domain.Flashcard, error)
}

// JSONExtractor is the default Extractor.
type JSONExtractor struct {
	validate *validator.Validate
}

// New returns a JSONExtractor.
func New() *JSONExtractor {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &JSONExtractor{validate: v}
}

var defaultExtractor = New()

// Flashcards extracts flashcards from text using the default extractor.
func Flashcards(text string) ([]domain.Flashcard, error) {
	return defaultExtractor.Extract(text)
}

// Extract implements Extractor.
func (x *JSONExtractor) Extract(text string) ([]domain.Flashcard, error) {
	region, err := FindList(text)
	if err != nil {
		return nil, err
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(region), &elements); err != nil {
		return nil, newExtractionError(ErrMalformed, -1, err.Error())
	}

	cards := make([]domain.Flashcard, 0, len(elements))
	for i, raw := range elements {
		card, err := x.decodeCard(raw)
		if err != nil {
			return nil, newExtractionError(ErrInvalidShape, i, err.Error())
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// decodeCard reads the exact "term" and "definition" keys of one element.
func (x *JSONExtractor) decodeCard(raw json.RawMessage) (domain.Flashcard, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Flashcard{}, errors.New("element is not an object")
	}

	var card domain.Flashcard
	if err := decodeString(fields, "term", &card.Term); err != nil {
		return domain.Flashcard{}, err
	}
	if err := decodeString(fields, "definition", &card.Definition); err != nil {
		return domain.Flashcard{}, err
	}

	if err := x.validate.Struct(card); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Flashcard{}, fmt.Errorf("%s is %s", verrs[0].Field(), verrs[0].Tag())
		}
		return domain.Flashcard{}, err
	}
	return card, nil
}

// decodeString copies fields[key] into dst. A missing key or JSON null
// leaves dst empty for validation to reject.
func decodeString(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s is not a string", key)
	}
	return nil
}

// maxListCandidates bounds how many balanced regions FindList tries to parse.
const maxListCandidates = 256

// FindList returns the first bracketed region of text that is balanced and
// valid JSON. Brackets inside JSON string literals do not count toward the
// balance. At most maxListCandidates regions are tried.
func FindList(text string) (string, error) {
	opens, closes := matchBrackets(text)

	tried := 0
	for i, start := range opens {
		end := closes[i]
		if end < 0 {
			continue
		}
		if tried == maxListCandidates {
			return "", newExtractionError(ErrMalformed, -1, "too many bracketed regions")
		}
		tried++

		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	if tried > 0 {
		return "", newExtractionError(ErrMalformed, -1, "")
	}
	return "", newExtractionError(ErrNoList, -1, "")
}

// matchBrackets pairs brackets in a single pass. opens holds the index of
// every '[' outside a string literal, in order; closes[i] is the index of the
// ']' closing opens[i], or -1 when it is never closed. String literals are
// only tracked inside an open bracket.
func matchBrackets(text string) (opens, closes []int) {
	var stack []int
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = len(stack) > 0
		case '[':
			stack = append(stack, len(opens))
			opens = append(opens, i)
			closes = append(closes, -1)
		case ']':
			if n := len(stack); n > 0 {
				closes[stack[n-1]] = i
				stack = stack[:n-1]
			}
		}
	}
	return opens, closes
}
