package extract

import (
	"errors"
	"fmt"
)

// Extraction failure reasons. Each ExtractionError wraps exactly one of them.
var (
	// ErrExtraction is matched by every ExtractionError.
	ErrExtraction = errors.New("extraction failed")

	// ErrNoList means the text holds no balanced bracketed region.
	ErrNoList = errors.New("no list found")

	// ErrMalformed means bracketed regions exist but none is a well-formed list.
	ErrMalformed = errors.New("malformed structure")

	// ErrInvalidShape means the list parsed but an element is not a
	// term/definition record with both fields present.
	ErrInvalidShape = errors.New("invalid shape")
)

// ExtractionError reports why model output could not be turned into flashcards.
type ExtractionError struct {
	// Reason is one of ErrNoList, ErrMalformed or ErrInvalidShape.
	Reason error
	// Index is the offending list element for ErrInvalidShape, -1 otherwise.
	Index int
	// Detail carries diagnostic context for logs. It is never shown to users.
	Detail string
}

func newExtractionError(reason error, index int, detail string) *ExtractionError {
	return &ExtractionError{Reason: reason, Index: index, Detail: detail}
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("%v: %v", ErrExtraction, e.Reason)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: element %d", msg, e.Index)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

// Unwrap exposes the failure reason.
func (e *ExtractionError) Unwrap() error {
	return e.Reason
}

// Is makes every ExtractionError match ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}
