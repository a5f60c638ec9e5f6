// Package domain contains the core entities of the flashcard study tool: the
// Flashcard value produced by extraction and the validation errors shared by
// the store, the extractor and the HTTP layer. It has no dependency on any
// transport, model provider or presentation code.
package domain
