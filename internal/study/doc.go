// Package study holds the state of one flashcard study session.
//
// A Store owns the pasted input text, the generated deck, the loading and
// error flags and the study-mode cursor. It is mutated only through its named
// actions (SetInputText, Generate, OpenStudy, CloseStudy, NextCard, PrevCard,
// Reset); presentation code reads immutable snapshots.
//
// Generate is the only action that blocks. It sends a prompt through a
// generation.Client, extracts flashcards from the streamed response and then
// commits either the deck or a fixed user-facing error message. Every call
// takes a fresh request token; a later Generate or a Reset supersedes any
// request still in flight, whose result is then discarded.
//
// Registry maps browser session ids to stores for the HTTP server.
package study
