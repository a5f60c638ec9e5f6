package study

import "errors"

var (
	// ErrSuperseded is returned by Generate when a later Generate or a Reset
	// replaced the request before it completed. Its result was discarded.
	ErrSuperseded = errors.New("generation superseded by a newer request")

	// ErrGenerationFailed is matched by every error Generate returns after a
	// request or extraction failure. The cause is wrapped alongside it.
	ErrGenerationFailed = errors.New("flashcard generation failed")

	// ErrInvalidSession is returned by the Registry for an empty session id.
	ErrInvalidSession = errors.New("invalid session id")
)
