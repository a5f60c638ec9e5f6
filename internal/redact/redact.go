// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Provider errors can echo
// API keys, request URLs and local file paths, and model output can echo whatever
// the user pasted; this package keeps both out of logs in raw form.
package redact

import (
	"regexp"
	"unicode/utf8"
)

// Constants for redaction placeholders
const (
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"

	// TruncationMarker is appended to excerpts that were cut short.
	TruncationMarker = "…[TRUNCATED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order; specific key formats run before the generic one.
var rules = []rule{
	// Google API keys (Gemini)
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), RedactedKeyPlaceholder},
	// OpenAI-style secret keys
	{regexp.MustCompile(`sk-[A-Za-z0-9_\-]{16,}`), RedactedKeyPlaceholder},
	// Authorization headers
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-~+/]+=*`), "Bearer " + RedactedCredentialPlaceholder},
	// Keys passed as query parameters, e.g. ...:streamGenerateContent?key=...
	{regexp.MustCompile(`(?i)([?&](?:key|api_key|access_token)=)[^&\s"]+`), "${1}" + RedactedKeyPlaceholder},
	// Generic key/secret assignments
	{
		regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		"${1}${2}" + RedactedKeyPlaceholder,
	},
	// Stack trace fragments
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), RedactedStackPlaceholder},
	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	// File paths
	{regexp.MustCompile(`(^|\s)(?:/[\w.-]+){2,}`), "${1}" + RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(\\[^\\\s]+)+`), RedactedPathPlaceholder},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// Excerpt redacts s and cuts it to at most maxRunes runes, appending
// TruncationMarker when anything was dropped. It is meant for logging a
// bounded slice of model output.
func Excerpt(s string, maxRunes int) string {
	s = String(s)
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxRunes]) + TruncationMarker
}
