package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"
)

//go:embed templates/flashcards.tmpl
var templateFS embed.FS

const defaultTemplateName = "templates/flashcards.tmpl"

// promptData represents the data passed to the prompt template
type promptData struct {
	SourceText string
}

// PromptBuilder renders the flashcard extraction prompt.
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses the prompt template. An empty path selects the
// built-in template; otherwise the file at path is read and parsed.
func NewPromptBuilder(path string) (*PromptBuilder, error) {
	if path == "" {
		tmpl, err := template.ParseFS(templateFS, defaultTemplateName)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse built-in prompt template: %v", ErrInvalidConfig, err)
		}
		return &PromptBuilder{tmpl: tmpl}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template: %v", ErrInvalidConfig, err)
	}

	tmpl, err := template.New("flashcards").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// MustDefaultPromptBuilder returns a builder for the built-in template.
func MustDefaultPromptBuilder() *PromptBuilder {
	b, err := NewPromptBuilder("")
	if err != nil {
		// ALLOW-PANIC: the embedded template is part of the binary
		panic(err)
	}
	return b
}

// Build renders the prompt for sourceText.
func (b *PromptBuilder) Build(sourceText string) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, promptData{SourceText: sourceText}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
