package generation

import (
	"context"
	"strings"
)

// ChunkHandler receives one piece of streamed model output. Returning an
// error stops the stream and fails the request.
type ChunkHandler func(chunk string) error

// Client defines the interface for sending a prompt to a text-generation service.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Client interface {
	// SendPrompt sends promptText to the service and invokes onChunk for every
	// piece of output, in the order the service produced it.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - promptText: The full prompt to send
	//   - conversationID: Optional conversation to continue; empty starts a new one
	//   - onChunk: Called sequentially with each output chunk
	//
	// Returns:
	//   - A *RequestError if the service could not be reached or failed
	//   - Any error returned by onChunk
	SendPrompt(ctx context.Context, promptText, conversationID string, onChunk ChunkHandler) error
}

// Accumulator appends streamed chunks in arrival order.
// It is not safe for concurrent use; chunks arrive on one goroutine.
type Accumulator struct {
	buf    strings.Builder
	chunks int
}

// Append is a ChunkHandler that records chunk.
func (a *Accumulator) Append(chunk string) error {
	a.buf.WriteString(chunk)
	a.chunks++
	return nil
}

// String returns everything appended so far.
func (a *Accumulator) String() string {
	return a.buf.String()
}

// Chunks reports how many chunks were appended.
func (a *Accumulator) Chunks() int {
	return a.chunks
}

// Collect sends promptText through client and returns the concatenation of
// every streamed chunk. If the call fails, no partial text is returned.
func Collect(ctx context.Context, client Client, promptText string) (string, error) {
	if strings.TrimSpace(promptText) == "" {
		return "", ErrEmptyPrompt
	}

	var acc Accumulator
	if err := client.SendPrompt(ctx, promptText, "", acc.Append); err != nil {
		return "", err
	}
	return acc.String(), nil
}
