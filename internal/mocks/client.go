package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/flashgen/internal/generation"
)

// MockClient implements generation.Client for testing
type MockClient struct {
	// SendPromptFn allows test cases to mock the SendPrompt behavior
	SendPromptFn func(ctx context.Context, promptText, conversationID string, onChunk generation.ChunkHandler) error

	// Default behavior: each entry of Chunks is streamed in order, then Err is returned
	Chunks []string
	Err    error

	// Call tracking for verification
	SendPromptCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times SendPrompt was called
		Count int

		// Prompts contains all prompts passed to SendPrompt calls
		Prompts []string

		// ConversationIDs contains all conversation ids passed to SendPrompt calls
		ConversationIDs []string
	}
}

// SendPrompt implements the generation.Client interface
func (m *MockClient) SendPrompt(
	ctx context.Context,
	promptText, conversationID string,
	onChunk generation.ChunkHandler,
) error {
	// Track call details for verification
	m.SendPromptCalls.mu.Lock()
	m.SendPromptCalls.Count++
	m.SendPromptCalls.Prompts = append(m.SendPromptCalls.Prompts, promptText)
	m.SendPromptCalls.ConversationIDs = append(m.SendPromptCalls.ConversationIDs, conversationID)
	m.SendPromptCalls.mu.Unlock()

	// Use custom function if provided
	if m.SendPromptFn != nil {
		return m.SendPromptFn(ctx, promptText, conversationID, onChunk)
	}

	for _, chunk := range m.Chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return m.Err
}

// CallCount returns how many times SendPrompt was called
func (m *MockClient) CallCount() int {
	m.SendPromptCalls.mu.Lock()
	defer m.SendPromptCalls.mu.Unlock()
	return m.SendPromptCalls.Count
}

// LastPrompt returns the prompt of the most recent call, or "" if there was none
func (m *MockClient) LastPrompt() string {
	m.SendPromptCalls.mu.Lock()
	defer m.SendPromptCalls.mu.Unlock()
	if len(m.SendPromptCalls.Prompts) == 0 {
		return ""
	}
	return m.SendPromptCalls.Prompts[len(m.SendPromptCalls.Prompts)-1]
}

// NewMockClientWithResponse creates a MockClient that streams response as a single chunk
func NewMockClientWithResponse(response string) *MockClient {
	return &MockClient{
		Chunks: []string{response},
	}
}

// NewMockClientWithChunks creates a MockClient that streams the given chunks in order
func NewMockClientWithChunks(chunks ...string) *MockClient {
	return &MockClient{
		Chunks: chunks,
	}
}

// NewMockClientWithError creates a MockClient whose request fails with a RequestError wrapping err
func NewMockClientWithError(err error) *MockClient {
	return &MockClient{
		Err: generation.NewRequestError("mock", err),
	}
}

// MockClientWithContentBlocked creates a MockClient that simulates content being blocked
func MockClientWithContentBlocked() *MockClient {
	return NewMockClientWithError(generation.ErrContentBlocked)
}

// Reset resets the call tracking state
func (m *MockClient) Reset() {
	m.SendPromptCalls.mu.Lock()
	defer m.SendPromptCalls.mu.Unlock()

	m.SendPromptCalls.Count = 0
	m.SendPromptCalls.Prompts = nil
	m.SendPromptCalls.ConversationIDs = nil
}
