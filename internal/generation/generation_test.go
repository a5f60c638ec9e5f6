package generation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkClient replays fixed chunks, optionally failing after them.
type chunkClient struct {
	chunks []string
	err    error
	prompt string
}

func (c *chunkClient) SendPrompt(
	_ context.Context,
	promptText, _ string,
	onChunk generation.ChunkHandler,
) error {
	c.prompt = promptText
	for _, chunk := range c.chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return c.err
}

func TestCollectConcatenatesChunksInOrder(t *testing.T) {
	t.Parallel()

	client := &chunkClient{chunks: []string{`[{"term":`, `"Paris",`, `"definition":"Capital of France"}]`}}

	text, err := generation.Collect(context.Background(), client, "prompt")

	require.NoError(t, err)
	assert.Equal(t, `[{"term":"Paris","definition":"Capital of France"}]`, text)
	assert.Equal(t, "prompt", client.prompt)
}

func TestCollectDiscardsPartialOutputOnFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	client := &chunkClient{
		chunks: []string{"[{"},
		err:    generation.NewRequestError("test", cause),
	}

	text, err := generation.Collect(context.Background(), client, "prompt")

	require.Error(t, err)
	assert.Empty(t, text, "partial output must not be returned")
	assert.True(t, errors.Is(err, generation.ErrRequest))
	assert.True(t, errors.Is(err, cause))
}

func TestCollectRejectsEmptyPrompt(t *testing.T) {
	t.Parallel()

	client := &chunkClient{}
	_, err := generation.Collect(context.Background(), client, "  ")

	assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
	assert.Empty(t, client.prompt, "client must not be called")
}

func TestAccumulator(t *testing.T) {
	t.Parallel()

	var acc generation.Accumulator
	require.NoError(t, acc.Append("a"))
	require.NoError(t, acc.Append(""))
	require.NoError(t, acc.Append("b"))

	assert.Equal(t, "ab", acc.String())
	assert.Equal(t, 3, acc.Chunks())
}

func TestRequestErrorMessage(t *testing.T) {
	t.Parallel()

	err := generation.NewRequestError("gemini", errors.New("boom"))
	assert.Contains(t, err.Error(), "gemini")
	assert.Contains(t, err.Error(), "boom")

	var reqErr *generation.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "gemini", reqErr.Provider)
}

func TestDefaultPromptBuilder(t *testing.T) {
	t.Parallel()

	builder, err := generation.NewPromptBuilder("")
	require.NoError(t, err)

	prompt, err := builder.Build("Paris is the capital of France.")
	require.NoError(t, err)

	assert.Contains(t, prompt, "Paris is the capital of France.")
	assert.Contains(t, prompt, "JSON array")
	assert.Contains(t, prompt, `"term"`)
	assert.Contains(t, prompt, `"definition"`)
}

func TestPromptBuilderFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Cards for: {{.SourceText}}"), 0o600))

	builder, err := generation.NewPromptBuilder(path)
	require.NoError(t, err)

	prompt, err := builder.Build("mitochondria")
	require.NoError(t, err)
	assert.Equal(t, "Cards for: mitochondria", prompt)
}

func TestPromptBuilderInvalidFile(t *testing.T) {
	t.Parallel()

	_, err := generation.NewPromptBuilder(filepath.Join(t.TempDir(), "missing.tmpl"))
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	path := filepath.Join(t.TempDir(), "broken.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.SourceText"), 0o600))
	_, err = generation.NewPromptBuilder(path)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestConversations(t *testing.T) {
	t.Parallel()

	var convs generation.Conversations

	assert.Empty(t, convs.History("c1"))

	convs.Record("", "ignored", "ignored")
	assert.Empty(t, convs.History(""))

	convs.Record("c1", "first prompt", "first reply")
	assert.Equal(t, []generation.Turn{
		{Role: generation.RoleUser, Text: "first prompt"},
		{Role: generation.RoleModel, Text: "first reply"},
	}, convs.History("c1"))
	assert.Empty(t, convs.History("c2"))

	history := convs.History("c1")
	history[0].Text = "mutated"
	assert.Equal(t, "first prompt", convs.History("c1")[0].Text)

	for i := 0; i < 30; i++ {
		convs.Record("c1", "p", "r")
	}
	assert.Len(t, convs.History("c1"), 20)

	convs.Forget("c1")
	assert.Empty(t, convs.History("c1"))
}
