package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/generation"
	openaiapi "github.com/sashabaranov/go-openai"
)

// ProviderName identifies this adapter in errors and logs.
const ProviderName = "openai"

// Client implements generation.Client with streamed chat completions.
type Client struct {
	api           *openaiapi.Client
	logger        *slog.Logger
	model         string
	temperature   float32
	maxTokens     int
	conversations generation.Conversations
}

// NewClient creates an OpenAI client from the LLM configuration.
func NewClient(logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	apiConfig := openaiapi.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		apiConfig.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}

	return &Client{
		api:         openaiapi.NewClientWithConfig(apiConfig),
		logger:      logger.With(slog.String("component", "openai_client"), slog.String("model", cfg.ModelName)),
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
	}, nil
}

// SendPrompt implements generation.Client.
func (c *Client) SendPrompt(
	ctx context.Context,
	promptText, conversationID string,
	onChunk generation.ChunkHandler,
) error {
	req := openaiapi.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.buildMessages(promptText, conversationID),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      true,
	}

	c.logger.DebugContext(ctx, "starting OpenAI stream",
		slog.Int("prompt_length", len(promptText)),
		slog.Int("history_turns", len(req.Messages)-1))

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return generation.NewRequestError(ProviderName, err)
	}
	defer stream.Close()

	var reply strings.Builder
	chunks := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return generation.NewRequestError(ProviderName, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}

		choice := resp.Choices[0]
		if choice.FinishReason == openaiapi.FinishReasonContentFilter {
			c.logger.WarnContext(ctx, "OpenAI response blocked by content filter")
			return generation.NewRequestError(ProviderName,
				fmt.Errorf("%w: %s", generation.ErrContentBlocked, choice.FinishReason))
		}
		if choice.Delta.Content == "" {
			continue
		}

		chunks++
		reply.WriteString(choice.Delta.Content)
		if err := onChunk(choice.Delta.Content); err != nil {
			return err
		}
	}

	c.conversations.Record(conversationID, promptText, reply.String())
	c.logger.DebugContext(ctx, "OpenAI stream finished", slog.Int("chunks", chunks))
	return nil
}

func (c *Client) buildMessages(promptText, conversationID string) []openaiapi.ChatCompletionMessage {
	history := c.conversations.History(conversationID)
	messages := make([]openaiapi.ChatCompletionMessage, 0, len(history)+1)
	for _, turn := range history {
		role := openaiapi.ChatMessageRoleUser
		if turn.Role == generation.RoleModel {
			role = openaiapi.ChatMessageRoleAssistant
		}
		messages = append(messages, openaiapi.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	return append(messages, openaiapi.ChatCompletionMessage{
		Role:    openaiapi.ChatMessageRoleUser,
		Content: promptText,
	})
}
