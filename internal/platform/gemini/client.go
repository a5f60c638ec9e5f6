package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/generation"
	"google.golang.org/genai"
)

// ProviderName identifies this adapter in errors and logs.
const ProviderName = "gemini"

// streamFunc matches genai.Models.GenerateContentStream.
type streamFunc func(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) iter.Seq2[*genai.GenerateContentResponse, error]

// Client implements generation.Client using the Gemini streaming API.
type Client struct {
	logger        *slog.Logger
	model         string
	genConfig     *genai.GenerateContentConfig
	stream        streamFunc
	conversations generation.Conversations
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL string
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

// NewClient creates a Gemini client from the LLM configuration.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newClient(logger, cfg, client.Models.GenerateContentStream), nil
}

func newClient(logger *slog.Logger, cfg config.LLMConfig, stream streamFunc) *Client {
	genConfig := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		temperature := cfg.Temperature
		genConfig.Temperature = &temperature
	}
	if cfg.MaxOutputTokens > 0 {
		genConfig.MaxOutputTokens = int32(cfg.MaxOutputTokens)
	}

	return &Client{
		logger:    logger.With(slog.String("component", "gemini_client"), slog.String("model", cfg.ModelName)),
		model:     cfg.ModelName,
		genConfig: genConfig,
		stream:    stream,
	}
}

// SendPrompt implements generation.Client.
func (c *Client) SendPrompt(
	ctx context.Context,
	promptText, conversationID string,
	onChunk generation.ChunkHandler,
) error {
	contents := c.buildContents(promptText, conversationID)

	c.logger.DebugContext(ctx, "starting Gemini stream",
		slog.Int("prompt_length", len(promptText)),
		slog.Int("history_turns", len(contents)-1))

	var reply []byte
	chunks := 0
	for resp, err := range c.stream(ctx, c.model, contents, c.genConfig) {
		if err != nil {
			return generation.NewRequestError(ProviderName, err)
		}
		if blocked := blockReason(resp); blocked != "" {
			c.logger.WarnContext(ctx, "Gemini response blocked", slog.String("reason", blocked))
			return generation.NewRequestError(ProviderName,
				fmt.Errorf("%w: %s", generation.ErrContentBlocked, blocked))
		}

		text := responseText(resp)
		if text == "" {
			continue
		}
		chunks++
		reply = append(reply, text...)
		if err := onChunk(text); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return generation.NewRequestError(ProviderName, err)
	}

	c.conversations.Record(conversationID, promptText, string(reply))
	c.logger.DebugContext(ctx, "Gemini stream finished", slog.Int("chunks", chunks))
	return nil
}

func (c *Client) buildContents(promptText, conversationID string) []*genai.Content {
	history := c.conversations.History(conversationID)
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == generation.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}
	return append(contents, genai.NewContentFromText(promptText, genai.RoleUser))
}

// responseText concatenates the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text += part.Text
	}
	return text
}

// blockReason reports why the prompt or response was blocked, or "".
func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return string(fb.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return string(genai.FinishReasonSafety)
	}
	return ""
}
