// Package provider selects the text-generation backend named in the
// configuration.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/platform/gemini"
	"github.com/phrazzld/flashgen/internal/platform/openai"
)

// NewClient creates the generation client for cfg.Provider.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		var opts []gemini.Option
		if cfg.GeminiBaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.GeminiBaseURL))
		}
		client, err := gemini.NewClient(ctx, logger, cfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(logger, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}
