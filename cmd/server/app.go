package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/events"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/platform/provider"
	"github.com/phrazzld/flashgen/internal/study"
)

// sessionKeyBytes is the size of the generated cookie signing key.
const sessionKeyBytes = 32

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	client   generation.Client
	prompts  *generation.PromptBuilder
	emitter  *events.InMemoryEmitter
	registry *study.Registry

	// sessionKey signs session cookies.
	sessionKey []byte
}

// newApplication creates the generation client named in the configuration and
// wires the rest of the application around it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	client, err := provider.NewClient(ctx, logger.With("component", "llm_client"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	logger.Info("LLM client initialized",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.ModelName)

	return newApplicationWithClient(cfg, logger, client)
}

// newApplicationWithClient wires the application around an existing client.
func newApplicationWithClient(
	cfg *config.Config,
	logger *slog.Logger,
	client generation.Client,
) (*application, error) {
	prompts, err := generation.NewPromptBuilder(cfg.LLM.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt template: %w", err)
	}

	key, err := sessionKey(cfg.Session, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config:     cfg,
		logger:     logger,
		client:     client,
		prompts:    prompts,
		emitter:    events.NewInMemoryEmitter(logger),
		sessionKey: key,
	}
	app.registry = study.NewRegistry(app.newStore, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// newStore is the registry's StoreFactory.
func (app *application) newStore(sessionID string) (*study.Store, error) {
	return study.NewStore(app.client, app.logger,
		study.WithPromptBuilder(app.prompts),
		study.WithEmitter(app.emitter),
		study.WithRequestTimeout(app.config.LLM.RequestTimeout),
		study.WithSource(sessionID))
}

// sessionKey returns the configured session secret, or a random key when none
// is set. Study state lives in memory, so sessions never need to outlive the
// process that signed them.
func sessionKey(cfg config.SessionConfig, logger *slog.Logger) ([]byte, error) {
	if cfg.Secret != "" {
		return []byte(cfg.Secret), nil
	}

	key := make([]byte, sessionKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	logger.Warn("no session secret configured; sessions will not survive a restart")
	return key, nil
}

// Run starts the application server and the idle-session sweeper, handling
// lifecycle and cleanup. It returns when ctx is done or the server fails.
func (app *application) Run(ctx context.Context) error {
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go app.registry.RunSweeper(sweepCtx, app.config.Session.SweepInterval, app.config.Session.IdleTimeout)

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup abandons in-flight generations.
func (app *application) cleanup() {
	removed := app.registry.CloseAll()
	app.logger.Info("Application shutdown completed", "closed_sessions", removed)
}
