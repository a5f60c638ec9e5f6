// Package main runs the terminal study client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/platform/provider"
	"github.com/phrazzld/flashgen/internal/study"
	"github.com/phrazzld/flashgen/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./config.yaml when present)")
	logPath := flag.String("log-file", "", "write JSON logs to this file instead of discarding them")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	if err := run(*configPath, *logPath, !*noAltScreen); err != nil {
		fmt.Fprintln(os.Stderr, "flashgen:", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string, altScreen bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, closeLog, err := openLogger(logPath, cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	client, err := provider.NewClient(ctx, log.With("component", "llm_client"), cfg.LLM)
	if err != nil {
		return err
	}
	prompts, err := generation.NewPromptBuilder(cfg.LLM.PromptTemplatePath)
	if err != nil {
		return fmt.Errorf("failed to load prompt template: %w", err)
	}
	store, err := study.NewStore(client, log,
		study.WithPromptBuilder(prompts),
		study.WithRequestTimeout(cfg.LLM.RequestTimeout))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []tea.ProgramOption{}
	if altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(tui.New(tui.Config{Store: store}), opts...).Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// openLogger never writes to the terminal the program draws on.
func openLogger(path, level string) (*slog.Logger, func(), error) {
	if path == "" {
		return logger.Discard(), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l, err := logger.New(f, level)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return l, func() { _ = f.Close() }, nil
}
