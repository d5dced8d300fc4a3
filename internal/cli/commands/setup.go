package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/modeldoctor/internal/cli/config"
	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	"github.com/leapstack-labs/modeldoctor/internal/engine"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return nil, nil, err
	}

	eng, err := CreateEngine(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		if err := eng.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close engine", slog.String("error", err.Error()))
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need the models or the database.
func NewCommandContextWithoutEngine(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// getConfig returns the configuration loaded by the root command. Commands
// run on their own (tests) load it from the working directory and their flags.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", cmd.Flags())
}

// rendererFor returns r unless format names a different mode.
func rendererFor(cmd *cobra.Command, r *output.Renderer, format string) *output.Renderer {
	if format == "" {
		return r
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
}

// CreateEngine creates an engine from the configuration, creating the state
// directory when history is enabled.
func CreateEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	if !cfg.NoHistory {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	return engine.New(engine.Config{
		Manifests:   cfg.Manifest,
		ModelsDir:   cfg.ModelsDir,
		StatePath:   cfg.StatePath,
		NoHistory:   cfg.NoHistory,
		Environment: cfg.Environment,
		Target:      cfg.Target,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	})
}
