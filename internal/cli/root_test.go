package cli

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/modeldoctor/internal/cli/config"
	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "modeldoctor", cmd.Use)
	for _, flag := range []string{"config", "target", "manifest", "models-dir", "state", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"audit", "rules", "history", "init", "version", "completion"} {
		assert.True(t, names[want], "command %q should be registered", want)
	}
}

func TestGetConfig_Default(t *testing.T) {
	cfg := GetConfig(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, []string{"models.yaml"}, cfg.Manifest)
	assert.Equal(t, config.DefaultEnv, cfg.Environment)
}

func TestGetConfig_FromContext(t *testing.T) {
	want := &config.Config{Environment: "prod"}
	got := GetConfig(config.WithConfig(context.Background(), want))
	assert.Same(t, want, got)
}

func TestGetRenderer_Default(t *testing.T) {
	r := GetRenderer(context.Background())
	require.NotNil(t, r)
	assert.NotEqual(t, output.ModeAuto, r.EffectiveMode())
}

func TestNewLogger(t *testing.T) {
	assert.False(t, newLogger(io.Discard, false).Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, newLogger(io.Discard, true).Enabled(context.Background(), slog.LevelDebug))
}
