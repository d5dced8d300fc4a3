package adapter

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdapter records Connect calls.
type stubAdapter struct {
	connectErr error
	connected  Config
}

func (s *stubAdapter) Connect(_ context.Context, cfg Config) error {
	s.connected = cfg
	return s.connectErr
}
func (s *stubAdapter) Close() error { return nil }
func (s *stubAdapter) TableExists(context.Context, string) (bool, error) {
	return true, nil
}
func (s *stubAdapter) GetTableMetadata(context.Context, string) (*Metadata, error) {
	return &Metadata{}, nil
}

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "duckdb", "error should list available adapters")
	assert.Contains(t, msg, "modeldoctor.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(_ *slog.Logger) Adapter { return &stubAdapter{} })

	assert.True(t, IsRegistered("test_adapter_internal"))
	assert.Contains(t, ListAdapters(), "test_adapter_internal")

	factory, ok := Get("test_adapter_internal")
	require.True(t, ok)
	assert.NotNil(t, factory(nil))
}

func TestNewAdapter(t *testing.T) {
	t.Run("empty type", func(t *testing.T) {
		_, err := NewAdapter(Config{}, nil)
		require.Error(t, err)
		assert.Equal(t, "adapter type not specified", err.Error())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewAdapter(Config{Type: "oracle"}, nil)
		var unknown *UnknownAdapterError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "oracle", unknown.Type)
	})
}

func TestOpen(t *testing.T) {
	stub := &stubAdapter{}
	Register("test_open", func(_ *slog.Logger) Adapter { return stub })

	a, err := Open(context.Background(), Config{Type: "test_open", Database: "db"}, nil)
	require.NoError(t, err)
	assert.Same(t, stub, a)
	assert.Equal(t, "db", stub.connected.Database)

	failing := &stubAdapter{connectErr: assert.AnError}
	Register("test_open_fail", func(_ *slog.Logger) Adapter { return failing })

	_, err = Open(context.Background(), Config{Type: "test_open_fail"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to connect to test_open_fail")
}

func TestConfigFromTarget(t *testing.T) {
	cfg := ConfigFromTarget(&core.TargetConfig{
		Type:     "postgres",
		Database: "app",
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		Schema:   "public",
		Options:  map[string]string{"sslmode": "require"},
	})

	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "app", cfg.Path)
	assert.Equal(t, "app", cfg.Database)
	assert.Equal(t, "u", cfg.Username)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "require", cfg.Options["sslmode"])
}
