// Package engine orchestrates an audit run.
// It loads declared models, completes them from the target database,
// evaluates the enabled rules and records the run in the state store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/modeldoctor/internal/loader"
	"github.com/leapstack-labs/modeldoctor/internal/state"
	"github.com/leapstack-labs/modeldoctor/pkg/adapter"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// DefaultEnvironment is used when no environment is configured.
const DefaultEnvironment = "dev"

// Engine orchestrates audit runs.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	hasTarget   bool
	dbConnected bool
	dbMu        sync.Mutex

	// Structured logger
	logger *slog.Logger

	store       state.Store
	manifests   []string
	modelsDir   string
	environment string
	concurrency int
}

// Config holds engine configuration.
type Config struct {
	// Manifests are the YAML manifest files to load
	Manifests []string
	// ModelsDir is a directory of Go model structs (optional)
	ModelsDir string
	// StatePath is the path to the SQLite state database
	StatePath string
	// NoHistory disables the state store; runs are not recorded
	NoHistory bool
	// Environment is the current environment (dev, staging, prod)
	Environment string
	// Target describes the database to introspect (optional)
	Target *core.TargetConfig
	// Concurrency bounds parallel table introspection
	Concurrency int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Store overrides the SQLite state store (tests)
	Store state.Store
}

// New creates a new engine with lazy database connection.
// The database adapter is only connected when models are loaded.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine",
		slog.Any("manifests", cfg.Manifests),
		slog.String("models_dir", cfg.ModelsDir),
		slog.String("environment", cfg.Environment))

	store := cfg.Store
	if store == nil && !cfg.NoHistory {
		sqlite := state.NewSQLiteStore(logger)
		if err := sqlite.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		if err := sqlite.Migrate(); err != nil {
			_ = sqlite.Close()
			return nil, fmt.Errorf("failed to initialize state schema: %w", err)
		}
		store = sqlite
	}

	env := cfg.Environment
	if env == "" {
		env = DefaultEnvironment
	}

	e := &Engine{
		logger:      logger,
		store:       store,
		manifests:   cfg.Manifests,
		modelsDir:   cfg.ModelsDir,
		environment: env,
		concurrency: cfg.Concurrency,
	}

	if cfg.Target != nil && cfg.Target.Type != "" {
		e.hasTarget = true
		e.dbConfig = adapter.ConfigFromTarget(cfg.Target)
	}

	return e, nil
}

// ensureDBConnected lazily connects to the database. It returns a nil
// adapter when no target is configured.
func (e *Engine) ensureDBConnected(ctx context.Context) (adapter.Adapter, error) {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if !e.hasTarget {
		return nil, nil
	}
	if e.dbConnected {
		return e.db, nil
	}

	e.logger.Debug("connecting to database", slog.String("adapter_type", e.dbConfig.Type))

	// Use adapter registry to create the appropriate adapter
	db, err := adapter.Open(ctx, e.dbConfig, e.logger)
	if err != nil {
		return nil, err
	}

	e.db = db
	e.dbConnected = true
	e.logger.Debug("database connected", slog.String("adapter_type", e.dbConfig.Type))
	return db, nil
}

// SetAdapter installs an already connected adapter. Used by tests and by
// callers that manage their own connection.
func (e *Engine) SetAdapter(db adapter.Adapter) {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()
	e.db = db
	e.hasTarget = db != nil
	e.dbConnected = db != nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %w", errors.Join(errs...))
	}
	return nil
}

// GetStateStore returns the state store, nil when history is disabled.
func (e *Engine) GetStateStore() state.Store {
	return e.store
}

// HasTarget reports whether models are completed from a live database.
func (e *Engine) HasTarget() bool {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()
	return e.hasTarget
}

// Environment returns the environment runs are recorded under.
func (e *Engine) Environment() string {
	return e.environment
}

func (e *Engine) newLoader(db adapter.Adapter) *loader.Loader {
	cfg := loader.Config{Concurrency: e.concurrency, Logger: e.logger}
	if db != nil {
		cfg.DB = db
	}
	return loader.New(cfg)
}
