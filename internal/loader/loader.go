// Package loader completes declared models with live table metadata.
//
// It is the collaborator that produces the model registry an audit runs
// over: each declared model gets Exists and Columns from the target
// database, introspected concurrently.
package loader

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/modeldoctor/internal/manifest"
	"github.com/leapstack-labs/modeldoctor/pkg/adapter"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// DefaultConcurrency is the number of tables introspected at once.
const DefaultConcurrency = 4

// Introspector is the part of adapter.Adapter the loader needs.
type Introspector interface {
	TableExists(ctx context.Context, table string) (bool, error)
	GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error)
}

// Config holds loader configuration.
type Config struct {
	// DB introspects live tables. Nil means no target is configured.
	DB Introspector
	// Concurrency bounds parallel introspection (default 4).
	Concurrency int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Loader resolves definitions into models.
type Loader struct {
	db          Introspector
	concurrency int
	logger      *slog.Logger
}

// New creates a loader.
func New(cfg Config) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Loader{
		db:          cfg.DB,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Load returns one model per definition, in definition order.
//
// Without a database, models with declared columns exist and the rest do
// not. With a database, inline YAML columns are kept as declared and every
// other model with a table is introspected; its declared struct columns
// are replaced by the live ones.
func (l *Loader) Load(ctx context.Context, defs []manifest.Definition) ([]core.Model, error) {
	models := make([]core.Model, len(defs))
	for i := range defs {
		models[i] = defs[i].Model
	}

	if l.db == nil {
		for i := range models {
			models[i].Exists = models[i].TableName != "" && len(models[i].Columns) > 0
		}
		l.logger.Debug("loaded models without target", slog.Int("models", len(models)))
		return models, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i := range models {
		m := &models[i]
		switch {
		case m.TableName == "" || m.TableName == core.SchemaMigrationsTable:
			continue
		case defs[i].InlineColumns:
			m.Exists = true
			continue
		}

		g.Go(func() error {
			return l.introspect(gctx, m)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Debug("loaded models", slog.Int("models", len(models)), slog.Int("concurrency", l.concurrency))
	return models, nil
}

// introspect fills Exists and Columns of one model. Each goroutine writes
// only to its own model.
func (l *Loader) introspect(ctx context.Context, m *core.Model) error {
	exists, err := l.db.TableExists(ctx, m.TableName)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.Name, err)
	}
	m.Exists = exists
	if !exists {
		l.logger.Debug("table missing", slog.String("model", m.Name), slog.String("table", m.TableName))
		m.Columns = nil
		return nil
	}

	meta, err := l.db.GetTableMetadata(ctx, m.TableName)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.Name, err)
	}
	m.Columns = append([]core.Column(nil), meta.Columns...)
	return nil
}
