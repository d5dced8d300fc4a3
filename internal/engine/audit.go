package engine

// audit.go - Loading models and running the audit rules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/modeldoctor/internal/manifest"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/leapstack-labs/modeldoctor/pkg/lint"
	"github.com/leapstack-labs/modeldoctor/pkg/lint/model"
)

// Report is the outcome of one audit.
type Report struct {
	// Run is the recorded run, nil when history is disabled.
	Run         *core.AuditRun
	Models      []core.Model
	Diagnostics []model.Diagnostic
}

// Offenses groups the diagnostics by model: model name to offending
// columns, in table order. Models without findings are absent.
func (r *Report) Offenses() map[string][]string {
	out := make(map[string][]string)
	for _, d := range r.Diagnostics {
		if d.Column == "" {
			continue
		}
		out[d.Model] = append(out[d.Model], d.Column)
	}
	return out
}

// AuditedCount returns the number of models that took part in the audit.
func (r *Report) AuditedCount() int {
	n := 0
	for i := range r.Models {
		if r.Models[i].Auditable() {
			n++
		}
	}
	return n
}

// LoadModels reads the declared models and completes them from the target
// database, connecting on first use.
func (e *Engine) LoadModels(ctx context.Context) ([]core.Model, error) {
	defs, err := manifest.Load(e.manifests, e.modelsDir)
	if err != nil {
		return nil, err
	}

	db, err := e.ensureDBConnected(ctx)
	if err != nil {
		return nil, err
	}

	return e.newLoader(db).Load(ctx, defs)
}

// Audit loads the models, runs every enabled rule and records the run.
// A nil config runs all rules with default severities.
func (e *Engine) Audit(ctx context.Context, cfg *lint.Config) (*Report, error) {
	started := time.Now().UTC()
	e.logger.Info("starting audit", slog.String("environment", e.environment))

	models, err := e.LoadModels(ctx)
	if err != nil {
		return nil, err
	}

	mctx, err := model.NewContext(models)
	if err != nil {
		return nil, err
	}

	diags, err := model.NewAnalyzer(cfg).Analyze(mctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Models: models, Diagnostics: diags}

	if e.store != nil {
		run := &core.AuditRun{
			Environment: e.environment,
			StartedAt:   started,
			ModelCount:  report.AuditedCount(),
		}
		findings := make([]core.AuditFinding, len(diags))
		for i, d := range diags {
			findings[i] = core.AuditFinding{
				RuleID:   d.RuleID,
				Model:    d.Model,
				Column:   d.Column,
				Severity: d.Severity,
				Message:  d.Message,
			}
		}
		if err := e.store.RecordRun(run, findings); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		report.Run = run
		e.logger.Debug("recorded run", slog.String("run_id", run.ID))
	}

	e.logger.Info("audit completed",
		slog.Int("models", report.AuditedCount()),
		slog.Int("findings", len(diags)),
		slog.Duration("duration", time.Since(started)))

	return report, nil
}
