package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/leapstack-labs/modeldoctor/internal/cli/config"
	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	"github.com/leapstack-labs/modeldoctor/internal/engine"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/leapstack-labs/modeldoctor/pkg/lint"
	"github.com/leapstack-labs/modeldoctor/pkg/lint/model"
	_ "github.com/leapstack-labs/modeldoctor/pkg/lint/model/rules" // register model rules
	"github.com/spf13/cobra"
)

// ErrMissingValidations is returned when an audit reports findings, so the
// process exits non-zero.
var ErrMissingValidations = errors.New("missing validations found")

// AuditOptions holds options for the audit command.
type AuditOptions struct {
	Manifests []string // Manifests given as arguments replace configured ones
	Format    string   // Output format override
	Disable   []string // Rule IDs to disable
	Severity  string   // Minimum severity to report
	Rules     []string // Run only these rules
	Watch     bool     // Re-run when model sources change
}

// NewAuditCommand creates the audit command.
func NewAuditCommand() *cobra.Command {
	opts := &AuditOptions{}
	cmd := &cobra.Command{
		Use:   "audit [manifest...]",
		Short: "Find unbounded string columns without length validation",
		Long: `Audit the declared models for string columns that have no length limit
in the database and no length or inclusion validator in the model.

Models come from YAML manifests and Go model structs. When a target
database is configured, columns are read from its live schema; otherwise
the columns declared in the manifests are used.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Audit the configured models
  modeldoctor audit

  # Audit specific manifests
  modeldoctor audit models.yaml billing/models.yaml

  # Audit against the production schema
  modeldoctor audit -t prod

  # Output as JSON
  modeldoctor audit --format json

  # Re-run on every manifest change
  modeldoctor audit --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Manifests = args
			return runAudit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: "+strings.Join(output.Modes, ", "))
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity to report: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the audit when model sources change")
	cmd.Flags().Bool("no-history", false, "Do not record the run in the state database")
	cmd.Flags().Int("concurrency", 0, "Tables introspected in parallel")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runAudit(cmd *cobra.Command, opts *AuditOptions) error {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}

	cfg := *cmdCtx.Cfg
	if len(opts.Manifests) > 0 {
		cfg.Manifest = make([]string, len(opts.Manifests))
		for i, m := range opts.Manifests {
			if abs, err := filepath.Abs(m); err == nil {
				m = abs
			}
			cfg.Manifest[i] = m
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateSources(); err != nil {
		return err
	}

	if opts.Format != "" && !output.ValidMode(opts.Format) {
		return fmt.Errorf("invalid format %q (expected one of %s)", opts.Format, strings.Join(output.Modes, ", "))
	}
	threshold, ok := lint.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("invalid severity %q (expected error, warning, info or hint)", opts.Severity)
	}
	lintCfg, err := buildAuditConfig(&cfg, opts)
	if err != nil {
		return err
	}

	r := rendererFor(cmd, cmdCtx.Renderer, opts.Format)

	eng, err := CreateEngine(&cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if !eng.HasTarget() {
		cmdCtx.Logger.Debug("no target configured, auditing declared columns")
	}

	if !opts.Watch {
		count, err := auditOnce(cmd.Context(), eng, lintCfg, threshold, r)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrMissingValidations
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchAudit(ctx, &cfg, cmdCtx.Logger, r, func() {
		if _, err := auditOnce(ctx, eng, lintCfg, threshold, r); err != nil {
			r.Warning(err.Error())
		}
	})
}

// auditOnce runs one audit and renders it. It returns the number of
// findings at or above the threshold.
func auditOnce(ctx context.Context, eng *engine.Engine, lintCfg *lint.Config, threshold lint.Severity, r *output.Renderer) (int, error) {
	report, err := eng.Audit(ctx, lintCfg)
	if err != nil {
		return 0, err
	}
	diags := filterBySeverity(report.Diagnostics, threshold)
	out := buildAuditOutput(report, diags, eng.Environment())
	return len(diags), renderAudit(r, out)
}

func watchAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger, r *output.Renderer, run func()) error {
	w, err := newSourceWatcher(cfg.Manifest, cfg.ModelsDir, logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	run()
	r.Info("Watching for changes, press Ctrl+C to stop")
	return w.Run(ctx, func(changed string) {
		r.Info("Change detected: " + filepath.Base(changed))
		run()
	})
}

func buildAuditConfig(cfg *config.Config, opts *AuditOptions) (*lint.Config, error) {
	lintCfg, err := lint.NewConfigFromAudit(cfg.Audit)
	if err != nil {
		return nil, err
	}

	for _, id := range opts.Disable {
		lintCfg.Disable(strings.ToUpper(strings.TrimSpace(id)))
	}

	// --rule runs only the named rules
	if len(opts.Rules) > 0 {
		enabled := make(map[string]bool, len(opts.Rules))
		for _, id := range opts.Rules {
			id = strings.ToUpper(strings.TrimSpace(id))
			if _, ok := lint.GetRuleByID(id); !ok {
				return nil, fmt.Errorf("unknown rule %q\nHint: run 'modeldoctor rules' to list rules", id)
			}
			enabled[id] = true
		}
		for _, rule := range lint.AllRules() {
			if !enabled[rule.ID] {
				lintCfg.Disable(rule.ID)
			}
		}
	}

	return lintCfg, nil
}

func filterBySeverity(diags []model.Diagnostic, threshold lint.Severity) []model.Diagnostic {
	var filtered []model.Diagnostic
	for _, d := range diags {
		if d.Severity <= threshold {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// buildAuditOutput groups findings by model, models sorted by name and
// findings in table order.
func buildAuditOutput(report *engine.Report, diags []model.Diagnostic, env string) output.AuditOutput {
	out := output.AuditOutput{
		Environment: env,
		Models:      []output.AuditModel{},
		Summary: output.AuditSummary{
			ModelsAudited: report.AuditedCount(),
			Findings:      len(diags),
		},
	}
	if report.Run != nil {
		out.RunID = report.Run.ID
	}

	index := make(map[string]int)
	for _, d := range diags {
		i, ok := index[d.Model]
		if !ok {
			i = len(out.Models)
			index[d.Model] = i
			out.Models = append(out.Models, output.AuditModel{Name: d.Model, Table: d.Table})
		}
		out.Models[i].Findings = append(out.Models[i].Findings, output.AuditFinding{
			Column:           d.Column,
			RuleID:           d.RuleID,
			Severity:         d.Severity.String(),
			Message:          d.Message,
			DocumentationURL: d.DocumentationURL,
		})
	}

	counts := model.CountBySeverity(diags)
	out.Summary.Errors = counts[core.SeverityError]
	out.Summary.Warnings = counts[core.SeverityWarning]
	out.Summary.Info = counts[core.SeverityInfo]
	out.Summary.Hints = counts[core.SeverityHint]
	sort.SliceStable(out.Models, func(i, j int) bool {
		return out.Models[i].Name < out.Models[j].Name
	})
	out.Summary.ModelsWithIssues = len(out.Models)
	return out
}

func renderAudit(r *output.Renderer, out output.AuditOutput) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		renderAuditMarkdown(r, out)
	case output.ModeTable:
		renderAuditTable(r, out)
	default:
		renderAuditText(r, out)
	}
	return nil
}

func renderAuditText(r *output.Renderer, out output.AuditOutput) {
	if out.Summary.Findings == 0 {
		r.Success(fmt.Sprintf("No missing validations found (%s audited)", plural(out.Summary.ModelsAudited, "model")))
		return
	}

	styles := r.Styles()
	r.Println("")
	r.Println(styles.Header1.Render("Missing string length validations"))
	r.Println("")

	for _, m := range out.Models {
		r.Printf("%s %s\n", styles.ModelName.Render(m.Name), styles.Muted.Render("("+m.Table+")"))
		for _, f := range m.Findings {
			sev := getSeverityStyle(styles, severityOf(f.Severity)).Render(fmt.Sprintf("%-7s", f.Severity))
			r.Printf("  %s  %s  %s\n",
				sev,
				styles.Bold.Render(f.RuleID),
				styles.Column.Render(f.Column),
			)
		}
		r.Println("")
	}

	r.Println(summaryLine(out.Summary))
}

func renderAuditMarkdown(r *output.Renderer, out output.AuditOutput) {
	r.Println(output.FormatHeader(1, "Audit Report"))
	r.Println("")

	if out.Summary.Findings == 0 {
		r.Success(fmt.Sprintf("No missing validations found (%s audited)", plural(out.Summary.ModelsAudited, "model")))
		return
	}

	for _, m := range out.Models {
		r.Println(output.FormatHeader(2, fmt.Sprintf("%s (%s)", m.Name, output.FormatCode(m.Table))))
		r.Println("")
		for _, f := range m.Findings {
			r.Printf("- %s **%s** (%s): %s\n", output.FormatCode(f.Column), f.RuleID, f.Severity, f.Message)
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println("")
	r.Println(output.FormatKeyValue("Models audited", fmt.Sprintf("%d", out.Summary.ModelsAudited)))
	r.Println(output.FormatKeyValue("Models with findings", fmt.Sprintf("%d", out.Summary.ModelsWithIssues)))
	r.Println(output.FormatKeyValue("Findings", fmt.Sprintf("%d", out.Summary.Findings)))
}

func renderAuditTable(r *output.Renderer, out output.AuditOutput) {
	if out.Summary.Findings == 0 {
		r.Success(fmt.Sprintf("No missing validations found (%s audited)", plural(out.Summary.ModelsAudited, "model")))
		return
	}

	var rows [][]any
	for _, m := range out.Models {
		for _, f := range m.Findings {
			rows = append(rows, []any{m.Name, m.Table, f.Column, f.RuleID, f.Severity})
		}
	}
	r.Table([]string{"Model", "Table", "Column", "Rule", "Severity"}, rows)
	r.Println(summaryLine(out.Summary))
}

func summaryLine(s output.AuditSummary) string {
	return fmt.Sprintf("Summary: %s in %s (%d audited)",
		plural(s.Findings, "finding"), plural(s.ModelsWithIssues, "model"), s.ModelsAudited)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func severityOf(name string) core.Severity {
	sev, _ := core.ParseSeverity(name)
	return sev
}
