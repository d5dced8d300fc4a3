package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	"github.com/leapstack-labs/modeldoctor/internal/state"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int    // Maximum runs listed
	Prune  int    // Keep only this many runs
	Format string // Output format override
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded audit runs",
		Long: `List the audit runs recorded in the state database, newest first.
Pass a run ID to show the findings of that run.`,
		Example: `  # List the last 20 runs
  modeldoctor history

  # Show one run's findings
  modeldoctor history 3f0c1d9e-...

  # Keep only the 50 most recent runs
  modeldoctor history --prune 50`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) > 0 {
				runID = args[0]
			}
			return runHistory(cmd, runID, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().IntVar(&opts.Prune, "prune", 0, "Delete all but the N most recent runs")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown, table")

	return cmd
}

func runHistory(cmd *cobra.Command, runID string, opts *HistoryOptions) error {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}
	r := rendererFor(cmd, cmdCtx.Renderer, opts.Format)

	if _, err := os.Stat(cmdCtx.Cfg.StatePath); errors.Is(err, fs.ErrNotExist) {
		if runID != "" {
			return fmt.Errorf("run not found: %s", runID)
		}
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(output.HistoryOutput{Runs: []output.HistoryRun{}})
		}
		r.Info("No audit history recorded yet")
		return nil
	}

	store := state.NewSQLiteStore(cmdCtx.Logger)
	if err := store.Open(cmdCtx.Cfg.StatePath); err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to initialize state schema: %w", err)
	}

	if opts.Prune > 0 {
		deleted, err := store.DeleteOldRuns(opts.Prune)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		r.Success(fmt.Sprintf("Deleted %s", plural(int(deleted), "run")))
		return nil
	}

	if runID != "" {
		return showHistoryRun(r, store, runID)
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return renderHistory(r, runs)
}

func toHistoryRun(run *core.AuditRun) output.HistoryRun {
	return output.HistoryRun{
		ID:           run.ID,
		Environment:  run.Environment,
		StartedAt:    run.StartedAt.Format(time.RFC3339),
		ModelCount:   run.ModelCount,
		FindingCount: run.FindingCount,
	}
}

func renderHistory(r *output.Renderer, runs []*core.AuditRun) error {
	out := output.HistoryOutput{Runs: make([]output.HistoryRun, len(runs))}
	for i, run := range runs {
		out.Runs[i] = toHistoryRun(run)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	if len(runs) == 0 {
		r.Info("No audit history recorded yet")
		return nil
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Audit History"))
		r.Println("")
	}
	rows := make([][]any, len(out.Runs))
	for i, run := range out.Runs {
		rows[i] = []any{run.ID, run.StartedAt, run.Environment, run.ModelCount, run.FindingCount}
	}
	r.Table([]string{"Run", "Started", "Environment", "Models", "Findings"}, rows)
	return nil
}

func showHistoryRun(r *output.Renderer, store *state.SQLiteStore, runID string) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	findings, err := store.GetFindings(runID)
	if err != nil {
		return fmt.Errorf("failed to load findings: %w", err)
	}

	out := toHistoryRun(run)
	for _, f := range findings {
		out.Findings = append(out.Findings, output.HistoryFinding{
			RuleID:   f.RuleID,
			Model:    f.Model,
			Column:   f.Column,
			Severity: f.Severity.String(),
			Message:  f.Message,
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Run "+out.ID))
		r.Println("")
		r.Println(output.FormatKeyValue("Started", out.StartedAt))
		r.Println(output.FormatKeyValue("Environment", out.Environment))
		r.Println(output.FormatKeyValue("Models audited", fmt.Sprintf("%d", out.ModelCount)))
		r.Println(output.FormatKeyValue("Findings", fmt.Sprintf("%d", out.FindingCount)))
		r.Println("")
	} else {
		styles := r.Styles()
		r.Println(styles.Header1.Render("Run " + out.ID))
		r.Printf("  %s: %s\n", styles.Bold.Render("Started"), out.StartedAt)
		r.Printf("  %s: %s\n", styles.Bold.Render("Environment"), out.Environment)
		r.Printf("  %s: %d\n", styles.Bold.Render("Models audited"), out.ModelCount)
		r.Printf("  %s: %d\n", styles.Bold.Render("Findings"), out.FindingCount)
		r.Println("")
	}

	if len(out.Findings) == 0 {
		return nil
	}
	rows := make([][]any, len(out.Findings))
	for i, f := range out.Findings {
		rows[i] = []any{f.Model, f.Column, f.RuleID, f.Severity}
	}
	r.Table([]string{"Model", "Column", "Rule", "Severity"}, rows)
	return nil
}
