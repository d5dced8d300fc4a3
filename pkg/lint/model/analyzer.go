package model

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/leapstack-labs/modeldoctor/pkg/lint"
)

// Analyzer runs model-level audit rules against a Context.
type Analyzer struct {
	config *lint.Config
}

// NewAnalyzer creates a new analyzer. A nil config enables every rule with
// its default severity.
func NewAnalyzer(config *lint.Config) *Analyzer {
	if config == nil {
		config = lint.NewConfig()
	}
	return &Analyzer{config: config}
}

// Analyze runs all registered, enabled rules against the context. A rule
// error aborts the analysis; no partial result is returned.
func (a *Analyzer) Analyze(ctx *Context) ([]Diagnostic, error) {
	if ctx == nil {
		return nil, nil
	}

	var diagnostics []Diagnostic
	for _, rule := range GetAll() {
		if a.config.IsDisabled(rule.ID) {
			continue
		}

		diags, err := rule.Check(ctx, a.config.GetRuleOptions(rule.ID))
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}

		for i := range diags {
			diags[i].Severity = a.config.GetSeverity(rule.ID, diags[i].Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}

	sortDiagnostics(diagnostics, ctx)
	return diagnostics, nil
}

// Name identifies the analyzer in logs.
func (a *Analyzer) Name() string {
	return "model-audit"
}

// sortDiagnostics orders findings by model name, then by the column's
// position in its table, then by rule ID.
func sortDiagnostics(diags []Diagnostic, ctx *Context) {
	position := func(d Diagnostic) int {
		m, ok := ctx.GetModel(d.Model)
		if !ok {
			return 0
		}
		for i := range m.Columns {
			if m.Columns[i].Name == d.Column {
				return i + 1
			}
		}
		return 0
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Model != diags[j].Model {
			return diags[i].Model < diags[j].Model
		}
		pi, pj := position(diags[i]), position(diags[j])
		if pi != pj {
			return pi < pj
		}
		return diags[i].RuleID < diags[j].RuleID
	})
}

// CountBySeverity tallies diagnostics per severity.
func CountBySeverity(diags []Diagnostic) map[core.Severity]int {
	counts := make(map[core.Severity]int)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}
