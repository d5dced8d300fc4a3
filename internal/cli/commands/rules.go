package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/leapstack-labs/modeldoctor/pkg/lint"
	_ "github.com/leapstack-labs/modeldoctor/pkg/lint/model/rules" // register model rules
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available audit rules",
		Long: `List all available audit rules with their documentation.

Rules are organized by group (e.g., validation). Use --verbose to see the
rationale of each rule, or pass a rule ID for its full documentation.`,
		Example: `  # List all rules
  modeldoctor rules

  # Show details for a specific rule
  modeldoctor rules MV01

  # List rules in the validation group
  modeldoctor rules --group validation

  # Output as JSON
  modeldoctor rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}
	r := rendererFor(cmd, cmdCtx.Renderer, opts.Format)

	var rules []core.RuleInfo
	if opts.Group != "" {
		for _, rule := range lint.GetRulesByGroup(strings.ToLower(opts.Group)) {
			rules = append(rules, lint.GetRuleInfo(rule))
		}
	} else {
		rules = lint.AllRules()
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Group != rules[j].Group {
			return rules[i].Group < rules[j].Group
		}
		return rules[i].ID < rules[j].ID
	})

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		listRulesMarkdown(r, rules, opts.Verbose)
	case output.ModeTable:
		listRulesTable(r, rules)
	default:
		listRulesText(r, rules, opts.Verbose)
	}
	return nil
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}
	r := rendererFor(cmd, cmdCtx.Renderer, opts.Format)

	rule, ok := lint.GetRuleByID(strings.ToUpper(ruleID))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := lint.GetRuleInfo(rule)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(toRuleOutput(info))
	case output.ModeMarkdown:
		showRuleMarkdown(r, info)
	default:
		showRuleText(r, info)
	}
	return nil
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []core.RuleInfo, verbose bool) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Audit Rules (%d)", len(rules))))
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println(styles.Bold.Render("  " + groupTitle(currentGroup)))
		}

		r.Printf("    %s  %s - %s\n",
			styles.Muted.Render(rule.ID),
			rule.Name,
			getSeverityStyle(styles, rule.DefaultSeverity).Render(rule.DefaultSeverity.String()),
		)

		if verbose {
			r.Println(styles.Muted.Render("        " + rule.Description))
			if rule.Rationale != "" {
				r.Println(styles.Muted.Render("        Why: " + truncateOneLine(rule.Rationale, 80)))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'modeldoctor rules <rule-id>' for detailed documentation"))
	r.Println("")
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []core.RuleInfo, verbose bool) {
	r.Println(output.FormatHeader(1, "Audit Rules"))
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println(output.FormatHeader(2, groupTitle(currentGroup)))
			r.Println("")
		}

		r.Printf("- **%s** - %s (%s)\n", rule.ID, rule.Name, output.FormatCode(rule.DefaultSeverity.String()))
		if verbose {
			r.Println("  " + rule.Description)
			if rule.Rationale != "" {
				r.Println("  > " + truncateOneLine(rule.Rationale, 200))
			}
		}
	}

	r.Println("")
}

func listRulesTable(r *output.Renderer, rules []core.RuleInfo) {
	rows := make([][]any, len(rules))
	for i, rule := range rules {
		rows[i] = []any{rule.ID, rule.Name, rule.Group, rule.DefaultSeverity.String()}
	}
	r.Table([]string{"ID", "Name", "Group", "Severity"}, rows)
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []output.RuleOutput `json:"rules"`
	Count int                 `json:"count"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []core.RuleInfo) error {
	out := RulesJSONOutput{
		Rules: make([]output.RuleOutput, len(rules)),
		Count: len(rules),
	}
	for i, rule := range rules {
		out.Rules[i] = toRuleOutput(rule)
	}
	return r.JSON(out)
}

func toRuleOutput(rule core.RuleInfo) output.RuleOutput {
	return output.RuleOutput{
		ID:          rule.ID,
		Name:        rule.Name,
		Group:       rule.Group,
		Severity:    rule.DefaultSeverity.String(),
		Description: rule.Description,
		ConfigKeys:  rule.ConfigKeys,
		Rationale:   rule.Rationale,
		BadExample:  rule.BadExample,
		GoodExample: rule.GoodExample,
		Fix:         rule.Fix,
		DocsURL:     lint.BuildDocURL(rule.ID),
	}
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule core.RuleInfo) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), rule.Group)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), rule.DefaultSeverity.String())
	r.Printf("  %s: %s\n", styles.Bold.Render("Docs"), lint.BuildDocURL(rule.ID))
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		for _, line := range strings.Split(rule.Rationale, "\n") {
			r.Println("  " + line)
		}
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println(styles.Bold.Render("How to Fix"))
		r.Println("  " + rule.Fix)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(rule.ConfigKeys, ", "))
		r.Println("")
	}
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule core.RuleInfo) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")
	r.Printf("**Group:** %s | **Severity:** %s\n\n", rule.Group, output.FormatCode(rule.DefaultSeverity.String()))
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(output.FormatHeader(2, "Why This Matters"))
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(output.FormatHeader(2, "Bad Example"))
		r.Println("")
		r.Println(output.FormatCodeBlock("yaml", rule.BadExample))
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(output.FormatHeader(2, "Good Example"))
		r.Println("")
		r.Println(output.FormatCodeBlock("yaml", rule.GoodExample))
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println(output.FormatHeader(2, "How to Fix"))
		r.Println("")
		r.Println(rule.Fix)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println(output.FormatHeader(2, "Configuration"))
		r.Println("")
		r.Printf("Options: `%s`\n", strings.Join(rule.ConfigKeys, "`, `"))
		r.Println("")
	}
}

// Helper functions

func getSeverityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	case core.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func groupTitle(group string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(group, "_", " "))
}
