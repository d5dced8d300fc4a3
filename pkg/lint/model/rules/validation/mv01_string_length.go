package validation

import (
	"fmt"

	"github.com/leapstack-labs/modeldoctor/pkg/lint"
	"github.com/leapstack-labs/modeldoctor/pkg/lint/model"
)

const ruleID = "MV01"

func init() {
	model.Register(MissingStringLength)
}

// MissingStringLength reports unlimited string columns that no length or
// inclusion validator bounds.
var MissingStringLength = model.RuleDef{
	ID:          ruleID,
	Name:        "missing-string-length-validation",
	Group:       "validation",
	Description: "Unlimited string column without a length or inclusion validator",
	Severity:    lint.SeverityWarning,
	Check:       checkStringLength,
	ConfigKeys:  []string{"ignore_models", "ignore_columns"},

	Rationale: `A varchar column without a declared limit accepts input of any size. Unless the
model caps it with a length validator that has a maximum, or restricts it to an
enumerated set, a single request can store megabytes in a field meant for a name.`,

	BadExample: `- name: User
  table: users
  # users.name is character varying with no limit`,

	GoodExample: `- name: User
  table: users
  validators:
    - length: [name]
      maximum: 64`,

	Fix: "Add a length validator with a maximum, an inclusion validator, or a column limit.",
}

// checkStringLength wraps Evaluate and emits one diagnostic per offending
// column. ignore_models and ignore_columns ("Model.column") are applied after
// evaluation.
func checkStringLength(ctx *model.Context, opts map[string]any) ([]model.Diagnostic, error) {
	result, err := Evaluate(ctx.Models())
	if err != nil {
		return nil, err
	}

	ignoredModels := toSet(lint.GetStringSliceOption(opts, "ignore_models", nil))
	ignoredColumns := toSet(lint.GetStringSliceOption(opts, "ignore_columns", nil))

	var diagnostics []model.Diagnostic
	for _, m := range ctx.Models() {
		columns, ok := result[m.Name]
		if !ok || ignoredModels[m.Name] {
			continue
		}
		for _, col := range columns {
			if ignoredColumns[m.Name+"."+col] {
				continue
			}
			diagnostics = append(diagnostics, model.Diagnostic{
				RuleID:           ruleID,
				Severity:         lint.SeverityWarning,
				Message:          fmt.Sprintf("%s.%s is an unlimited string column without a length or inclusion validator", m.TableName, col),
				Model:            m.Name,
				Table:            m.TableName,
				Column:           col,
				DocumentationURL: lint.BuildDocURL(ruleID),
				ImpactScore:      lint.ImpactMedium.Int(),
			})
		}
	}
	return diagnostics, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
