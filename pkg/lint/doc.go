// Package lint provides the rule framework behind modeldoctor audits.
//
// # Architecture
//
// The framework has two layers:
//
//  1. Root package (pkg/lint/): shared contracts, configuration, option helpers and the unified registry
//  2. Model subsystem (pkg/lint/model/): rules that inspect model descriptors, their registry and analyzer
//
// # Rule Registration
//
// Rules are registered via init() functions when their packages are imported:
//
//	import _ "github.com/leapstack-labs/modeldoctor/pkg/lint/model/rules"
//
// # Rule Categories
//
// Model Rules:
//   - MV (Validation): string columns and their declared validators
//
// # Using the Registry
//
//	rules := lint.AllRules()
//	rule, ok := lint.GetRuleByID("MV01")
//
// # Configuration
//
//	config := lint.NewConfig()
//	config.Disable("MV01")
//	config.SetSeverity("MV01", core.SeverityError)
//	config.SetRuleOptions("MV01", map[string]any{"ignore_models": []string{"LegacyUser"}})
package lint
