package model

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
	"github.com/leapstack-labs/modeldoctor/pkg/lint"
)

// globalRegistry is the single global registry for model rules.
var globalRegistry = &Registry{
	rules: make(map[string]RuleDef),
}

// Registry stores registered model rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by ID
}

// RuleDef is a model-level rule definition.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "MV01"
	Name        string        // Human-readable name, e.g., "missing-string-length-validation"
	Group       string        // Category, e.g., "validation"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	Check       Check         // The check function
	ConfigKeys  []string      // Configuration keys this rule accepts

	// Documentation fields for richer rule documentation
	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Declaration showing the anti-pattern
	GoodExample string // Declaration showing the correct pattern
	Fix         string // How to fix violations (when not obvious)
}

// Check is the function signature for model-level rule checks. Diagnostics
// carry the rule's default severity; the Analyzer applies overrides.
type Check func(ctx *Context, opts map[string]any) ([]Diagnostic, error)

// Diagnostic represents a model-level audit finding.
type Diagnostic struct {
	RuleID   string
	Severity core.Severity
	Message  string
	Model    string // Model class name
	Table    string // Backing table
	Column   string // Offending column, empty for model-wide findings

	// Remediation metadata
	DocumentationURL string // URL to rule documentation
	ImpactScore      int    // 0-100
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule RuleDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID] = rule

	lint.RegisterModelRule(WrapRuleDef(rule))
}

// GetAll returns all registered rules sorted by ID.
func GetAll() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID < rules[j].ID
	})
	return rules
}

// GetByID returns a rule by its ID.
func GetByID(id string) (RuleDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[id]
	return rule, ok
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all rules from the registry. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]RuleDef)
}

// =============================================================================
// Wrapped RuleDef
// =============================================================================

// wrappedRuleDef wraps a RuleDef to implement lint.Rule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef wraps a RuleDef to implement the lint.Rule interface.
func WrapRuleDef(def RuleDef) lint.Rule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) ID() string                     { return w.def.ID }
func (w *wrappedRuleDef) Name() string                   { return w.def.Name }
func (w *wrappedRuleDef) Group() string                  { return w.def.Group }
func (w *wrappedRuleDef) Description() string            { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() core.Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string           { return w.def.ConfigKeys }

// Documentation methods
func (w *wrappedRuleDef) Rationale() string   { return w.def.Rationale }
func (w *wrappedRuleDef) BadExample() string  { return w.def.BadExample }
func (w *wrappedRuleDef) GoodExample() string { return w.def.GoodExample }
func (w *wrappedRuleDef) Fix() string         { return w.def.Fix }

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}
