package lint

import "github.com/leapstack-labs/modeldoctor/pkg/core"

// Severity is re-exported so rule packages only need to import lint.
type Severity = core.Severity

// Severity levels, re-exported from core.
const (
	SeverityError   = core.SeverityError
	SeverityWarning = core.SeverityWarning
	SeverityInfo    = core.SeverityInfo
	SeverityHint    = core.SeverityHint
)

// ParseSeverity converts a string to a Severity value.
func ParseSeverity(s string) (Severity, bool) {
	return core.ParseSeverity(s)
}

// RuleTypeModel marks rules that inspect model descriptors.
const RuleTypeModel = "model"

// =============================================================================
// Rule Interfaces
// =============================================================================

// Rule is the base interface all audit rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "MV01"
	ID() string

	// Name returns the human-readable name, e.g., "missing-string-length-validation"
	Name() string

	// Group returns the category, e.g., "validation"
	Group() string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the default severity for this rule
	DefaultSeverity() core.Severity

	// ConfigKeys returns configuration keys this rule accepts
	ConfigKeys() []string

	// Documentation methods for richer rule documentation
	Rationale() string   // Why this rule exists, what problems it prevents
	BadExample() string  // Code showing the anti-pattern
	GoodExample() string // Code showing the correct pattern
	Fix() string         // How to fix violations (when not obvious)
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) core.RuleInfo {
	return core.RuleInfo{
		ID:              r.ID(),
		Name:            r.Name(),
		Group:           r.Group(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		ConfigKeys:      r.ConfigKeys(),
		Type:            RuleTypeModel,
		Rationale:       r.Rationale(),
		BadExample:      r.BadExample(),
		GoodExample:     r.GoodExample(),
		Fix:             r.Fix(),
	}
}
