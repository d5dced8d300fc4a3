package lint

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// unifiedRegistry stores every rule for the rules command and config validation.
var unifiedRegistry = &UnifiedRegistry{
	modelRules: make(map[string]Rule),
}

// UnifiedRegistry provides unified access to all rules.
type UnifiedRegistry struct {
	mu         sync.RWMutex
	modelRules map[string]Rule
}

// RegisterModelRule adds a model rule to the unified registry.
func RegisterModelRule(rule Rule) {
	unifiedRegistry.mu.Lock()
	defer unifiedRegistry.mu.Unlock()
	unifiedRegistry.modelRules[rule.ID()] = rule
}

// GetRuleByID returns any rule by its ID.
func GetRuleByID(id string) (Rule, bool) {
	unifiedRegistry.mu.RLock()
	defer unifiedRegistry.mu.RUnlock()
	rule, ok := unifiedRegistry.modelRules[id]
	return rule, ok
}

// AllRules returns metadata for all registered rules, sorted by ID.
func AllRules() []core.RuleInfo {
	unifiedRegistry.mu.RLock()
	defer unifiedRegistry.mu.RUnlock()

	rules := make([]core.RuleInfo, 0, len(unifiedRegistry.modelRules))
	for _, rule := range unifiedRegistry.modelRules {
		rules = append(rules, GetRuleInfo(rule))
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID < rules[j].ID
	})
	return rules
}

// GetRulesByGroup returns rules in a specific group.
func GetRulesByGroup(group string) []Rule {
	unifiedRegistry.mu.RLock()
	defer unifiedRegistry.mu.RUnlock()

	var rules []Rule
	for _, rule := range unifiedRegistry.modelRules {
		if rule.Group() == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// CountRules returns the number of registered rules.
func CountRules() int {
	unifiedRegistry.mu.RLock()
	defer unifiedRegistry.mu.RUnlock()
	return len(unifiedRegistry.modelRules)
}

// ClearUnified removes all rules from the unified registry. Used for testing.
func ClearUnified() {
	unifiedRegistry.mu.Lock()
	defer unifiedRegistry.mu.Unlock()
	unifiedRegistry.modelRules = make(map[string]Rule)
}
