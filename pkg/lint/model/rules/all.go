// Package rules imports all model rule packages to trigger their init() registration.
package rules

import (
	// Import all rule packages to trigger init() registration
	_ "github.com/leapstack-labs/modeldoctor/pkg/lint/model/rules/validation"
)
