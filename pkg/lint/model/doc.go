// Package model runs audit rules against model descriptors.
//
// Rules register a RuleDef from an init function. The Analyzer runs every
// registered rule that is not disabled, applies severity overrides and rule
// options from a lint.Config, and returns diagnostics in a stable order.
package model
