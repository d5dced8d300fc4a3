// Package core defines the shared vocabulary of modeldoctor.
//
// This package contains:
//   - Model descriptors (Model, Column, Association, Validator)
//   - Severity and rule metadata shared by the rule framework
//   - Configuration types (TargetConfig, AuditConfig)
//   - Table metadata returned by database adapters
//
// pkg/core imports only the standard library. Every other package depends on
// core, never the reverse.
package core
