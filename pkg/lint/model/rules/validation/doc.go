// Package validation holds audit rules about declared model validators.
//
//   - MV01 missing-string-length-validation
package validation
