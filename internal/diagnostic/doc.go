// Package diagnostic collects structured findings of a generation run:
// errors that stop it, warnings about lossy or surprising output, and notes
// explaining classification decisions.
//
// Key capabilities:
//   - Per-shape and per-member attribution
//   - Stable codes for filtering
//   - Merging findings across generators
package diagnostic
