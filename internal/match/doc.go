// Package match suggests the closest known name for a misspelled one:
// protocol names, hook names and service shape IDs.
//
// Key functions:
//   - Normalize: folds case and separators before comparing
//   - Levenshtein: computes edit distance between strings
//   - Suggest: picks the closest candidate above a similarity threshold
package match
