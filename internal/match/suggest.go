package match

import (
	"fmt"
	"sort"
)

// MinSimilarity is the lowest similarity Suggest accepts.
const MinSimilarity = 0.6

// Suggest returns the candidate most similar to name. Ties go to the
// candidate sorting first. ok is false when nothing is similar enough.
func Suggest(name string, candidates []string) (best string, ok bool) {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	score := MinSimilarity

	for _, c := range sorted {
		if s := Similarity(name, c); s > score || (s == score && !ok) {
			best, score, ok = c, s, true
		}
	}

	return best, ok
}

// Hint renders a " (did you mean X?)" suffix, or "" without a suggestion.
func Hint(name string, candidates []string) string {
	if best, ok := Suggest(name, candidates); ok {
		return fmt.Sprintf(" (did you mean %q?)", best)
	}

	return ""
}
