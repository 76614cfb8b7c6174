package match

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s and drops separators, so "aws_json_1.1",
// "AwsJson1_1" and "awsjson11" compare equal.
func Normalize(s string) string {
	var sb strings.Builder

	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			continue
		default:
			sb.WriteRune(unicode.ToLower(r))
		}
	}

	return sb.String()
}
