package common

import (
	"path"
	"strings"
	"unicode"
)

// UnknownStr is the String value of out-of-range enumerations.
const UnknownStr = "unknown"

// PkgAlias returns a Go package name for a package path or directory: its
// last element, lower-cased, with characters that cannot appear in an
// identifier dropped. Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(strings.ReplaceAll(pkgPath, "\\", "/"))

	var sb strings.Builder

	for _, r := range strings.ToLower(base) {
		if r == '_' || unicode.IsLetter(r) || (unicode.IsDigit(r) && sb.Len() > 0) {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
