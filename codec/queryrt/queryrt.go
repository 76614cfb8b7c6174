// Package queryrt builds AWS Query and EC2 Query request bodies
// (application/x-www-form-urlencoded key paths).
package queryrt

import (
	"net/url"
	"strconv"
)

// NewValues returns the form values every request starts with.
func NewValues(action, version string) url.Values {
	v := url.Values{}
	v.Set("Action", action)
	v.Set("Version", version)

	return v
}

// Key joins a member name onto a key prefix.
func Key(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + "." + name
}

// ListKey returns the key of the i-th (zero based) list element. Flattened
// lists omit the member segment.
func ListKey(prefix, member string, i int, flattened bool) string {
	n := strconv.Itoa(i + 1)
	if flattened {
		return prefix + "." + n
	}

	return prefix + "." + member + "." + n
}

// EntryKey returns the key prefix of the i-th (zero based) map entry.
// Flattened maps omit the entry segment.
func EntryKey(prefix string, i int, flattened bool) string {
	n := strconv.Itoa(i + 1)
	if flattened {
		return prefix + "." + n
	}

	return prefix + ".entry." + n
}

// Encode renders the values with keys sorted.
func Encode(v url.Values) []byte {
	return []byte(v.Encode())
}
