package model

import "strings"

// ShapeID is an absolute shape identifier: "namespace#Name" or
// "namespace#Name$member".
type ShapeID string

// Namespace returns the part before '#'.
func (id ShapeID) Namespace() string {
	s := string(id)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}

	return ""
}

// Name returns the shape name without namespace and member.
func (id ShapeID) Name() string {
	s := string(id)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[i+1:]
	}

	if i := strings.IndexByte(s, '$'); i >= 0 {
		s = s[:i]
	}

	return s
}

// Member returns the member part after '$', or "".
func (id ShapeID) Member() string {
	s := string(id)
	if i := strings.IndexByte(s, '$'); i >= 0 {
		return s[i+1:]
	}

	return ""
}

// WithMember returns the member ID id$name.
func (id ShapeID) WithMember(name string) ShapeID {
	return ShapeID(string(id.Root()) + "$" + name)
}

// Root strips any member part.
func (id ShapeID) Root() ShapeID {
	s := string(id)
	if i := strings.IndexByte(s, '$'); i >= 0 {
		return ShapeID(s[:i])
	}

	return id
}

func (id ShapeID) String() string { return string(id) }
