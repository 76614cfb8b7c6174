package model

import "strconv"

// Shape is one node of the model graph. Shapes are immutable after loading.
type Shape struct {
	Traits

	ID   ShapeID
	Kind Kind

	// Members holds structure, union, enum and intEnum members in document
	// order.
	Members []*Member
	// Member is the list or set element member.
	Member *Member
	// Key and Value are the map members.
	Key   *Member
	Value *Member

	// Input, Output and Errors belong to operations. Errors also holds the
	// service-wide errors of a service.
	Input  ShapeID
	Output ShapeID
	Errors []ShapeID

	// Operations and Resources belong to services and resources.
	Operations []ShapeID
	Resources  []ShapeID
	// Version is the service version.
	Version string
}

// Name is the shape name without namespace.
func (s *Shape) Name() string {
	return s.ID.Name()
}

// MemberNamed returns the named member of a structure or union.
func (s *Shape) MemberNamed(name string) (*Member, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}

	return nil, false
}

// IsError reports whether the shape carries the error trait.
func (s *Shape) IsError() bool {
	return s.Has(TraitError)
}

// IsEventStream reports whether the shape is a streaming union.
func (s *Shape) IsEventStream() bool {
	return s.Kind == KindUnion && s.Streaming()
}

// EnumValues returns the entries of an enum or intEnum shape, or of a string
// shape with the legacy enum trait.
func (s *Shape) EnumValues() []EnumValue {
	switch s.Kind {
	case KindEnum, KindIntEnum:
		out := make([]EnumValue, 0, len(s.Members))

		for _, m := range s.Members {
			value := m.Name

			if v := m.Value(TraitEnumValue); v != nil {
				switch tv := v.(type) {
				case string:
					value = tv
				default:
					if f, ok := toFloat(tv); ok {
						value = strconv.FormatInt(int64(f), 10)
					}
				}
			}

			out = append(out, EnumValue{Name: m.Name, Value: value, Documentation: m.Documentation()})
		}

		return out
	case KindString:
		return s.legacyEnum()
	default:
		return nil
	}
}

// IsEnum reports whether values of the shape are drawn from a closed string
// set.
func (s *Shape) IsEnum() bool {
	return s.Kind == KindEnum || (s.Kind == KindString && s.Has(TraitEnum))
}

// Member is a named edge from a container shape to its target.
type Member struct {
	Traits

	Container ShapeID
	Name      string
	Target    ShapeID
}

// ID returns the absolute member ID.
func (m *Member) ID() ShapeID {
	return m.Container.WithMember(m.Name)
}
