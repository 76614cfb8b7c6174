package symbol

import (
	"errors"
	"fmt"

	"codec-generator/internal/model"
)

var (
	// ErrNameCollision is returned when two owners need the same identifier.
	ErrNameCollision = errors.New("go name collision")
	// ErrUnsupportedShape is returned for shape kinds without a Go mapping.
	ErrUnsupportedShape = errors.New("unsupported shape")
)

// GoType returns the Go type expression of a value of the shape.
func (p *Provider) GoType(s *model.Shape) (string, error) {
	switch s.Kind {
	case model.KindString:
		if s.IsEnum() {
			return p.TypeName(s.ID), nil
		}

		return "string", nil
	case model.KindEnum, model.KindIntEnum, model.KindStructure, model.KindUnion:
		return p.TypeName(s.ID), nil
	case model.KindBoolean:
		return "bool", nil
	case model.KindByte:
		return "int8", nil
	case model.KindShort:
		return "int16", nil
	case model.KindInteger:
		return "int32", nil
	case model.KindLong:
		return "int64", nil
	case model.KindFloat:
		return "float32", nil
	case model.KindDouble:
		return "float64", nil
	case model.KindBlob:
		return "[]byte", nil
	case model.KindTimestamp:
		return "time.Time", nil
	case model.KindDocument:
		return "any", nil
	case model.KindList, model.KindSet:
		elem, err := p.ElementType(s, s.Member)
		if err != nil {
			return "", err
		}

		return "[]" + elem, nil
	case model.KindMap:
		key, err := p.model.Target(s.Key)
		if err != nil {
			return "", err
		}

		if key.Kind != model.KindString && key.Kind != model.KindEnum {
			return "", fmt.Errorf("%w: map %s has %s keys", ErrUnsupportedShape, s.ID, key.Kind)
		}

		elem, err := p.ElementType(s, s.Value)
		if err != nil {
			return "", err
		}

		return "map[string]" + elem, nil
	default:
		return "", fmt.Errorf("%w: %s is a %s", ErrUnsupportedShape, s.ID, s.Kind)
	}
}

// ElementType returns the Go type of a list element or map value. Sparse
// containers hold pointers for element types that cannot be nil.
func (p *Provider) ElementType(container *model.Shape, m *model.Member) (string, error) {
	target, err := p.model.Target(m)
	if err != nil {
		return "", err
	}

	t, err := p.GoType(target)
	if err != nil {
		return "", err
	}

	if container.Sparse() && !Nilable(target) {
		return "*" + t, nil
	}

	return t, nil
}

// FieldType returns the Go type of a structure member. Optional members of
// non-nilable kinds are pointers; nested structures are always pointers.
func (p *Provider) FieldType(m *model.Member, optional bool) (string, error) {
	target, err := p.model.Target(m)
	if err != nil {
		return "", err
	}

	t, err := p.GoType(target)
	if err != nil {
		return "", err
	}

	if PointerField(target, optional) {
		return "*" + t, nil
	}

	return t, nil
}

// PointerField reports whether a member targeting s is held by pointer.
func PointerField(s *model.Shape, optional bool) bool {
	if s.Kind == model.KindStructure {
		return true
	}

	return optional && !Nilable(s)
}

// Nilable reports whether the Go type of the shape already has a nil value.
func Nilable(s *model.Shape) bool {
	switch s.Kind {
	case model.KindBlob, model.KindDocument, model.KindList, model.KindSet, model.KindMap, model.KindUnion:
		return true
	default:
		return false
	}
}
