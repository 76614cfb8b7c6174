// Package constraint classifies members as required or optional and shapes
// as needing a builder (an unvalidated intermediate) when they can reach a
// constrained shape.
package constraint

import (
	"errors"
	"fmt"

	"codec-generator/internal/model"
)

// ErrUncovered is returned for trait combinations the nullability table does
// not define.
var ErrUncovered = errors.New("unsupported nullability combination")

//go:generate go tool stringer -type=Nullability -linecomment -output=nullability_string.go

// Nullability is the resolved presence rule of a member.
type Nullability int

const (
	// Optional members may be absent.
	Optional Nullability = iota // optional
	// Required members carry the required trait.
	Required // required
	// Streaming members are carried by the stream, never by the document.
	Streaming // streaming
	// Defaulted members have a non-null default and are never absent.
	Defaulted // defaulted
)

// Options tune which shapes count as directly constrained.
type Options struct {
	// EnumsConstrained makes enum strings count as constrained, so structures
	// holding them are parsed into builders and validated.
	EnumsConstrained bool
}

// Classifier answers nullability and constraint reachability questions.
// Results are memoized per shape.
type Classifier struct {
	model *model.Model
	opts  Options

	direct map[model.ShapeID]bool
	reach  map[model.ShapeID]bool
}

// New creates a Classifier over the model.
func New(m *model.Model, opts Options) *Classifier {
	return &Classifier{
		model:  m,
		opts:   opts,
		direct: make(map[model.ShapeID]bool),
		reach:  make(map[model.ShapeID]bool),
	}
}

// Nullability resolves a member's presence rule with a fixed precedence:
// required trait, then streaming, then a non-null default, then optional.
func (c *Classifier) Nullability(m *model.Member) (Nullability, error) {
	target, err := c.model.Target(m)
	if err != nil {
		return Optional, err
	}

	def, hasDefault := m.Default()
	if !hasDefault {
		def, hasDefault = target.Default()
	}

	switch {
	case m.EventHeader() && m.EventPayload():
		return Optional, fmt.Errorf("%w: member %s is both event header and event payload", ErrUncovered, m.ID())
	case m.Required() && hasDefault && def == nil:
		return Optional, fmt.Errorf("%w: required member %s has a null default", ErrUncovered, m.ID())
	case m.Required():
		return Required, nil
	case target.Streaming() || m.Streaming():
		return Streaming, nil
	case hasDefault && def != nil:
		return Defaulted, nil
	default:
		return Optional, nil
	}
}

// IsOptional reports whether a member may be absent.
func (c *Classifier) IsOptional(m *model.Member) (bool, error) {
	n, err := c.Nullability(m)
	if err != nil {
		return false, err
	}

	return n == Optional, nil
}

// IsDirectlyConstrained reports whether the shape itself carries a
// constraint: a structure with a required member or a member-level length,
// pattern or range restriction, a string, blob, list or map with a length
// restriction, a non-enum string with a pattern, a number with a range (enums
// and intEnums too when configured).
func (c *Classifier) IsDirectlyConstrained(s *model.Shape) bool {
	if v, ok := c.direct[s.ID]; ok {
		return v
	}

	v := c.directlyConstrained(s)
	c.direct[s.ID] = v

	return v
}

func (c *Classifier) directlyConstrained(s *model.Shape) bool {
	switch {
	case s.Kind == model.KindStructure:
		for _, m := range s.Members {
			if m.Required() {
				return true
			}

			target, err := c.model.Target(m)
			if err == nil && restricts(m.Traits, target) {
				return true
			}
		}

		return false
	case s.IsEnum() || s.Kind == model.KindIntEnum:
		return c.opts.EnumsConstrained || restricts(s.Traits, s)
	default:
		return restricts(s.Traits, s)
	}
}

// restricts reports whether the traits carry a length, pattern or range
// restriction that applies to values of t.
func restricts(traits model.Traits, t *model.Shape) bool {
	switch t.Kind {
	case model.KindString, model.KindEnum:
		_, hasLength := traits.Length()
		_, hasPattern := traits.Pattern()

		return hasLength || (hasPattern && !t.IsEnum())
	case model.KindBlob, model.KindList, model.KindSet, model.KindMap:
		_, hasLength := traits.Length()
		return hasLength
	default:
		if !t.Kind.IsNumber() {
			return false
		}

		_, hasRange := traits.Range()

		return hasRange
	}
}

// CanReachConstrained reports whether the shape, or any shape reachable from
// it through member, element or value edges, is directly constrained.
func (c *Classifier) CanReachConstrained(s *model.Shape) bool {
	if v, ok := c.reach[s.ID]; ok {
		return v
	}

	v := false

	for _, id := range c.model.Walk(s.ID) {
		other, ok := c.model.Shape(id)
		if ok && c.IsDirectlyConstrained(other) {
			v = true
			break
		}
	}

	c.reach[s.ID] = v

	return v
}

// MemberCanReachConstrained examines only the member's target. Members are
// never walked themselves since a member edge leads back to its container.
func (c *Classifier) MemberCanReachConstrained(m *model.Member) (bool, error) {
	target, err := c.model.Target(m)
	if err != nil {
		return false, err
	}

	return c.CanReachConstrained(target), nil
}

// RequiresBuilder reports whether parsed values of the shape go through a
// builder before validation.
func (c *Classifier) RequiresBuilder(s *model.Shape) bool {
	return s.Kind == model.KindStructure && !model.IsUnit(s.ID) && c.CanReachConstrained(s)
}
