package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/boynton/data"
)

// ErrUnknownShape is returned when a shape ID does not resolve.
var ErrUnknownShape = errors.New("unknown shape")

type astDocument struct {
	Smithy string       `json:"smithy"`
	Shapes *astShapes   `json:"shapes"`
	Meta   *data.Object `json:"metadata,omitempty"`
}

// astShapes keeps the document order of the shapes object.
type astShapes struct {
	keys     []string
	bindings map[string]*astShape
}

func (s *astShapes) UnmarshalJSON(raw []byte) error {
	keys, err := data.JsonKeysInOrder(raw)
	if err != nil {
		return err
	}

	bindings := make(map[string]*astShape, len(keys))
	if err := json.Unmarshal(raw, &bindings); err != nil {
		return err
	}

	*s = astShapes{keys: keys, bindings: bindings}

	return nil
}

// astMembers keeps the document order of a members object.
type astMembers struct {
	keys     []string
	bindings map[string]*astMember
}

func (m *astMembers) UnmarshalJSON(raw []byte) error {
	keys, err := data.JsonKeysInOrder(raw)
	if err != nil {
		return err
	}

	bindings := make(map[string]*astMember, len(keys))
	if err := json.Unmarshal(raw, &bindings); err != nil {
		return err
	}

	*m = astMembers{keys: keys, bindings: bindings}

	return nil
}

type astRef struct {
	Target string `json:"target"`
}

type astMember struct {
	Target string       `json:"target"`
	Traits *data.Object `json:"traits,omitempty"`
}

type astShape struct {
	Type    string       `json:"type"`
	Traits  *data.Object `json:"traits,omitempty"`
	Member  *astMember   `json:"member,omitempty"`
	Key     *astMember   `json:"key,omitempty"`
	Value   *astMember   `json:"value,omitempty"`
	Members *astMembers  `json:"members,omitempty"`

	Input  *astRef   `json:"input,omitempty"`
	Output *astRef   `json:"output,omitempty"`
	Errors []*astRef `json:"errors,omitempty"`

	Operations []*astRef `json:"operations,omitempty"`
	Resources  []*astRef `json:"resources,omitempty"`
	Version    string    `json:"version,omitempty"`

	Create     *astRef   `json:"create,omitempty"`
	Put        *astRef   `json:"put,omitempty"`
	Read       *astRef   `json:"read,omitempty"`
	Update     *astRef   `json:"update,omitempty"`
	Delete     *astRef   `json:"delete,omitempty"`
	List       *astRef   `json:"list,omitempty"`
	Collection []*astRef `json:"collectionOperations,omitempty"`
}

// LoadFiles reads and merges Smithy JSON AST files.
func LoadFiles(paths ...string) (*Model, error) {
	docs := make([][]byte, 0, len(paths))

	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading model %s: %w", p, err)
		}

		docs = append(docs, raw)
	}

	return Parse(docs...)
}

// Parse builds a Model from one or more JSON AST documents. A shape ID
// declared by more than one document is an error.
func Parse(docs ...[]byte) (*Model, error) {
	m := newModel()

	for i, raw := range docs {
		var doc astDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing model document %d: %w", i, err)
		}

		if !strings.HasPrefix(doc.Smithy, "1") && !strings.HasPrefix(doc.Smithy, "2") {
			return nil, fmt.Errorf("model document %d: unsupported smithy version %q", i, doc.Smithy)
		}

		if doc.Shapes == nil {
			continue
		}

		for _, key := range doc.Shapes.keys {
			id := ShapeID(key)
			if _, exists := m.shapes[id]; exists {
				return nil, fmt.Errorf("model document %d: duplicate shape %s", i, id)
			}

			shape, err := convertShape(id, doc.Shapes.bindings[key])
			if err != nil {
				return nil, fmt.Errorf("model document %d: %w", i, err)
			}

			m.add(shape)
		}
	}

	if err := m.resolve(); err != nil {
		return nil, err
	}

	return m, nil
}

func convertShape(id ShapeID, a *astShape) (*Shape, error) {
	if a == nil {
		return nil, fmt.Errorf("shape %s: empty definition", id)
	}

	kind := ParseKind(a.Type)
	if kind == KindUnknown {
		return nil, fmt.Errorf("shape %s: unsupported type %q", id, a.Type)
	}

	s := &Shape{
		Traits:  NewTraits(a.Traits),
		ID:      id,
		Kind:    kind,
		Version: a.Version,
	}

	member := func(name string, am *astMember) *Member {
		if am == nil {
			return nil
		}

		return &Member{Traits: NewTraits(am.Traits), Container: id, Name: name, Target: ShapeID(am.Target)}
	}

	switch kind {
	case KindList, KindSet:
		s.Member = member("member", a.Member)
		if s.Member == nil {
			return nil, fmt.Errorf("shape %s: %s without member", id, kind)
		}
	case KindMap:
		s.Key = member("key", a.Key)
		s.Value = member("value", a.Value)

		if s.Key == nil || s.Value == nil {
			return nil, fmt.Errorf("shape %s: map without key or value", id)
		}
	case KindStructure, KindUnion, KindEnum, KindIntEnum:
		if a.Members != nil {
			for _, name := range a.Members.keys {
				m := member(name, a.Members.bindings[name])
				if kind == KindEnum || kind == KindIntEnum {
					m.Target = "smithy.api#Unit"
				}

				s.Members = append(s.Members, m)
			}
		}
	}

	refs := func(list []*astRef) []ShapeID {
		var out []ShapeID

		for _, r := range list {
			if r != nil && r.Target != "" {
				out = append(out, ShapeID(r.Target))
			}
		}

		return out
	}

	switch kind {
	case KindOperation:
		s.Input, s.Output = "smithy.api#Unit", "smithy.api#Unit"
		if a.Input != nil {
			s.Input = ShapeID(a.Input.Target)
		}

		if a.Output != nil {
			s.Output = ShapeID(a.Output.Target)
		}

		s.Errors = refs(a.Errors)
	case KindService:
		s.Operations = refs(a.Operations)
		s.Resources = refs(a.Resources)
		s.Errors = refs(a.Errors)
	case KindResource:
		s.Operations = refs(a.Operations)
		s.Operations = append(s.Operations, refs(a.Collection)...)
		s.Operations = append(s.Operations, refs([]*astRef{a.Create, a.Put, a.Read, a.Update, a.Delete, a.List})...)
		s.Resources = refs(a.Resources)
	}

	return s, nil
}

// resolve checks that every member target and operation reference exists.
func (m *Model) resolve() error {
	var problems []string

	check := func(from ShapeID, to ShapeID) {
		if to == "" {
			return
		}

		if _, ok := m.Shape(to); !ok {
			problems = append(problems, fmt.Sprintf("%s -> %s", from, to))
		}
	}

	for _, id := range m.order {
		s := m.shapes[id]

		for _, mem := range s.AllMembers() {
			if s.Kind == KindEnum || s.Kind == KindIntEnum {
				continue
			}

			check(mem.ID(), mem.Target)
		}

		check(id, s.Input)
		check(id, s.Output)

		for _, ref := range slices.Concat(s.Errors, s.Operations, s.Resources) {
			check(id, ref)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownShape, strings.Join(problems, ", "))
	}

	return nil
}

// AllMembers returns every member of the shape: structure/union members, the
// list member, or the map key and value.
func (s *Shape) AllMembers() []*Member {
	switch s.Kind {
	case KindList, KindSet:
		return []*Member{s.Member}
	case KindMap:
		return []*Member{s.Key, s.Value}
	default:
		return s.Members
	}
}
