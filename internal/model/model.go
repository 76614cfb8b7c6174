// Package model is the read-only shape graph consumed by the generators. It
// loads Smithy JSON AST documents, resolves prelude shapes, and answers
// kind, member, target, trait and reachability queries.
package model

import (
	"fmt"
	"slices"
	"sort"
)

// Model is a loaded, resolved shape graph.
type Model struct {
	shapes map[ShapeID]*Shape
	order  []ShapeID
}

func newModel() *Model {
	return &Model{shapes: make(map[ShapeID]*Shape)}
}

func (m *Model) add(s *Shape) {
	m.shapes[s.ID] = s
	m.order = append(m.order, s.ID)
}

// Shape returns the shape with the given ID, resolving prelude shapes.
func (m *Model) Shape(id ShapeID) (*Shape, bool) {
	if s, ok := m.shapes[id]; ok {
		return s, true
	}

	s, ok := prelude[id]

	return s, ok
}

// MustShape returns the shape or an error naming the missing ID.
func (m *Model) MustShape(id ShapeID) (*Shape, error) {
	s, ok := m.Shape(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, id)
	}

	return s, nil
}

// Target returns the shape a member points at.
func (m *Model) Target(mem *Member) (*Shape, error) {
	s, err := m.MustShape(mem.Target)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", mem.ID(), err)
	}

	return s, nil
}

// Shapes returns the declared (non-prelude) shapes in document order.
func (m *Model) Shapes() []*Shape {
	out := make([]*Shape, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.shapes[id])
	}

	return out
}

// ShapesOfKind returns declared shapes of the given kind sorted by ID.
func (m *Model) ShapesOfKind(kind Kind) []*Shape {
	var out []*Shape

	for _, id := range m.order {
		if s := m.shapes[id]; s.Kind == kind {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Services returns all service shapes sorted by ID.
func (m *Model) Services() []*Shape {
	return m.ShapesOfKind(KindService)
}

// Operations returns the operations bound to a service, directly or through
// its resources, sorted by ID.
func (m *Model) Operations(service ShapeID) ([]*Shape, error) {
	svc, err := m.MustShape(service)
	if err != nil {
		return nil, err
	}

	if svc.Kind != KindService {
		return nil, fmt.Errorf("shape %s is a %s, not a service", service, svc.Kind)
	}

	seen := make(map[ShapeID]bool)

	var collect func(s *Shape) error

	collect = func(s *Shape) error {
		for _, opID := range s.Operations {
			if seen[opID] {
				continue
			}

			seen[opID] = true
		}

		for _, resID := range s.Resources {
			res, err := m.MustShape(resID)
			if err != nil {
				return err
			}

			if err := collect(res); err != nil {
				return err
			}
		}

		return nil
	}

	if err := collect(svc); err != nil {
		return nil, err
	}

	ids := make([]ShapeID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	out := make([]*Shape, 0, len(ids))

	for _, id := range ids {
		op, err := m.MustShape(id)
		if err != nil {
			return nil, err
		}

		out = append(out, op)
	}

	return out, nil
}

// Walk returns every shape reachable from id through member targets and
// operation input/output/error edges, including id itself, sorted by ID.
// Cycles are followed once. Prelude shapes are included.
func (m *Model) Walk(id ShapeID) []ShapeID {
	visited := make(map[ShapeID]bool)
	m.walk(id, visited)

	out := make([]ShapeID, 0, len(visited))
	for k := range visited {
		out = append(out, k)
	}

	slices.Sort(out)

	return out
}

func (m *Model) walk(id ShapeID, visited map[ShapeID]bool) {
	if id == "" || visited[id] {
		return
	}

	s, ok := m.Shape(id)
	if !ok {
		return
	}

	visited[id] = true

	switch s.Kind {
	case KindOperation:
		m.walk(s.Input, visited)
		m.walk(s.Output, visited)

		for _, e := range s.Errors {
			m.walk(e, visited)
		}
	case KindEnum, KindIntEnum:
	default:
		for _, mem := range s.AllMembers() {
			m.walk(mem.Target, visited)
		}
	}
}
