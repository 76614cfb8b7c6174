// Package symbol maps shapes and members to Go identifiers and Go type
// expressions. Names are a pure function of the model, so two runs over the
// same model produce the same identifiers.
package symbol

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"codec-generator/internal/model"
)

// Provider assigns Go names to the shapes of one generation run.
type Provider struct {
	model *model.Model
	names map[model.ShapeID]string
	// owners maps a reserved Go identifier to what reserved it.
	owners map[string]string
}

// NewProvider assigns type names to the given shapes. Shapes whose plain Go
// name collides with another shape's are qualified with their namespace; a
// collision that survives qualification is an error.
func NewProvider(m *model.Model, shapes []model.ShapeID) (*Provider, error) {
	p := &Provider{
		model:  m,
		names:  make(map[model.ShapeID]string),
		owners: make(map[string]string),
	}

	sorted := append([]model.ShapeID(nil), shapes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	byName := make(map[string][]model.ShapeID)

	for _, id := range sorted {
		s, ok := m.Shape(id)
		if !ok || !needsTypeName(s) {
			continue
		}

		name := Exported(id.Name())
		byName[name] = append(byName[name], id)
	}

	for _, id := range sorted {
		s, ok := m.Shape(id)
		if !ok || !needsTypeName(s) {
			continue
		}

		name := Exported(id.Name())
		if len(byName[name]) > 1 {
			name = namespacePrefix(id.Namespace()) + name
		}

		if err := p.Reserve(name, string(id)); err != nil {
			return nil, err
		}

		p.names[id] = name
	}

	return p, nil
}

func needsTypeName(s *model.Shape) bool {
	switch s.Kind {
	case model.KindStructure, model.KindUnion, model.KindEnum, model.KindIntEnum:
		return !model.IsUnit(s.ID)
	case model.KindString:
		return s.IsEnum()
	default:
		return false
	}
}

func namespacePrefix(ns string) string {
	if i := strings.LastIndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}

	return Exported(ns)
}

// Reserve claims a package-level Go identifier for owner. Claiming a name
// that another owner holds is an error.
func (p *Provider) Reserve(name, owner string) error {
	if prev, ok := p.owners[name]; ok && prev != owner {
		return fmt.Errorf("%w: %s wanted by %s and %s", ErrNameCollision, name, prev, owner)
	}

	p.owners[name] = owner

	return nil
}

// Reserved reports whether the identifier is already claimed.
func (p *Provider) Reserved(name string) bool {
	_, ok := p.owners[name]
	return ok
}

// TypeName returns the Go type name assigned to a named shape.
func (p *Provider) TypeName(id model.ShapeID) string {
	if name, ok := p.names[id]; ok {
		return name
	}

	return Exported(id.Name())
}

// FieldName returns the Go struct field name of a member.
func (p *Provider) FieldName(m *model.Member) string {
	return Exported(m.Name)
}

// VariantName returns the Go type name of a union variant.
func (p *Provider) VariantName(union model.ShapeID, m *model.Member) string {
	return p.TypeName(union) + "Member" + Exported(m.Name)
}

// BuilderName returns the Go type name of a structure's builder.
func (p *Provider) BuilderName(id model.ShapeID) string {
	return p.TypeName(id) + "Builder"
}

// EnumConstName returns the Go constant name of an enum entry.
func (p *Provider) EnumConstName(id model.ShapeID, v model.EnumValue) string {
	name := v.Name
	if isUpper(name) {
		name = strings.ToLower(name)
	}

	return p.TypeName(id) + Exported(name)
}

// Exported converts a model name to an exported Go identifier.
func Exported(name string) string {
	s := strcase.ToCamel(name)
	if s == "" {
		return "X"
	}

	if r := []rune(s)[0]; !unicode.IsLetter(r) {
		s = "V" + s
	}

	return s
}

// Unexported converts a model name to an unexported Go identifier.
func Unexported(name string) string {
	s := Exported(name)
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])

	return string(r)
}

func isUpper(s string) bool {
	hasLetter := false

	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}

		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}

	return hasLetter
}
