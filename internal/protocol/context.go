package protocol

import (
	"fmt"
	"strconv"

	"codec-generator/internal/constraint"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

// Runtime import paths used by generated code.
const (
	RuntimeCodec  = "codec-generator/codec"
	RuntimeJSON   = "codec-generator/codec/jsonrt"
	RuntimeCBOR   = "codec-generator/codec/cborrt"
	RuntimeXML    = "codec-generator/codec/xmlrt"
	RuntimeQuery  = "codec-generator/codec/queryrt"
	RuntimeEvent  = "codec-generator/codec/eventrt"
	RuntimeTime   = "codec-generator/codec/timefmt"
	SmithyJSON    = "github.com/aws/smithy-go/encoding/json"
	SmithyCBOR    = "github.com/aws/smithy-go/encoding/cbor"
	SmithyXML     = "github.com/aws/smithy-go/encoding/xml"
	Smithy        = "github.com/aws/smithy-go"
	EventStream   = "github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
	SmithyJSONPkg = "smithyjson"
	SmithyCBORPkg = "smithycbor"
	SmithyXMLPkg  = "smithyxml"
)

// Context is everything a generator needs, built once per run and passed to
// every generator constructor.
type Context struct {
	Model      *model.Model
	Symbols    *symbol.Provider
	Classifier *constraint.Classifier
	Policy     policy.Policy
	Hooks      *hooks.Registry
	Functions  *registry.Registry
	Protocol   Settings
	// Service is the service being generated, used for its version and
	// XML namespace.
	Service *model.Shape
	// SuppressDefaults omits number and boolean members equal to their
	// modeled default.
	SuppressDefaults bool
}

// Options configure NewContext.
type Options struct {
	Protocol         Settings
	Target           policy.Target
	Hooks            *hooks.Registry
	SuppressDefaults bool
}

// NewContext names the given shapes and wires the classifier, policy and
// function registry for one generation run. service may be nil when only
// shapes are generated.
func NewContext(m *model.Model, service *model.Shape, shapes []model.ShapeID, opts Options) (*Context, error) {
	symbols, err := symbol.NewProvider(m, shapes)
	if err != nil {
		return nil, err
	}

	pol := policy.New(opts.Target)

	return &Context{
		Model:   m,
		Symbols: symbols,
		Classifier: constraint.New(m, constraint.Options{
			EnumsConstrained: pol.EnumsConstrained(),
		}),
		Policy:           pol,
		Hooks:            opts.Hooks,
		Functions:        registry.New(symbols),
		Protocol:         opts.Protocol,
		Service:          service,
		SuppressDefaults: opts.SuppressDefaults,
	}, nil
}

// Field is a structure member as the generated code sees it.
type Field struct {
	Member      *model.Member
	Target      *model.Shape
	Name        string
	Nullability constraint.Nullability
	// Pointer is set when the Go field is a pointer to the target's type.
	Pointer bool
	// GoType is the Go type of the field.
	GoType string
}

// Optional reports whether the member may be absent.
func (f Field) Optional() bool {
	return f.Nullability == constraint.Optional
}

// InDocument reports whether the member travels in document bodies.
// Streaming members travel on the stream and event header/payload members in
// their message frames.
func (f Field) InDocument() bool {
	if f.Nullability == constraint.Streaming || f.Member.Streaming() || f.Target.Streaming() {
		return false
	}

	return !f.Member.EventHeader() && !f.Member.EventPayload()
}

// Fields classifies every member of a structure.
func (c *Context) Fields(s *model.Shape) ([]Field, error) {
	out := make([]Field, 0, len(s.Members))

	for _, m := range s.Members {
		f, err := c.Field(m)
		if err != nil {
			return nil, err
		}

		out = append(out, f)
	}

	return out, nil
}

// Field classifies one member.
func (c *Context) Field(m *model.Member) (Field, error) {
	target, err := c.Model.Target(m)
	if err != nil {
		return Field{}, err
	}

	n, err := c.Classifier.Nullability(m)
	if err != nil {
		return Field{}, err
	}

	optional := n == constraint.Optional

	goType, err := c.Symbols.FieldType(m, optional)
	if err != nil {
		return Field{}, err
	}

	return Field{
		Member:      m,
		Target:      target,
		Name:        c.Symbols.FieldName(m),
		Nullability: n,
		Pointer:     symbol.PointerField(target, optional),
		GoType:      goType,
	}, nil
}

// DocumentFields returns the fields accepted by include that travel in
// document bodies. A nil include accepts every member.
func (c *Context) DocumentFields(s *model.Shape, include func(*model.Member) bool) ([]Field, error) {
	all, err := c.Fields(s)
	if err != nil {
		return nil, err
	}

	out := make([]Field, 0, len(all))

	for _, f := range all {
		if include != nil && !include(f.Member) {
			continue
		}

		if include == nil && !f.InDocument() {
			continue
		}

		out = append(out, f)
	}

	return out, nil
}

// TimestampFormat resolves the wire format of a timestamp member: the
// member's trait, then the target's, then the protocol default.
func (c *Context) TimestampFormat(m *model.Member, target *model.Shape) string {
	if m != nil {
		if f, ok := m.TimestampFormat(); ok {
			return f
		}
	}

	if target != nil {
		if f, ok := target.TimestampFormat(); ok {
			return f
		}
	}

	return c.Protocol.DefaultTimestamp
}

// TypeName returns the Go type of a named shape.
func (c *Context) TypeName(s *model.Shape) string {
	return c.Symbols.TypeName(s.ID)
}

// GoType returns the Go type expression of values of s.
func (c *Context) GoType(s *model.Shape) (string, error) {
	return c.Symbols.GoType(s)
}

// Element describes a list element or map value.
type Element struct {
	Member *model.Member
	Target *model.Shape
	// GoType is the element type as stored in the container.
	GoType string
	// Pointer is set for sparse containers holding pointers to non-nilable
	// values.
	Pointer bool
	Sparse  bool
}

// Element describes the element (or map value) member of a container.
func (c *Context) Element(container *model.Shape) (Element, error) {
	m := container.Member
	if container.Kind == model.KindMap {
		m = container.Value
	}

	if m == nil {
		return Element{}, fmt.Errorf("%s %s has no element member", container.Kind, container.ID)
	}

	target, err := c.Model.Target(m)
	if err != nil {
		return Element{}, err
	}

	goType, err := c.Symbols.ElementType(container, m)
	if err != nil {
		return Element{}, err
	}

	sparse := container.Sparse()

	return Element{
		Member:  m,
		Target:  target,
		GoType:  goType,
		Pointer: sparse && !symbol.Nilable(target),
		Sparse:  sparse,
	}, nil
}

// Builder reports whether parsed values of s go through its builder.
func (c *Context) Builder(s *model.Shape) bool {
	return c.Policy.ParseIntoBuilder() && c.Classifier.RequiresBuilder(s)
}

// IntBounds returns Go expressions of the inclusive range of an integer
// kind, with the Go type to convert the parsed int64 into.
func IntBounds(kind model.Kind) (minV, maxV, goType string, ok bool) {
	switch kind {
	case model.KindByte:
		return "math.MinInt8", "math.MaxInt8", "int8", true
	case model.KindShort:
		return "math.MinInt16", "math.MaxInt16", "int16", true
	case model.KindInteger:
		return "math.MinInt32", "math.MaxInt32", "int32", true
	case model.KindLong:
		return "math.MinInt64", "math.MaxInt64", "int64", true
	default:
		return "", "", "", false
	}
}

// FloatBits returns the bit size of a float kind.
func FloatBits(kind model.Kind) (int, bool) {
	switch kind {
	case model.KindFloat:
		return 32, true
	case model.KindDouble:
		return 64, true
	default:
		return 0, false
	}
}

// DefaultLiteral returns the Go literal of a member's non-null default for
// scalar targets.
func (c *Context) DefaultLiteral(f Field) (string, bool) {
	def, ok := f.Member.Default()
	if !ok {
		def, ok = f.Target.Default()
	}

	if !ok || def == nil {
		return "", false
	}

	t := f.Target

	switch {
	case t.Kind == model.KindBoolean:
		b, ok := def.(bool)
		return strconv.FormatBool(b), ok
	case t.Kind == model.KindIntEnum:
		n, ok := number(def)
		return fmt.Sprintf("%s(%d)", c.TypeName(t), int64(n)), ok
	case t.Kind == model.KindFloat || t.Kind == model.KindDouble:
		n, ok := number(def)
		return strconv.FormatFloat(n, 'g', -1, 64), ok
	case t.Kind.IsNumber():
		n, ok := number(def)
		return strconv.FormatInt(int64(n), 10), ok
	case t.IsEnum():
		s, ok := def.(string)
		return fmt.Sprintf("%s(%q)", c.TypeName(t), s), ok
	case t.Kind == model.KindString:
		s, ok := def.(string)
		return strconv.Quote(s), ok
	default:
		return "", false
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
		return f, err == nil
	}
}

// SuppressDefault returns the condition under which a defaulted field is
// written, or "" when it is always written.
func (c *Context) SuppressDefault(f Field, expr string) string {
	if !c.SuppressDefaults || f.Nullability != constraint.Defaulted {
		return ""
	}

	if f.Target.Kind != model.KindBoolean && !f.Target.Kind.IsNumber() {
		return ""
	}

	lit, ok := c.DefaultLiteral(f)
	if !ok {
		return ""
	}

	return fmt.Sprintf("%s != %s", expr, lit)
}

// Unsupported reports a shape kind the codecs cannot handle.
func Unsupported(s *model.Shape) error {
	return fmt.Errorf("%w: %s is a %s", symbol.ErrUnsupportedShape, s.ID, s.Kind)
}
