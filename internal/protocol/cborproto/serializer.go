// Package cborproto generates CBOR serializers and parsers for the rpcv2Cbor
// protocol. Generated code builds and walks smithy-go encoding/cbor value
// trees through the cborrt runtime.
package cborproto

import (
	"fmt"

	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

const purpose = "CBOR"

// valueType is the Go type of a serialized CBOR value in generated code.
const valueType = protocol.SmithyCBORPkg + ".Value"

// Generator is the CBOR protocol.Codec.
type Generator struct {
	ctx *protocol.Context
}

// New creates a CBOR generator.
func New(ctx *protocol.Context) *Generator {
	return &Generator{ctx: ctx}
}

var _ protocol.Codec = (*Generator)(nil)

func (g *Generator) variantKey(union *model.Shape, m *model.Member) string {
	return g.ctx.Hooks.WireName(hooks.UnionVariantWireName{
		Protocol: "cbor",
		Union:    union,
		Member:   m,
		Current:  m.Name,
	})
}

// SerializeInput implements protocol.Codec.
func (g *Generator) SerializeInput(_, s *model.Shape) (string, error) {
	return g.document(s, purpose, nil)
}

// SerializeOutput implements protocol.Codec.
func (g *Generator) SerializeOutput(_, s *model.Shape) (string, error) {
	return g.document(s, purpose, nil)
}

// SerializeError implements protocol.Codec.
func (g *Generator) SerializeError(s *model.Shape) (string, error) {
	return g.document(s, purpose, nil)
}

// SerializePayload implements protocol.Codec.
func (g *Generator) SerializePayload(s *model.Shape, p string, include func(*model.Member) bool) (string, error) {
	return g.document(s, p+purpose, include)
}

// ErrorMetadata implements protocol.Codec.
func (g *Generator) ErrorMetadata(body string) string {
	return fmt.Sprintf("cborrt.ErrorComponents(%s)", body)
}

func (g *Generator) document(s *model.Shape, p string, include func(*model.Member) bool) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: "Doc" + p, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		fields, err := g.ctx.DocumentFields(s, include)
		if err != nil {
			return "", err
		}

		fn, err := g.structure(s, p, fields)
		if err != nil {
			return "", err
		}

		var w emit.Writer

		w.Open("func %s(v *%s) ([]byte, error) {", name, g.ctx.TypeName(s))
		w.Line("av, err := %s(v)", fn)
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("return cborrt.Encode(av), nil")
		w.Close("}")

		return w.String(), nil
	})
}

// sink is where a serialized value goes: assigned to a map entry, or
// appended to a list.
type sink struct {
	entry string
	list  string
}

func entrySink(format string, args ...any) sink {
	return sink{entry: fmt.Sprintf(format, args...)}
}

func (s sink) put(w *emit.Writer, val string) {
	if s.list != "" {
		w.Line("%s = append(%s, %s)", s.list, s.list, val)
		return
	}

	w.Line("%s = %s", s.entry, val)
}

// body collects the statements of one serializer and whether they assign
// through a function-scoped err.
type body struct {
	emit.Writer
	usesErr bool
}

// structure returns the serializer of a structure restricted to fields,
// producing a map with one entry per set member.
func (g *Generator) structure(s *model.Shape, p string, fields []protocol.Field) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: p, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		var b body

		b.Line("m := %s.Map{}", protocol.SmithyCBORPkg)
		b.Block(g.ctx.Hooks.Write(hooks.StructSerializerPrologue{Protocol: "cbor", Shape: s, Value: "v"}))

		if s.IsError() && p == purpose {
			b.Line("m[\"__type\"] = %s.String(%q)", protocol.SmithyCBORPkg, string(s.ID))
		}

		for _, f := range fields {
			if err := g.field(&b, f); err != nil {
				return "", err
			}
		}

		var w emit.Writer

		w.Open("func %s(v *%s) (%s, error) {", name, g.ctx.TypeName(s), valueType)
		w.Open("if v == nil {")
		w.Line("return cborrt.Null(), nil")
		w.Close("}")
		w.Blank()

		if b.usesErr {
			w.Line("var err error")
			w.Blank()
		}

		w.Block(b.String())
		w.Blank()
		w.Line("return m, nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) field(b *body, f protocol.Field) error {
	expr := "v." + f.Name

	switch {
	case f.Target.Kind == model.KindStructure:
		if f.Optional() {
			b.Open("if %s != nil {", expr)
			defer b.Close("}")
		}
	case f.Pointer:
		b.Open("if %s != nil {", expr)
		defer b.Close("}")

		expr = "*" + expr
	case f.Optional():
		b.Open("if %s != nil {", expr)
		defer b.Close("}")
	default:
		if cond := g.ctx.SuppressDefault(f, expr); cond != "" {
			b.Open("if %s {", cond)
			defer b.Close("}")
		}
	}

	return g.value(b, f.Target, expr, entrySink("m[%q]", f.Member.Name))
}

// scalar returns the value expression of a scalar held in expr.
// Timestamps are always tagged epoch seconds.
func scalar(t *model.Shape, expr string) (string, bool) {
	pkg := protocol.SmithyCBORPkg

	switch t.Kind {
	case model.KindString, model.KindEnum:
		if t.IsEnum() {
			return fmt.Sprintf("%s.String(string(%s))", pkg, expr), true
		}

		return fmt.Sprintf("%s.String(%s)", pkg, expr), true
	case model.KindBoolean:
		return fmt.Sprintf("%s.Bool(%s)", pkg, expr), true
	case model.KindByte, model.KindShort, model.KindInteger, model.KindIntEnum:
		return fmt.Sprintf("cborrt.Int(int64(%s))", expr), true
	case model.KindLong:
		return fmt.Sprintf("cborrt.Int(%s)", expr), true
	case model.KindFloat:
		return fmt.Sprintf("%s.Float32(%s)", pkg, expr), true
	case model.KindDouble:
		return fmt.Sprintf("%s.Float64(%s)", pkg, expr), true
	case model.KindBlob:
		return fmt.Sprintf("%s.Slice(%s)", pkg, expr), true
	case model.KindTimestamp:
		return fmt.Sprintf("cborrt.Timestamp(%s)", expr), true
	default:
		return "", false
	}
}

// value stores expr, a value of t's Go type (a pointer for structures), into
// dst. Aggregates into a map entry go through the function-scoped err;
// aggregates appended to a list declare their own.
func (g *Generator) value(b *body, t *model.Shape, expr string, dst sink) error {
	if val, ok := scalar(t, expr); ok {
		dst.put(&b.Writer, val)
		return nil
	}

	switch t.Kind {
	case model.KindStructure, model.KindUnion, model.KindList, model.KindSet, model.KindMap:
	default:
		return protocol.Unsupported(t)
	}

	fn, err := g.aggregate(t)
	if err != nil {
		return err
	}

	if dst.list != "" {
		b.Line("av, err := %s(%s)", fn, expr)
		b.Open("if err != nil {")
		b.Line("return nil, err")
		b.Close("}")
		b.Blank()
		dst.put(&b.Writer, "av")

		return nil
	}

	b.usesErr = true
	b.Open("if %s, err = %s(%s); err != nil {", dst.entry, fn, expr)
	b.Line("return nil, err")
	b.Close("}")

	return nil
}

func (g *Generator) aggregate(t *model.Shape) (string, error) {
	switch t.Kind {
	case model.KindStructure:
		fields, err := g.ctx.DocumentFields(t, nil)
		if err != nil {
			return "", err
		}

		return g.structure(t, purpose, fields)
	case model.KindUnion:
		return g.union(t)
	case model.KindMap:
		return g.mapShape(t)
	default:
		return g.list(t)
	}
}

func (g *Generator) list(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		var b body

		b.Line("l := make(%s.List, 0, len(v))", protocol.SmithyCBORPkg)
		b.Blank()
		b.Open("for _, x := range v {")

		if err := g.element(&b, el, "x", sink{list: "l"}); err != nil {
			return "", err
		}

		b.Close("}")

		var w emit.Writer

		w.Open("func %s(v []%s) (%s, error) {", name, el.GoType, valueType)
		w.Block(b.String())
		w.Blank()
		w.Line("return l, nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) mapShape(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		var b body

		b.Line("m := make(%s.Map, len(v))", protocol.SmithyCBORPkg)
		b.Blank()
		b.Open("for k, x := range v {")

		if err := g.element(&b, el, "x", sink{entry: "m[k]"}); err != nil {
			return "", err
		}

		b.Close("}")

		var w emit.Writer

		w.Open("func %s(v map[string]%s) (%s, error) {", name, el.GoType, valueType)

		if b.usesErr {
			w.Line("var err error")
			w.Blank()
		}

		w.Block(b.String())
		w.Blank()
		w.Line("return m, nil")
		w.Close("}")

		return w.String(), nil
	})
}

// element stores one entry held in x. Sparse containers keep nil entries as
// null; dense ones drop them.
func (g *Generator) element(b *body, el protocol.Element, x string, dst sink) error {
	nilable := el.Pointer || symbol.Nilable(el.Target)

	switch {
	case el.Sparse && nilable:
		b.Open("if %s == nil {", x)
		dst.put(&b.Writer, "cborrt.Null()")
		b.Line("continue")
		b.Close("}")
		b.Blank()
	case nilable:
		b.Open("if %s == nil {", x)
		b.Line("continue")
		b.Close("}")
		b.Blank()
	}

	expr := x

	switch {
	case el.Target.Kind == model.KindStructure && !el.Pointer:
		expr = "&" + x
	case el.Pointer && el.Target.Kind != model.KindStructure:
		expr = "*" + x
	}

	return g.value(b, el.Target, expr, dst)
}

// union returns the serializer writing a union as a single-entry map. Unit
// variants hold an empty map.
func (g *Generator) union(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		var b body

		b.Line("m := %s.Map{}", protocol.SmithyCBORPkg)
		b.Blank()
		b.Open("switch uv := v.(type) {")
		b.Middle("case nil:")
		b.Line("return cborrt.Null(), nil")

		for _, m := range s.Members {
			target, err := g.ctx.Model.Target(m)
			if err != nil {
				return "", err
			}

			b.Middle("case *%s:", g.ctx.Symbols.VariantName(s.ID, m))

			dst := entrySink("m[%q]", g.variantKey(s, m))

			if model.IsUnit(target.ID) {
				dst.put(&b.Writer, protocol.SmithyCBORPkg+".Map{}")
				continue
			}

			expr := "uv.Value"
			if target.Kind == model.KindStructure {
				expr = "&uv.Value"
			}

			if err := g.value(&b, target, expr, dst); err != nil {
				return "", err
			}
		}

		b.Middle("case *UnknownUnionMember:")
		b.Line("return nil, fmt.Errorf(\"cannot serialize unknown %s member %%q\", uv.Tag)", g.ctx.TypeName(s))
		b.Middle("default:")
		b.Line("return nil, fmt.Errorf(\"unexpected %s member %%T\", v)", g.ctx.TypeName(s))
		b.Close("}")

		var w emit.Writer

		w.Open("func %s(v %s) (%s, error) {", name, g.ctx.TypeName(s), valueType)

		if b.usesErr {
			w.Line("var err error")
			w.Blank()
		}

		w.Block(b.String())
		w.Blank()
		w.Line("return m, nil")
		w.Close("}")

		return w.String(), nil
	})
}
