// Package jsonproto generates JSON serializers and parsers for the awsJson
// and restJson protocols. Serializers write through smithy-go's JSON encoder;
// parsers read with the jsonrt token decoder.
package jsonproto

import (
	"fmt"

	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

const purpose = "JSON"

// Generator is the JSON protocol.Codec.
type Generator struct {
	ctx *protocol.Context
}

// New creates a JSON generator.
func New(ctx *protocol.Context) *Generator {
	return &Generator{ctx: ctx}
}

var _ protocol.Codec = (*Generator)(nil)

// memberKey is the JSON object key of a structure or union member.
func (g *Generator) memberKey(m *model.Member) string {
	if g.ctx.Protocol.UseJSONName {
		if name, ok := m.JSONName(); ok {
			return name
		}
	}

	return m.Name
}

// variantKey is the discriminator of a union variant after hooks.
func (g *Generator) variantKey(union *model.Shape, m *model.Member) string {
	return g.ctx.Hooks.WireName(hooks.UnionVariantWireName{
		Protocol: "json",
		Union:    union,
		Member:   m,
		Current:  g.memberKey(m),
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

// SerializeError implements protocol.Codec. Error structures carry their
// shape ID under __type.
func (g *Generator) SerializeError(s *model.Shape) (string, error) {
	return g.document(s, purpose, nil)
}

// SerializePayload implements protocol.Codec.
func (g *Generator) SerializePayload(s *model.Shape, p string, include func(*model.Member) bool) (string, error) {
	return g.document(s, p+purpose, include)
}

// ErrorMetadata implements protocol.Codec.
func (g *Generator) ErrorMetadata(body string) string {
	return fmt.Sprintf("jsonrt.ErrorComponents(%s)", body)
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
		w.Line("enc := smithyjson.NewEncoder()")
		w.Open("if err := %s(v, enc.Value); err != nil {", fn)
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("return enc.Bytes(), nil")
		w.Close("}")

		return w.String(), nil
	})
}

// structure returns the serializer of a structure restricted to fields.
func (g *Generator) structure(s *model.Shape, p string, fields []protocol.Field) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: p, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		var w emit.Writer

		w.Open("func %s(v *%s, value smithyjson.Value) error {", name, g.ctx.TypeName(s))
		w.Open("if v == nil {")
		w.Line("value.Null()")
		w.Line("return nil")
		w.Close("}")
		w.Blank()
		w.Line("object := value.Object()")
		w.Line("defer object.Close()")
		w.Blank()
		w.Block(g.ctx.Hooks.Write(hooks.StructSerializerPrologue{Protocol: "json", Shape: s, Value: "v"}))

		if s.IsError() && p == purpose {
			w.Line("object.Key(\"__type\").String(%q)", string(s.ID))
		}

		for _, f := range fields {
			if err := g.field(&w, f); err != nil {
				return "", err
			}
		}

		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) field(w *emit.Writer, f protocol.Field) error {
	dst := fmt.Sprintf("object.Key(%q)", g.memberKey(f.Member))
	expr := "v." + f.Name

	switch {
	case f.Target.Kind == model.KindStructure:
		// Pointer either way; the structure serializer writes null for nil.
		if f.Optional() {
			w.Open("if %s != nil {", expr)
			defer w.Close("}")
		}

		return g.value(w, f.Member, f.Target, expr, dst)
	case f.Pointer:
		w.Open("if %s != nil {", expr)
		defer w.Close("}")

		return g.value(w, f.Member, f.Target, "*"+expr, dst)
	case f.Optional():
		w.Open("if %s != nil {", expr)
		defer w.Close("}")

		return g.value(w, f.Member, f.Target, expr, dst)
	default:
		if cond := g.ctx.SuppressDefault(f, expr); cond != "" {
			w.Open("if %s {", cond)
			defer w.Close("}")
		}

		return g.value(w, f.Member, f.Target, expr, dst)
	}
}

// value writes expr, a value of t's Go type (a pointer for structures), to
// the smithyjson.Value expression dst.
func (g *Generator) value(w *emit.Writer, m *model.Member, t *model.Shape, expr, dst string) error {
	switch t.Kind {
	case model.KindString, model.KindEnum:
		if t.IsEnum() {
			w.Line("%s.String(string(%s))", dst, expr)
		} else {
			w.Line("%s.String(%s)", dst, expr)
		}
	case model.KindBoolean:
		w.Line("%s.Boolean(%s)", dst, expr)
	case model.KindByte:
		w.Line("%s.Byte(%s)", dst, expr)
	case model.KindShort:
		w.Line("%s.Short(%s)", dst, expr)
	case model.KindInteger:
		w.Line("%s.Integer(%s)", dst, expr)
	case model.KindIntEnum:
		w.Line("%s.Integer(int32(%s))", dst, expr)
	case model.KindLong:
		w.Line("%s.Long(%s)", dst, expr)
	case model.KindFloat:
		w.Line("jsonrt.WriteFloat(%s, float64(%s), 32)", dst, expr)
	case model.KindDouble:
		w.Line("jsonrt.WriteFloat(%s, %s, 64)", dst, expr)
	case model.KindBlob:
		w.Line("%s.Base64EncodeBytes(%s)", dst, expr)
	case model.KindTimestamp:
		switch g.ctx.TimestampFormat(m, t) {
		case protocol.DateTime:
			w.Line("%s.String(timefmt.FormatDateTime(%s))", dst, expr)
		case protocol.HTTPDate:
			w.Line("%s.String(timefmt.FormatHTTPDate(%s))", dst, expr)
		default:
			w.Line("%s.Double(timefmt.EpochSeconds(%s))", dst, expr)
		}
	case model.KindDocument:
		w.Open("if err := jsonrt.WriteDocument(%s, %s); err != nil {", dst, expr)
		w.Line("return err")
		w.Close("}")
	case model.KindStructure, model.KindUnion, model.KindList, model.KindSet, model.KindMap:
		fn, err := g.aggregate(t)
		if err != nil {
			return err
		}

		w.Open("if err := %s(%s, %s); err != nil {", fn, expr, dst)
		w.Line("return err")
		w.Close("}")
	default:
		return protocol.Unsupported(t)
	}

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

		var w emit.Writer

		w.Open("func %s(v []%s, value smithyjson.Value) error {", name, el.GoType)
		w.Line("array := value.Array()")
		w.Line("defer array.Close()")
		w.Blank()
		w.Open("for _, e := range v {")

		if err := g.element(&w, el, "e", "array.Value()"); err != nil {
			return "", err
		}

		w.Close("}")
		w.Blank()
		w.Line("return nil")
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

		var w emit.Writer

		w.Open("func %s(v map[string]%s, value smithyjson.Value) error {", name, el.GoType)
		w.Line("object := value.Object()")
		w.Line("defer object.Close()")
		w.Blank()
		w.Line("keys := make([]string, 0, len(v))")
		w.Open("for k := range v {")
		w.Line("keys = append(keys, k)")
		w.Close("}")
		w.Blank()
		w.Line("sort.Strings(keys)")
		w.Blank()
		w.Open("for _, k := range keys {")
		w.Line("e := v[k]")

		if err := g.element(&w, el, "e", "object.Key(k)"); err != nil {
			return "", err
		}

		w.Close("}")
		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}

// element writes one list element or map value held in variable e. Sparse
// containers write null for nil entries; dense ones skip them.
func (g *Generator) element(w *emit.Writer, el protocol.Element, e, dst string) error {
	nilable := el.Pointer || symbol.Nilable(el.Target)

	switch {
	case el.Sparse && nilable:
		w.Open("if %s == nil {", e)
		w.Line("%s.Null()", dst)
		w.Line("continue")
		w.Close("}")
	case nilable:
		w.Open("if %s == nil {", e)
		w.Line("continue")
		w.Close("}")
	}

	expr := e

	switch {
	case el.Target.Kind == model.KindStructure && !el.Pointer:
		expr = "&" + e
	case el.Pointer && el.Target.Kind != model.KindStructure:
		expr = "*" + e
	}

	return g.value(w, el.Member, el.Target, expr, dst)
}

func (g *Generator) union(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		var w emit.Writer

		w.Open("func %s(v %s, value smithyjson.Value) error {", name, g.ctx.TypeName(s))
		w.Open("if v == nil {")
		w.Line("value.Null()")
		w.Line("return nil")
		w.Close("}")
		w.Blank()
		w.Line("object := value.Object()")
		w.Line("defer object.Close()")
		w.Blank()
		w.Open("switch uv := v.(type) {")

		for _, m := range s.Members {
			target, err := g.ctx.Model.Target(m)
			if err != nil {
				return "", err
			}

			dst := fmt.Sprintf("object.Key(%q)", g.variantKey(s, m))

			w.Middle("case *%s:", g.ctx.Symbols.VariantName(s.ID, m))

			if model.IsUnit(target.ID) {
				w.Line("%s.Object().Close()", dst)
				continue
			}

			expr := "uv.Value"
			if target.Kind == model.KindStructure {
				expr = "&uv.Value"
			}

			if err := g.value(&w, m, target, expr, dst); err != nil {
				return "", err
			}
		}

		w.Middle("case *UnknownUnionMember:")
		w.Line("return fmt.Errorf(\"cannot serialize unknown %s member %%q\", uv.Tag)", g.ctx.TypeName(s))
		w.Middle("default:")
		w.Line("return fmt.Errorf(\"unexpected %s member %%T\", v)", g.ctx.TypeName(s))
		w.Close("}")
		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}
