package jsonproto

import (
	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/registry"
)

// ParseInput implements protocol.Codec.
func (g *Generator) ParseInput(_, s *model.Shape, builder bool) (string, error) {
	return g.parseDocument(s, purpose, nil, builder)
}

// ParseOutput implements protocol.Codec.
func (g *Generator) ParseOutput(_, s *model.Shape) (string, error) {
	return g.parseDocument(s, purpose, nil, false)
}

// ParseError implements protocol.Codec.
func (g *Generator) ParseError(s *model.Shape) (string, error) {
	return g.parseDocument(s, purpose, nil, false)
}

// ParsePayload implements protocol.Codec.
func (g *Generator) ParsePayload(s *model.Shape, p string, include func(*model.Member) bool) (string, error) {
	return g.parseDocument(s, p+purpose, include, false)
}

func (g *Generator) parseDocument(s *model.Shape, p string, include func(*model.Member) bool, builder bool) (string, error) {
	docPurpose := "Doc" + p
	if builder {
		docPurpose += "Builder"
	}

	key := registry.Key{Shape: s.ID, Purpose: docPurpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		fields, err := g.ctx.DocumentFields(s, include)
		if err != nil {
			return "", err
		}

		typ := g.ctx.TypeName(s)
		if builder {
			typ = g.ctx.Symbols.BuilderName(s.ID)
		}

		fn, err := g.parseStructure(s, p, fields, builder)
		if err != nil {
			return "", err
		}

		var w emit.Writer

		w.Open("func %s(data []byte) (*%s, error) {", name, typ)
		w.Open("if len(bytes.TrimSpace(data)) == 0 {")
		w.Line("data = []byte(\"{}\")")
		w.Close("}")
		w.Blank()
		w.Line("d := jsonrt.NewDecoder(data)")
		w.Blank()
		w.Line("v, err := %s(d)", fn)
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if v == nil {")
		w.Line("return nil, codec.NewDecodeError(d.Offset(), \"expected %s object, got null\")", s.Name())
		w.Close("}")
		w.Blank()
		w.Open("if !d.AtEOF() {")
		w.Line("return nil, codec.NewDecodeError(d.Offset(), \"unexpected data after %s object\")", s.Name())
		w.Close("}")
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

// parseStructure returns the parser of a structure restricted to fields. In
// builder mode the parser fills the structure's builder and skips required
// checks, which Build performs.
func (g *Generator) parseStructure(s *model.Shape, p string, fields []protocol.Field, builder bool) (string, error) {
	fnPurpose := p
	typ := g.ctx.TypeName(s)

	if builder {
		fnPurpose += "Builder"
		typ = g.ctx.Symbols.BuilderName(s.ID)
	}

	key := registry.Key{Shape: s.ID, Purpose: fnPurpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		var w emit.Writer

		w.Open("func %s(d *jsonrt.Decoder) (*%s, error) {", name, typ)
		w.Line("ok, err := d.BeginObject()")
		w.Open("if err != nil || !ok {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()

		if builder {
			w.Line("v := &%s{}", typ)
		} else {
			w.Line("v := &%s{%s}", typ, g.defaults(fields))
		}

		tracked := protocol.TrackRequired(&w, fields, builder)

		w.Blank()
		w.Open("for {")
		w.Line("key, more, err := d.NextKey()")
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if !more {")
		w.Line("break")
		w.Close("}")
		w.Blank()
		w.Open("switch key {")

		for _, f := range fields {
			w.Middle("case %q:", g.memberKey(f.Member))

			if err := g.read(&w, f.Member, f.Target); err != nil {
				return "", err
			}

			protocol.Assign(&w, f, builder)
		}

		w.Middle("default:")
		w.Open("if err := d.Skip(); err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Close("}")
		w.Close("}")

		protocol.CheckRequired(&w, s, fields, tracked, builder)

		w.Block(g.ctx.Hooks.Write(hooks.StructParserEpilogue{Protocol: "json", Shape: s, Target: "v"}))
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

// defaults renders the composite literal fields holding modeled defaults.
func (g *Generator) defaults(fields []protocol.Field) string {
	return protocol.DefaultsLiteral(g.ctx, fields)
}

// read emits code that reads one value of t into a variable named val. For
// scalars it also declares ok, false when the wire value was null; aggregate
// parsers return nil for null.
func (g *Generator) read(w *emit.Writer, m *model.Member, t *model.Shape) error {
	fail := func() {
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
	}

	switch t.Kind {
	case model.KindString, model.KindEnum:
		if !t.IsEnum() {
			w.Line("val, ok, err := d.ReadString()")
			fail()

			return nil
		}

		w.Line("s, ok, err := d.ReadString()")
		fail()
		w.Line("val := %s(s)", g.ctx.TypeName(t))
		g.rejectUnknownEnum(w, t, "val", "s")
	case model.KindBoolean:
		w.Line("val, ok, err := d.ReadBool()")
		fail()
	case model.KindByte, model.KindShort, model.KindInteger, model.KindLong:
		minV, maxV, goType, _ := protocol.IntBounds(t.Kind)
		w.Line("n, ok, err := d.ReadInt(%s, %s)", minV, maxV)
		fail()
		w.Line("val := %s(n)", goType)
	case model.KindIntEnum:
		w.Line("n, ok, err := d.ReadInt(math.MinInt32, math.MaxInt32)")
		fail()
		w.Line("val := %s(n)", g.ctx.TypeName(t))
		g.rejectUnknownEnum(w, t, "val", "strconv.FormatInt(n, 10)")
	case model.KindFloat:
		w.Line("f, ok, err := d.ReadFloat(32)")
		fail()
		w.Line("val := float32(f)")
	case model.KindDouble:
		w.Line("val, ok, err := d.ReadFloat(64)")
		fail()
	case model.KindBlob:
		w.Line("val, _, err := d.ReadBlob()")
		fail()
	case model.KindTimestamp:
		switch g.ctx.TimestampFormat(m, t) {
		case protocol.DateTime:
			w.Line("val, ok, err := d.ReadDateTime()")
		case protocol.HTTPDate:
			w.Line("val, ok, err := d.ReadHTTPDate()")
		default:
			w.Line("val, ok, err := d.ReadEpochSeconds()")
		}

		fail()
	case model.KindDocument:
		w.Line("val, err := d.ReadDocument()")
		fail()
	case model.KindStructure, model.KindUnion, model.KindList, model.KindSet, model.KindMap:
		fn, err := g.parseAggregate(t)
		if err != nil {
			return err
		}

		w.Line("val, err := %s(d)", fn)
		fail()
	default:
		return protocol.Unsupported(t)
	}

	return nil
}

// rejectUnknownEnum fails strict parsers on enum values outside the model.
func (g *Generator) rejectUnknownEnum(w *emit.Writer, t *model.Shape, val, raw string) {
	if g.ctx.Policy.UnknownEnum() != policy.RejectUnknown {
		return
	}

	w.Open("if ok && !%s.IsKnown() {", val)
	w.Line("return nil, codec.UnknownVariantError(d.Offset(), %q, %s)", string(t.ID), raw)
	w.Close("}")
}

func (g *Generator) parseAggregate(t *model.Shape) (string, error) {
	switch t.Kind {
	case model.KindStructure:
		return g.parseNested(t)
	case model.KindUnion:
		return g.parseUnion(t)
	case model.KindMap:
		return g.parseMap(t)
	default:
		return g.parseList(t)
	}
}

// parseNested returns the parser producing a finished nested structure.
// Structures parsed through a builder are built as soon as they are read.
func (g *Generator) parseNested(t *model.Shape) (string, error) {
	fields, err := g.ctx.DocumentFields(t, nil)
	if err != nil {
		return "", err
	}

	if !g.ctx.Builder(t) {
		return g.parseStructure(t, purpose, fields, false)
	}

	key := registry.Key{Shape: t.ID, Purpose: purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		fn, err := g.parseStructure(t, purpose, fields, true)
		if err != nil {
			return "", err
		}

		return protocol.BuildWrapper(name, "d *jsonrt.Decoder", "d", "d.Offset()", fn, g.ctx.TypeName(t), t), nil
	})
}

func (g *Generator) parseList(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		var w emit.Writer

		w.Open("func %s(d *jsonrt.Decoder) ([]%s, error) {", name, el.GoType)
		w.Line("ok, err := d.BeginArray()")
		w.Open("if err != nil || !ok {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("v := []%s{}", el.GoType)
		w.Blank()
		w.Open("for {")
		w.Line("more, err := d.More()")
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if !more {")
		w.Line("break")
		w.Close("}")
		w.Blank()

		if err := g.read(&w, el.Member, el.Target); err != nil {
			return "", err
		}

		protocol.AppendElement(&w, el, "v = append(v, %s)", protocol.Present(el.Target))
		w.Close("}")
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) parseMap(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		var w emit.Writer

		w.Open("func %s(d *jsonrt.Decoder) (map[string]%s, error) {", name, el.GoType)
		w.Line("ok, err := d.BeginObject()")
		w.Open("if err != nil || !ok {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("v := map[string]%s{}", el.GoType)
		w.Blank()
		w.Open("for {")
		w.Line("key, more, err := d.NextKey()")
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if !more {")
		w.Line("break")
		w.Close("}")
		w.Blank()

		if err := g.read(&w, el.Member, el.Target); err != nil {
			return "", err
		}

		protocol.AppendElement(&w, el, "v[key] = %s", protocol.Present(el.Target))
		w.Close("}")
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) parseUnion(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		typ := g.ctx.TypeName(s)

		var w emit.Writer

		// Only a present value claims the tag, so a null variant next to a
		// set one is not a mix.
		claim := func() {
			w.Open("if tag != \"\" {")
			w.Line("return nil, codec.MixedUnionError(d.Offset(), %q, tag, key)", string(s.ID))
			w.Close("}")
			w.Blank()
			w.Line("tag = key")
		}

		w.Open("func %s(d *jsonrt.Decoder) (%s, error) {", name, typ)
		w.Line("ok, err := d.BeginObject()")
		w.Open("if err != nil || !ok {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("var v %s", typ)
		w.Blank()
		w.Line("tag := \"\"")
		w.Blank()
		w.Open("for {")
		w.Line("key, more, err := d.NextKey()")
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if !more {")
		w.Line("break")
		w.Close("}")
		w.Blank()
		w.Open("if key == \"__type\" {")
		w.Open("if err := d.Skip(); err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("continue")
		w.Close("}")
		w.Blank()
		w.Open("switch key {")

		for _, m := range s.Members {
			target, err := g.ctx.Model.Target(m)
			if err != nil {
				return "", err
			}

			variant := g.ctx.Symbols.VariantName(s.ID, m)

			w.Middle("case %q:", g.variantKey(s, m))

			if model.IsUnit(target.ID) {
				w.Open("if err := d.Skip(); err != nil {")
				w.Line("return nil, err")
				w.Close("}")
				w.Blank()
				claim()
				w.Line("v = &%s{}", variant)

				continue
			}

			if err := g.read(&w, m, target); err != nil {
				return "", err
			}

			value := "val"
			if target.Kind == model.KindStructure {
				value = "*val"
			}

			w.Open("if %s {", protocol.Present(target))
			claim()
			w.Line("v = &%s{Value: %s}", variant, value)
			w.Close("}")
		}

		w.Middle("default:")

		if g.ctx.Policy.UnknownUnionVariant() == policy.RejectUnknown {
			w.Line("return nil, codec.UnknownVariantError(d.Offset(), %q, key)", string(s.ID))
		} else {
			w.Line("raw, err := d.ReadRaw()")
			w.Open("if err != nil {")
			w.Line("return nil, err")
			w.Close("}")
			w.Blank()
			claim()
			w.Line("v = &UnknownUnionMember{Tag: key, Value: raw}")
		}

		w.Close("}")
		w.Close("}")
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}
