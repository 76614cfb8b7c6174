package cborproto

import (
	"fmt"

	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
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
		w.Line("av, err := cborrt.Decode(data)")
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("v, err := %s(av)", fn)
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if v == nil {")
		w.Line("return nil, codec.NewDecodeError(-1, \"expected %s map, got null\")", s.Name())
		w.Close("}")
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

// open emits the typed read of a container held in av, returning early when
// it is null.
func open(w *emit.Writer, local, read string) {
	w.Line("%s, ok, err := cborrt.%s(av)", local, read)
	w.Open("if err != nil || !ok {")
	w.Line("return nil, err")
	w.Close("}")
	w.Blank()
}

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

		w.Open("func %s(av %s) (*%s, error) {", name, valueType, typ)

		if len(fields) == 0 {
			open(&w, "_", "Map")
		} else {
			open(&w, "m", "Map")
		}

		if builder {
			w.Line("v := &%s{}", typ)
		} else {
			w.Line("v := &%s{%s}", typ, protocol.DefaultsLiteral(g.ctx, fields))
		}

		tracked := protocol.TrackRequired(&w, fields, builder)

		if len(fields) > 0 {
			w.Blank()
			w.Open("for key, sv := range m {")
			w.Open("switch key {")

			for _, f := range fields {
				w.Middle("case %q:", f.Member.Name)

				where := s.Name() + "." + f.Member.Name
				if err := g.read(&w, f.Target, where); err != nil {
					return "", err
				}

				protocol.Assign(&w, f, builder)
			}

			w.Close("}")
			w.Close("}")
		}

		protocol.CheckRequired(&w, s, fields, tracked, builder)

		w.Block(g.ctx.Hooks.Write(hooks.StructParserEpilogue{Protocol: "cbor", Shape: s, Target: "v"}))
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

// read emits code that reads the value held in sv, one of t, into val.
// Scalar reads of non-nilable types also declare ok, false when the wire
// value was null. Failures name where they happened.
func (g *Generator) read(w *emit.Writer, t *model.Shape, where string) error {
	fail := func() {
		w.Open("if err != nil {")
		w.Line("return nil, cborrt.In(%q, err)", where)
		w.Close("}")
	}

	okVar := "ok"
	if symbol.Nilable(t) {
		okVar = "_"
	}

	direct := func(call string) {
		w.Line("val, %s, err := cborrt.%s", okVar, call)
		fail()
	}

	converted := func(raw, call, conv string) {
		w.Line("%s, ok, err := cborrt.%s", raw, call)
		fail()
		w.Blank()
		w.Line("val := %s", conv)
	}

	switch t.Kind {
	case model.KindString, model.KindEnum:
		if !t.IsEnum() {
			direct("String(sv)")
			return nil
		}

		typ := g.ctx.TypeName(t)
		converted("s", "String(sv)", typ+"(s)")
		g.rejectUnknownEnum(w, t, "string(val)")
	case model.KindBoolean:
		direct("Bool(sv)")
	case model.KindLong:
		direct("Integer(sv, math.MinInt64, math.MaxInt64)")
	case model.KindByte, model.KindShort, model.KindInteger:
		minV, maxV, goType, _ := protocol.IntBounds(t.Kind)
		converted("x", fmt.Sprintf("Integer(sv, %s, %s)", minV, maxV), goType+"(x)")
	case model.KindIntEnum:
		typ := g.ctx.TypeName(t)
		converted("x", "Integer(sv, math.MinInt32, math.MaxInt32)", typ+"(x)")
		g.rejectUnknownEnum(w, t, "strconv.FormatInt(int64(val), 10)")
	case model.KindFloat:
		converted("f", "Float(sv)", "float32(f)")
	case model.KindDouble:
		direct("Float(sv)")
	case model.KindBlob:
		direct("Blob(sv)")
	case model.KindTimestamp:
		direct("Timestamp(sv)")
	case model.KindStructure, model.KindUnion, model.KindList, model.KindSet, model.KindMap:
		fn, err := g.parseAggregate(t)
		if err != nil {
			return err
		}

		w.Line("val, err := %s(sv)", fn)
		fail()
	default:
		return protocol.Unsupported(t)
	}

	return nil
}

func (g *Generator) rejectUnknownEnum(w *emit.Writer, t *model.Shape, raw string) {
	if g.ctx.Policy.UnknownEnum() != policy.RejectUnknown {
		return
	}

	w.Blank()
	w.Open("if ok && !val.IsKnown() {")
	w.Line("return nil, codec.UnknownVariantError(-1, %q, %s)", string(t.ID), raw)
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

		return protocol.BuildWrapper(name, "av "+valueType, "av", "-1", fn, g.ctx.TypeName(t), t), nil
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

		w.Open("func %s(av %s) ([]%s, error) {", name, valueType, el.GoType)
		open(&w, "l", "List")
		w.Line("v := make([]%s, 0, len(l))", el.GoType)
		w.Blank()
		w.Open("for _, sv := range l {")

		if err := g.read(&w, el.Target, s.Name()+" member"); err != nil {
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

		w.Open("func %s(av %s) (map[string]%s, error) {", name, valueType, el.GoType)
		open(&w, "m", "Map")
		w.Line("v := make(map[string]%s, len(m))", el.GoType)
		w.Blank()
		w.Open("for key, sv := range m {")

		if err := g.read(&w, el.Target, s.Name()+" value"); err != nil {
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

// parseUnion returns the parser of a union map. Only a present value claims
// the tag, so a null variant next to a set one is not a mix.
func (g *Generator) parseUnion(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		typ := g.ctx.TypeName(s)

		var w emit.Writer

		claim := func() {
			w.Open("if tag != \"\" {")
			w.Line("return nil, codec.MixedUnionError(-1, %q, tag, key)", string(s.ID))
			w.Close("}")
			w.Blank()
			w.Line("tag = key")
		}

		w.Open("switch key {")
		w.Middle("case \"__type\":")
		w.Line("continue")

		readsValue := false

		for _, m := range s.Members {
			target, err := g.ctx.Model.Target(m)
			if err != nil {
				return "", err
			}

			variant := g.ctx.Symbols.VariantName(s.ID, m)

			w.Middle("case %q:", g.variantKey(s, m))

			if model.IsUnit(target.ID) {
				claim()
				w.Line("v = &%s{}", variant)

				continue
			}

			if err := g.read(&w, target, s.Name()+"."+m.Name); err != nil {
				return "", err
			}

			readsValue = true
			value := "val"
			if target.Kind == model.KindStructure {
				value = "*val"
			}

			w.Blank()
			w.Open("if %s {", protocol.Present(target))
			claim()
			w.Line("v = &%s{Value: %s}", variant, value)
			w.Close("}")
		}

		w.Middle("default:")

		if g.ctx.Policy.UnknownUnionVariant() == policy.RejectUnknown {
			w.Line("return nil, codec.UnknownVariantError(-1, %q, key)", string(s.ID))
		} else {
			claim()
			w.Line("v = &UnknownUnionMember{Tag: key, Value: cborrt.Raw(sv)}")

			readsValue = true
		}

		w.Close("}")

		var f emit.Writer

		f.Open("func %s(av %s) (%s, error) {", name, valueType, typ)
		open(&f, "m", "Map")
		f.Line("var v %s", typ)
		f.Blank()
		f.Line("tag := \"\"")
		f.Blank()

		if readsValue {
			f.Open("for key, sv := range m {")
		} else {
			f.Open("for key := range m {")
		}

		f.Block(w.String())
		f.Close("}")
		f.Blank()
		f.Line("return v, nil")
		f.Close("}")

		return f.String(), nil
	})
}
