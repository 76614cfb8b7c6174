package xmlproto

import (
	"fmt"
	"strconv"
	"strings"

	"codec-generator/internal/constraint"
	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

// ParseInput implements protocol.Codec.
func (g *Generator) ParseInput(op, s *model.Shape, builder bool) (string, error) {
	p := "DocInput" + purpose
	if builder {
		p += "Builder"
	}

	key := registry.Key{Shape: op.ID, Purpose: p, Direction: registry.Deserialize}

	return g.parseDocument(key, s, purpose, g.framing.InputPath(op, s), nil, builder)
}

// ParseOutput implements protocol.Codec.
func (g *Generator) ParseOutput(op, s *model.Shape) (string, error) {
	key := registry.Key{Shape: op.ID, Purpose: "DocOutput" + purpose, Direction: registry.Deserialize}
	return g.parseDocument(key, s, purpose, g.framing.OutputPath(op, s), nil, false)
}

// ParseError implements protocol.Codec.
func (g *Generator) ParseError(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: "DocError" + purpose, Direction: registry.Deserialize}
	return g.parseDocument(key, s, purpose, g.framing.ErrorPath(s), nil, false)
}

// ParsePayload implements protocol.Codec.
func (g *Generator) ParsePayload(s *model.Shape, p string, include func(*model.Member) bool) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: "Doc" + p + purpose, Direction: registry.Deserialize}
	return g.parseDocument(key, s, p+purpose, []string{RootElement(s)}, include, false)
}

// parseDocument returns the function reading a whole body: it descends
// through path, failing on any other root, and parses the last element.
func (g *Generator) parseDocument(key registry.Key, s *model.Shape, p string, path []string,
	include func(*model.Member) bool, builder bool,
) (string, error) {
	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		if len(path) == 0 {
			return "", fmt.Errorf("empty element path for %s", s.ID)
		}

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

		quoted := make([]string, 0, len(path))
		for _, el := range path {
			quoted = append(quoted, strconv.Quote(el))
		}

		var w emit.Writer

		w.Open("func %s(data []byte) (*%s, error) {", name, typ)

		if len(path) == 1 {
			w.Open("if len(bytes.TrimSpace(data)) == 0 {")
			w.Line("data = []byte(%q)", "<"+path[0]+"></"+path[0]+">")
			w.Close("}")
			w.Blank()
		}

		w.Line("node, err := xmlrt.Descend(data, %s)", strings.Join(quoted, ", "))
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("return %s(node)", fn)
		w.Close("}")

		return w.String(), nil
	})
}

// assign stores val into the field of v. XML has no null, so a matched
// element always carries a value.
func assign(w *emit.Writer, f protocol.Field, builder bool) {
	dst := "v." + f.Name

	switch {
	case f.Target.Kind == model.KindStructure || symbol.Nilable(f.Target):
		w.Line("%s = val", dst)
	case builder || f.Pointer:
		w.Line("%s = &val", dst)
	default:
		w.Line("%s = val", dst)

		if f.Nullability == constraint.Required {
			w.Line("seen%s = true", f.Name)
		}
	}
}

// parseStructure returns the parser of a structure element. Attribute
// members are read from the start tag before the child loop.
func (g *Generator) parseStructure(s *model.Shape, p string, fields []protocol.Field, builder bool) (string, error) {
	fnPurpose := p
	typ := g.ctx.TypeName(s)

	if builder {
		fnPurpose += "Builder"
		typ = g.ctx.Symbols.BuilderName(s.ID)
	}

	key := registry.Key{Shape: s.ID, Purpose: fnPurpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		attrs, elems := Partition(fields)

		var w emit.Writer

		w.Open("func %s(d xmlrt.NodeDecoder) (*%s, error) {", name, typ)

		if builder {
			w.Line("v := &%s{}", typ)
		} else {
			w.Line("v := &%s{%s}", typ, protocol.DefaultsLiteral(g.ctx, fields))
		}

		tracked := protocol.TrackRequired(&w, fields, builder)

		for _, f := range attrs {
			w.Blank()
			w.Open("if text, ok := d.Attr(%q); ok {", ElementName(f.Member))

			if err := g.convert(&w, f.Member, f.Target, "text", "d.Offset()", "return nil, "); err != nil {
				return "", err
			}

			assign(&w, f, builder)
			w.Close("}")
		}

		w.Blank()
		w.Open("for {")
		w.Line("start, done, err := d.Token()")
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if done {")
		w.Line("break")
		w.Close("}")
		w.Blank()
		w.Line("child := xmlrt.WrapNodeDecoder(d.Decoder, start)")
		w.Blank()
		w.Open("switch start.Name.Local {")

		for _, f := range elems {
			w.Middle("case %q:", ElementName(f.Member))

			if f.Member.XMLFlattened() && (f.Target.Kind.IsCollection() || f.Target.Kind == model.KindMap) {
				fn, err := g.parseFlat(f.Target)
				if err != nil {
					return "", err
				}

				w.Open("if err := %s(&v.%s, child); err != nil {", fn, f.Name)
				w.Line("return nil, err")
				w.Close("}")

				continue
			}

			if err := g.read(&w, f.Member, f.Target, "child", "return nil, "); err != nil {
				return "", err
			}

			assign(&w, f, builder)
		}

		w.Middle("default:")
		w.Open("if err := child.Skip(); err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Close("}")
		w.Close("}")

		protocol.CheckRequired(&w, s, fields, tracked, builder)

		w.Block(g.ctx.Hooks.Write(hooks.StructParserEpilogue{Protocol: "xml", Shape: s, Target: "v"}))
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

// convert emits code turning the text expression src into val. ret is the
// return statement prefix completed by the error expression on failure.
func (g *Generator) convert(w *emit.Writer, m *model.Member, t *model.Shape, src, offset, ret string) error {
	check := func() {
		w.Open("if err != nil {")
		w.Line("%serr", ret)
		w.Close("}")
	}

	switch t.Kind {
	case model.KindString, model.KindEnum:
		if !t.IsEnum() {
			w.Line("val := %s", src)
			return nil
		}

		w.Line("val := %s(%s)", g.ctx.TypeName(t), src)
		g.rejectUnknownEnum(w, t, offset, "string(val)", ret)
	case model.KindBoolean:
		w.Line("val, err := xmlrt.ParseBool(%s, %s)", src, offset)
		check()
	case model.KindByte, model.KindShort, model.KindInteger, model.KindLong:
		minV, maxV, goType, _ := protocol.IntBounds(t.Kind)
		w.Line("n, err := xmlrt.ParseInt(%s, %s, %s, %s)", src, minV, maxV, offset)
		check()
		w.Line("val := %s(n)", goType)
	case model.KindIntEnum:
		w.Line("n, err := xmlrt.ParseInt(%s, math.MinInt32, math.MaxInt32, %s)", src, offset)
		check()
		w.Line("val := %s(n)", g.ctx.TypeName(t))
		g.rejectUnknownEnum(w, t, offset, "strconv.FormatInt(n, 10)", ret)
	case model.KindFloat:
		w.Line("f, err := xmlrt.ParseFloat(%s, 32, %s)", src, offset)
		check()
		w.Line("val := float32(f)")
	case model.KindDouble:
		w.Line("val, err := xmlrt.ParseFloat(%s, 64, %s)", src, offset)
		check()
	case model.KindBlob:
		w.Line("val, err := xmlrt.ParseBlob(%s, %s)", src, offset)
		check()
	case model.KindTimestamp:
		w.Line("val, err := xmlrt.ParseTime(%s, %q, %s)", src, g.ctx.TimestampFormat(m, t), offset)
		check()
	default:
		return protocol.Unsupported(t)
	}

	return nil
}

func (g *Generator) rejectUnknownEnum(w *emit.Writer, t *model.Shape, offset, raw, ret string) {
	if g.ctx.Policy.UnknownEnum() != policy.RejectUnknown {
		return
	}

	w.Blank()
	w.Open("if !val.IsKnown() {")
	w.Line("%scodec.UnknownVariantError(%s, %q, %s)", ret, offset, string(t.ID), raw)
	w.Close("}")
}

// read emits code reading the value of t held by the element node into val.
func (g *Generator) read(w *emit.Writer, m *model.Member, t *model.Shape, node, ret string) error {
	switch t.Kind {
	case model.KindStructure, model.KindUnion, model.KindList, model.KindSet, model.KindMap:
		fn, err := g.parseAggregate(t)
		if err != nil {
			return err
		}

		w.Line("val, err := %s(%s)", fn, node)
		w.Open("if err != nil {")
		w.Line("%serr", ret)
		w.Close("}")

		return nil
	}

	w.Line("text, err := %s.Value()", node)
	w.Open("if err != nil {")
	w.Line("%serr", ret)
	w.Close("}")
	w.Blank()

	return g.convert(w, m, t, "text", node+".Offset()", ret)
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

		return protocol.BuildWrapper(name, "d xmlrt.NodeDecoder", "d", "d.Offset()", fn, g.ctx.TypeName(t), t), nil
	})
}

func itemValue(el protocol.Element) string {
	switch {
	case el.Target.Kind == model.KindStructure && !el.Pointer:
		return "*val"
	case el.Pointer && el.Target.Kind != model.KindStructure:
		return "&val"
	default:
		return "val"
	}
}

// childLoop opens the loop over the children of d named want, skipping any
// other element.
func childLoop(w *emit.Writer, want string) {
	w.Open("for {")
	w.Line("start, done, err := d.Token()")
	w.Open("if err != nil {")
	w.Line("return nil, err")
	w.Close("}")
	w.Blank()
	w.Open("if done {")
	w.Line("break")
	w.Close("}")
	w.Blank()
	w.Line("child := xmlrt.WrapNodeDecoder(d.Decoder, start)")
	w.Blank()
	w.Open("if start.Name.Local != %q {", want)
	w.Open("if err := child.Skip(); err != nil {")
	w.Line("return nil, err")
	w.Close("}")
	w.Blank()
	w.Line("continue")
	w.Close("}")
	w.Blank()
}

func (g *Generator) parseList(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		member, _, _ := containerNames(s)

		var w emit.Writer

		w.Open("func %s(d xmlrt.NodeDecoder) ([]%s, error) {", name, el.GoType)
		w.Line("v := []%s{}", el.GoType)
		w.Blank()
		childLoop(&w, member)

		if err := g.read(&w, el.Member, el.Target, "child", "return nil, "); err != nil {
			return "", err
		}

		w.Blank()
		w.Line("v = append(v, %s)", itemValue(el))
		w.Close("}")
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

// parseFlat returns the accumulator reading one item of a flattened list or
// map from its repeated element and adding it to the field acc points to.
func (g *Generator) parseFlat(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: "Flat" + purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		var w emit.Writer

		if s.Kind == model.KindMap {
			entry, err := g.parseEntry(s)
			if err != nil {
				return "", err
			}

			w.Open("func %s(acc *map[string]%s, d xmlrt.NodeDecoder) error {", name, el.GoType)
			w.Line("k, x, err := %s(d)", entry)
			w.Open("if err != nil {")
			w.Line("return err")
			w.Close("}")
			w.Blank()
			w.Open("if *acc == nil {")
			w.Line("*acc = map[string]%s{}", el.GoType)
			w.Close("}")
			w.Blank()
			w.Line("(*acc)[k] = x")
			w.Blank()
			w.Line("return nil")
			w.Close("}")

			return w.String(), nil
		}

		w.Open("func %s(acc *[]%s, d xmlrt.NodeDecoder) error {", name, el.GoType)

		if err := g.read(&w, el.Member, el.Target, "d", "return "); err != nil {
			return "", err
		}

		w.Blank()
		w.Line("*acc = append(*acc, %s)", itemValue(el))
		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}

// parseEntry returns the parser of one map entry element holding a key and
// a value element.
func (g *Generator) parseEntry(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: "Entry" + purpose, Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		_, keyName, valueName := containerNames(s)
		ret := `return "", value, `

		var w emit.Writer

		w.Open("func %s(d xmlrt.NodeDecoder) (string, %s, error) {", name, el.GoType)
		w.Open("var (")
		w.Line("key   string")
		w.Line("value %s", el.GoType)
		w.Close(")")
		w.Blank()
		w.Open("for {")
		w.Line("start, done, err := d.Token()")
		w.Open("if err != nil {")
		w.Line("%serr", ret)
		w.Close("}")
		w.Blank()
		w.Open("if done {")
		w.Line("break")
		w.Close("}")
		w.Blank()
		w.Line("child := xmlrt.WrapNodeDecoder(d.Decoder, start)")
		w.Blank()
		w.Open("switch start.Name.Local {")
		w.Middle("case %q:", keyName)
		w.Line("text, err := child.Value()")
		w.Open("if err != nil {")
		w.Line("%serr", ret)
		w.Close("}")
		w.Blank()
		w.Line("key = text")
		w.Middle("case %q:", valueName)

		if err := g.read(&w, el.Member, el.Target, "child", ret); err != nil {
			return "", err
		}

		w.Blank()
		w.Line("value = %s", itemValue(el))
		w.Middle("default:")
		w.Open("if err := child.Skip(); err != nil {")
		w.Line("%serr", ret)
		w.Close("}")
		w.Close("}")
		w.Close("}")
		w.Blank()
		w.Line("return key, value, nil")
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

		entry, err := g.parseEntry(s)
		if err != nil {
			return "", err
		}

		var w emit.Writer

		w.Open("func %s(d xmlrt.NodeDecoder) (map[string]%s, error) {", name, el.GoType)
		w.Line("v := map[string]%s{}", el.GoType)
		w.Blank()
		childLoop(&w, "entry")
		w.Line("k, x, err := %s(child)", entry)
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("v[k] = x")
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

		w.Open("func %s(d xmlrt.NodeDecoder) (%s, error) {", name, typ)
		w.Line("var v %s", typ)
		w.Blank()
		w.Line("tag := \"\"")
		w.Blank()
		w.Open("for {")
		w.Line("start, done, err := d.Token()")
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Open("if done {")
		w.Line("break")
		w.Close("}")
		w.Blank()
		w.Line("child := xmlrt.WrapNodeDecoder(d.Decoder, start)")
		w.Blank()
		w.Open("if tag != \"\" {")
		w.Line("return nil, codec.MixedUnionError(child.Offset(), %q, tag, start.Name.Local)", string(s.ID))
		w.Close("}")
		w.Blank()
		w.Line("tag = start.Name.Local")
		w.Blank()
		w.Open("switch tag {")

		for _, m := range s.Members {
			target, err := g.ctx.Model.Target(m)
			if err != nil {
				return "", err
			}

			variant := g.ctx.Symbols.VariantName(s.ID, m)

			w.Middle("case %q:", g.variantKey(s, m))

			if model.IsUnit(target.ID) {
				w.Open("if err := child.Skip(); err != nil {")
				w.Line("return nil, err")
				w.Close("}")
				w.Blank()
				w.Line("v = &%s{}", variant)

				continue
			}

			if err := g.read(&w, m, target, "child", "return nil, "); err != nil {
				return "", err
			}

			value := "val"
			if target.Kind == model.KindStructure {
				value = "*val"
			}

			w.Blank()
			w.Line("v = &%s{Value: %s}", variant, value)
		}

		w.Middle("default:")

		if g.ctx.Policy.UnknownUnionVariant() == policy.RejectUnknown {
			w.Line("return nil, codec.UnknownVariantError(child.Offset(), %q, tag)", string(s.ID))
		} else {
			w.Open("if err := child.Skip(); err != nil {")
			w.Line("return nil, err")
			w.Close("}")
			w.Blank()
			w.Line("v = &UnknownUnionMember{Tag: tag}")
		}

		w.Close("}")
		w.Close("}")
		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}
