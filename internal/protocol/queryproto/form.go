package queryproto

import (
	"strconv"
	"strings"

	"codec-generator/internal/emit"
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/xmlproto"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

const purpose = "Query"

// MemberName is the form key segment of a member. EC2 prefers ec2QueryName
// and capitalizes everything else.
func MemberName(m *model.Member, ec2 bool) string {
	if ec2 {
		if name, ok := m.EC2QueryName(); ok {
			return name
		}
	}

	name := xmlproto.ElementName(m)
	if ec2 && name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}

	return name
}

func (g *Generator) flattened(m *model.Member) string {
	return strconv.FormatBool(g.ec2 || (m != nil && m.XMLFlattened()))
}

// SerializeInput implements protocol.Codec. The request is a form carrying
// Action and Version ahead of the member keys.
func (g *Generator) SerializeInput(op, s *model.Shape) (string, error) {
	key := registry.Key{Shape: op.ID, Purpose: "DocInput" + purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		fields, err := g.ctx.DocumentFields(s, nil)
		if err != nil {
			return "", err
		}

		fn, err := g.structure(s, fields)
		if err != nil {
			return "", err
		}

		version := ""
		if g.ctx.Service != nil {
			version = g.ctx.Service.Version
		}

		var w emit.Writer

		w.Open("func %s(v *%s) ([]byte, error) {", name, g.ctx.TypeName(s))
		w.Line("form := queryrt.NewValues(%q, %q)", op.Name(), version)
		w.Open("if err := %s(v, form, \"\"); err != nil {", fn)
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("return queryrt.Encode(form), nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) structure(s *model.Shape, fields []protocol.Field) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		var w emit.Writer

		w.Open("func %s(v *%s, form url.Values, prefix string) error {", name, g.ctx.TypeName(s))
		w.Open("if v == nil {")
		w.Line("return nil")
		w.Close("}")
		w.Blank()

		for _, f := range fields {
			expr, opened := g.Guard(&w, f)

			keyExpr := "queryrt.Key(prefix, " + strconv.Quote(MemberName(f.Member, g.ec2)) + ")"
			if err := g.write(&w, f.Member, f.Target, expr, keyExpr, g.flattened(f.Member)); err != nil {
				return "", err
			}

			if opened {
				w.Close("}")
			}
		}

		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}

// write emits the keys of one value under keyExpr.
func (g *Generator) write(w *emit.Writer, m *model.Member, t *model.Shape, expr, keyExpr, flattened string) error {
	switch t.Kind {
	case model.KindStructure, model.KindUnion:
		fn, err := g.aggregate(t)
		if err != nil {
			return err
		}

		w.Open("if err := %s(%s, form, %s); err != nil {", fn, expr, keyExpr)
		w.Line("return err")
		w.Close("}")
	case model.KindList, model.KindSet, model.KindMap:
		fn, err := g.aggregate(t)
		if err != nil {
			return err
		}

		w.Open("if err := %s(%s, form, %s, %s); err != nil {", fn, expr, keyExpr, flattened)
		w.Line("return err")
		w.Close("}")
	default:
		text, err := g.Text(m, t, expr)
		if err != nil {
			return err
		}

		w.Line("form.Set(%s, %s)", keyExpr, text)
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

		return g.structure(t, fields)
	case model.KindUnion:
		return g.union(t)
	case model.KindMap:
		return g.mapShape(t)
	default:
		return g.list(t)
	}
}

// item emits the nil skip of a container item held in x and returns the
// expression of its value. Forms have no null, so nil items are dropped.
func item(w *emit.Writer, el protocol.Element) string {
	if el.Pointer || symbol.Nilable(el.Target) {
		w.Open("if x == nil {")
		w.Line("continue")
		w.Close("}")
		w.Blank()
	}

	switch {
	case el.Target.Kind == model.KindStructure && !el.Pointer:
		return "&x"
	case el.Pointer && el.Target.Kind != model.KindStructure:
		return "*x"
	default:
		return "x"
	}
}

func (g *Generator) list(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		member := "member"
		if n, ok := s.Member.XMLName(); ok {
			member = n
		}

		var w emit.Writer

		w.Open("func %s(v []%s, form url.Values, prefix string, flattened bool) error {", name, el.GoType)

		if !g.ec2 {
			w.Open("if len(v) == 0 {")
			w.Line("form.Set(prefix, \"\")")
			w.Line("return nil")
			w.Close("}")
			w.Blank()
		}

		w.Line("i := 0")
		w.Open("for _, x := range v {")
		expr := item(&w, el)
		w.Line("key := queryrt.ListKey(prefix, %q, i, flattened)", member)
		w.Line("i++")
		w.Blank()

		if err := g.write(&w, el.Member, el.Target, expr, "key", g.flattened(nil)); err != nil {
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

		w.Open("func %s(v map[string]%s, form url.Values, prefix string, flattened bool) error {", name, el.GoType)
		w.Line("keys := make([]string, 0, len(v))")
		w.Open("for k := range v {")
		w.Line("keys = append(keys, k)")
		w.Close("}")
		w.Blank()
		w.Line("sort.Strings(keys)")
		w.Blank()
		w.Line("i := 0")
		w.Open("for _, k := range keys {")
		w.Line("x := v[k]")
		expr := item(&w, el)
		w.Line("entry := queryrt.EntryKey(prefix, i, flattened)")
		w.Line("i++")
		w.Blank()
		w.Line("form.Set(queryrt.Key(entry, %q), k)", xmlproto.ElementName(s.Key))

		valueKey := "queryrt.Key(entry, " + strconv.Quote(xmlproto.ElementName(s.Value)) + ")"
		if err := g.write(&w, el.Member, el.Target, expr, valueKey, g.flattened(nil)); err != nil {
			return "", err
		}

		w.Close("}")
		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) union(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		typ := g.ctx.TypeName(s)

		var w emit.Writer

		w.Open("func %s(v %s, form url.Values, prefix string) error {", name, typ)
		w.Open("switch uv := v.(type) {")
		w.Middle("case nil:")
		w.Line("return nil")

		for _, m := range s.Members {
			target, err := g.ctx.Model.Target(m)
			if err != nil {
				return "", err
			}

			keyExpr := "queryrt.Key(prefix, " + strconv.Quote(MemberName(m, g.ec2)) + ")"

			w.Middle("case *%s:", g.ctx.Symbols.VariantName(s.ID, m))

			if model.IsUnit(target.ID) {
				w.Line("form.Set(%s, \"\")", keyExpr)
				continue
			}

			expr := "uv.Value"
			if target.Kind == model.KindStructure {
				expr = "&uv.Value"
			}

			if err := g.write(&w, m, target, expr, keyExpr, g.flattened(m)); err != nil {
				return "", err
			}
		}

		w.Middle("case *UnknownUnionMember:")
		w.Line("return fmt.Errorf(\"cannot serialize unknown %s member %%q\", uv.Tag)", typ)
		w.Middle("default:")
		w.Line("return fmt.Errorf(\"unexpected %s member %%T\", v)", typ)
		w.Close("}")
		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}
