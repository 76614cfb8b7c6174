// Package xmlproto generates XML serializers and parsers for restXml and,
// through a Framing, for the AWS Query and EC2 Query response bodies.
// Serializers write through smithy-go's XML encoder; parsers walk elements
// with the xmlrt node decoder.
package xmlproto

import (
	"fmt"
	"strconv"
	"strings"

	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

const purpose = "XML"

// Generator is the XML protocol.Codec.
type Generator struct {
	ctx     *protocol.Context
	framing Framing
}

// New creates an XML generator. A nil framing selects RestFraming.
func New(ctx *protocol.Context, framing Framing) *Generator {
	if framing == nil {
		framing = RestFraming{}
	}

	return &Generator{ctx: ctx, framing: framing}
}

var _ protocol.Codec = (*Generator)(nil)

// ElementName is the element or attribute name of a member.
func ElementName(m *model.Member) string {
	if name, ok := m.XMLName(); ok {
		return name
	}

	return m.Name
}

// containerNames returns the element names inside a list (the member
// element) or a map entry (key and value).
func containerNames(s *model.Shape) (member, key, value string) {
	if s.Kind == model.KindMap {
		return "", ElementName(s.Key), ElementName(s.Value)
	}

	if s.Member != nil {
		if name, ok := s.Member.XMLName(); ok {
			return name, "", ""
		}
	}

	return "member", "", ""
}

func (g *Generator) variantKey(union *model.Shape, m *model.Member) string {
	return g.ctx.Hooks.WireName(hooks.UnionVariantWireName{
		Protocol: "xml",
		Union:    union,
		Member:   m,
		Current:  ElementName(m),
	})
}

// namespace returns the xmlns attribute expression of a document root: the
// structure's own xmlNamespace, else the service's.
func (g *Generator) namespace(s *model.Shape) string {
	uri, prefix, ok := s.XMLNamespace()
	if !ok && g.ctx.Service != nil {
		uri, prefix, ok = g.ctx.Service.XMLNamespace()
	}

	if !ok {
		return ""
	}

	return fmt.Sprintf("%s.NewNamespaceAttribute(%q, %q)", protocol.SmithyXMLPkg, prefix, uri)
}

// startElement renders a smithyxml.StartElement literal named name. attrs is
// an attribute slice expression, or empty for none.
func startElement(name, attrs string) string {
	pkg := protocol.SmithyXMLPkg

	if attrs == "" {
		return fmt.Sprintf("%s.StartElement{Name: %s.Name{Local: %q}}", pkg, pkg, name)
	}

	return fmt.Sprintf("%s.StartElement{Name: %s.Name{Local: %q}, Attr: %s}", pkg, pkg, name, attrs)
}

// attrList joins attribute expressions and an optional attribute function
// call into one slice expression.
func attrList(exprs []string, call string) string {
	switch {
	case len(exprs) == 0:
		return call
	case call == "":
		return fmt.Sprintf("[]%s.Attr{%s}", protocol.SmithyXMLPkg, strings.Join(exprs, ", "))
	default:
		return fmt.Sprintf("append([]%s.Attr{%s}, %s...)", protocol.SmithyXMLPkg, strings.Join(exprs, ", "), call)
	}
}

// SerializeInput implements protocol.Codec.
func (g *Generator) SerializeInput(op, s *model.Shape) (string, error) {
	key := registry.Key{Shape: op.ID, Purpose: "DocInput" + purpose, Direction: registry.Serialize}
	return g.document(key, s, purpose, g.framing.InputPath(op, s), nil)
}

// SerializeOutput implements protocol.Codec.
func (g *Generator) SerializeOutput(op, s *model.Shape) (string, error) {
	key := registry.Key{Shape: op.ID, Purpose: "DocOutput" + purpose, Direction: registry.Serialize}
	return g.document(key, s, purpose, g.framing.OutputPath(op, s), nil)
}

// SerializeError implements protocol.Codec. The error element carries Type
// and Code ahead of the members.
func (g *Generator) SerializeError(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: "DocError" + purpose, Direction: registry.Serialize}
	return g.document(key, s, purpose, g.framing.ErrorPath(s), nil)
}

// SerializePayload implements protocol.Codec.
func (g *Generator) SerializePayload(s *model.Shape, p string, include func(*model.Member) bool) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: "Doc" + p + purpose, Direction: registry.Serialize}
	return g.document(key, s, p+purpose, []string{RootElement(s)}, include)
}

// ErrorMetadata implements protocol.Codec.
func (g *Generator) ErrorMetadata(body string) string {
	path := g.framing.ErrorPath(nil)

	quoted := make([]string, 0, len(path))
	for _, p := range path {
		quoted = append(quoted, strconv.Quote(p))
	}

	return fmt.Sprintf("xmlrt.ErrorComponents(%s, %s)", body, strings.Join(quoted, ", "))
}

// document returns the function writing s as a whole body, enclosed by the
// elements of path. The namespace goes on the root element and the
// structure's attributes on the last one.
func (g *Generator) document(key registry.Key, s *model.Shape, p string, path []string, include func(*model.Member) bool) (string, error) {
	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		if len(path) == 0 {
			return "", fmt.Errorf("empty element path for %s", s.ID)
		}

		fields, err := g.ctx.DocumentFields(s, include)
		if err != nil {
			return "", err
		}

		fn, err := g.structure(s, p, fields)
		if err != nil {
			return "", err
		}

		attrFn, err := g.attributes(s, p, fields)
		if err != nil {
			return "", err
		}

		var ns []string
		if attr := g.namespace(s); attr != "" {
			ns = append(ns, attr)
		}

		own := ""
		if attrFn != "" {
			own = attrFn + "(v)"
		}

		outer, inner := path[:len(path)-1], path[len(path)-1]

		var w emit.Writer

		w.Open("func %s(v *%s) ([]byte, error) {", name, g.ctx.TypeName(s))
		w.Line("enc := %s.NewEncoder(bytes.NewBuffer(nil))", protocol.SmithyXMLPkg)

		if len(outer) == 0 {
			w.Blank()
			w.Open("if err := %s(v, enc.RootElement(%s)); err != nil {", fn, startElement(inner, attrList(ns, own)))
			w.Line("return nil, err")
			w.Close("}")
		} else {
			w.Line("root := enc.RootElement(%s)", startElement(outer[0], attrList(ns, "")))

			parent := "root"

			for i, el := range outer[1:] {
				local := fmt.Sprintf("el%d", i+1)
				w.Line("%s := %s.MemberElement(%s)", local, parent, startElement(el, ""))
				parent = local
			}

			w.Blank()
			w.Open("if err := %s(v, %s.MemberElement(%s)); err != nil {", fn, parent, startElement(inner, own))
			w.Line("return nil, err")
			w.Close("}")
			w.Blank()

			for i := len(outer) - 1; i >= 1; i-- {
				w.Line("el%d.Close()", i)
			}

			w.Line("root.Close()")
		}

		w.Blank()
		w.Line("return enc.Bytes(), nil")
		w.Close("}")

		return w.String(), nil
	})
}

// attributes returns the function collecting the attribute members of a
// structure, or "" when it has none. Attributes are written on the opening
// tag, so whoever opens the structure's element calls it.
func (g *Generator) attributes(s *model.Shape, p string, fields []protocol.Field) (string, error) {
	attrs, _ := Partition(fields)
	if len(attrs) == 0 {
		return "", nil
	}

	key := registry.Key{Shape: s.ID, Purpose: "Attr" + p, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		var w emit.Writer

		w.Open("func %s(v *%s) []%s.Attr {", name, g.ctx.TypeName(s), protocol.SmithyXMLPkg)
		w.Open("if v == nil {")
		w.Line("return nil")
		w.Close("}")
		w.Blank()
		w.Line("var attrs []%s.Attr", protocol.SmithyXMLPkg)

		for _, f := range attrs {
			expr, opened := g.Guard(&w, f)

			text, err := g.Text(f.Member, f.Target, expr)
			if err != nil {
				return "", err
			}

			w.Line("attrs = append(attrs, %s.NewAttribute(%q, %s))", protocol.SmithyXMLPkg, ElementName(f.Member), text)

			if opened {
				w.Close("}")
			}
		}

		w.Blank()
		w.Line("return attrs")
		w.Close("}")

		return w.String(), nil
	})
}

// structure returns the serializer writing a structure's child elements into
// value and closing it.
func (g *Generator) structure(s *model.Shape, p string, fields []protocol.Field) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: p, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		_, elems := Partition(fields)

		var w emit.Writer

		w.Open("func %s(v *%s, value %s.Value) error {", name, g.ctx.TypeName(s), protocol.SmithyXMLPkg)
		w.Line("defer value.Close()")
		w.Blank()
		w.Open("if v == nil {")
		w.Line("return nil")
		w.Close("}")
		w.Blank()
		w.Block(g.ctx.Hooks.Write(hooks.StructSerializerPrologue{Protocol: "xml", Shape: s, Value: "v"}))

		if s.IsError() && p == purpose {
			fault, _ := s.ErrorFault()

			typ := "Sender"
			if fault == "server" {
				typ = "Receiver"
			}

			w.Line("value.MemberElement(%s).String(%q)", startElement("Type", ""), typ)
			w.Line("value.MemberElement(%s).String(%q)", startElement("Code", ""), s.Name())
		}

		for _, f := range elems {
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

// Guard opens the presence condition of a field and returns the expression
// of its value; the caller closes the condition when opened is true.
func (g *Generator) Guard(w *emit.Writer, f protocol.Field) (expr string, opened bool) {
	expr = "v." + f.Name

	switch {
	case f.Target.Kind == model.KindStructure:
		return expr, false
	case f.Pointer:
		w.Open("if %s != nil {", expr)
		return "*" + expr, true
	case f.Optional() || symbol.Nilable(f.Target):
		w.Open("if %s != nil {", expr)
		return expr, true
	default:
		if cond := g.ctx.SuppressDefault(f, expr); cond != "" {
			w.Open("if %s {", cond)
			return expr, true
		}

		return expr, false
	}
}

func (g *Generator) field(w *emit.Writer, f protocol.Field) error {
	expr, opened := g.Guard(w, f)

	// A nil structure writes no element at all.
	if f.Target.Kind == model.KindStructure {
		w.Open("if %s != nil {", expr)
		opened = true
	}

	if err := g.write(w, f.Member, f.Target, expr, "value", ElementName(f.Member), f.Member.XMLFlattened()); err != nil {
		return err
	}

	if opened {
		w.Close("}")
	}

	return nil
}

// Text returns the Go expression rendering a scalar value as text, for
// attributes and form values.
func (g *Generator) Text(m *model.Member, t *model.Shape, expr string) (string, error) {
	switch t.Kind {
	case model.KindString, model.KindEnum:
		if t.IsEnum() {
			return "string(" + expr + ")", nil
		}

		return expr, nil
	case model.KindBoolean:
		return "strconv.FormatBool(" + expr + ")", nil
	case model.KindByte, model.KindShort, model.KindInteger, model.KindIntEnum:
		return "strconv.FormatInt(int64(" + expr + "), 10)", nil
	case model.KindLong:
		return "strconv.FormatInt(" + expr + ", 10)", nil
	case model.KindFloat:
		return "xmlrt.FormatFloat(float64(" + expr + "), 32)", nil
	case model.KindDouble:
		return "xmlrt.FormatFloat(" + expr + ", 64)", nil
	case model.KindBlob:
		return "base64.StdEncoding.EncodeToString(" + expr + ")", nil
	case model.KindTimestamp:
		return fmt.Sprintf("xmlrt.FormatTime(%s, %q)", expr, g.ctx.TimestampFormat(m, t)), nil
	default:
		return "", protocol.Unsupported(t)
	}
}

// scalar writes a scalar into the smithyxml.Value expression dst, closing it.
func (g *Generator) scalar(w *emit.Writer, m *model.Member, t *model.Shape, expr, dst string) error {
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
		w.Line("xmlrt.WriteFloat(%s, float64(%s), 32)", dst, expr)
	case model.KindDouble:
		w.Line("xmlrt.WriteFloat(%s, %s, 64)", dst, expr)
	case model.KindBlob:
		w.Line("%s.Base64EncodeBytes(%s)", dst, expr)
	case model.KindTimestamp:
		w.Line("%s.String(xmlrt.FormatTime(%s, %q))", dst, expr, g.ctx.TimestampFormat(m, t))
	default:
		return protocol.Unsupported(t)
	}

	return nil
}

// write emits the element(s) of a value named tag under the smithyxml.Value
// parent. Flattened lists and maps repeat tag per item instead of wrapping
// their items in it.
func (g *Generator) write(w *emit.Writer, m *model.Member, t *model.Shape, expr, parent, tag string, flattened bool) error {
	switch t.Kind {
	case model.KindStructure:
		fn, err := g.aggregate(t)
		if err != nil {
			return err
		}

		attrFn, err := g.nestedAttributes(t)
		if err != nil {
			return err
		}

		attrs := ""
		if attrFn != "" {
			attrs = attrFn + "(" + expr + ")"
		}

		w.Open("if err := %s(%s, %s.MemberElement(%s)); err != nil {", fn, expr, parent, startElement(tag, attrs))
		w.Line("return err")
		w.Close("}")
	case model.KindUnion, model.KindMap:
		fn, err := g.aggregate(t)
		if err != nil {
			return err
		}

		open := "MemberElement"
		if flattened && t.Kind == model.KindMap {
			open = "FlattenedElement"
		}

		w.Open("if err := %s(%s, %s.%s(%s)); err != nil {", fn, expr, parent, open, startElement(tag, ""))
		w.Line("return err")
		w.Close("}")
	case model.KindList, model.KindSet:
		fn, err := g.aggregate(t)
		if err != nil {
			return err
		}

		open, member := "MemberElement", startElement(listMember(t), "")
		if flattened {
			open, member = "FlattenedElement", startElement(tag, "")
		}

		w.Open("if err := %s(%s, %s.%s(%s), %s); err != nil {", fn, expr, parent, open, startElement(tag, ""), member)
		w.Line("return err")
		w.Close("}")
	default:
		return g.scalar(w, m, t, expr, fmt.Sprintf("%s.MemberElement(%s)", parent, startElement(tag, "")))
	}

	return nil
}

func listMember(s *model.Shape) string {
	member, _, _ := containerNames(s)
	return member
}

// nestedAttributes returns the attribute function of a structure written
// inside another value.
func (g *Generator) nestedAttributes(t *model.Shape) (string, error) {
	fields, err := g.ctx.DocumentFields(t, nil)
	if err != nil {
		return "", err
	}

	return g.attributes(t, purpose, fields)
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

// skipNil emits the nil check of a container item. XML has no null, so nil
// items of sparse containers are dropped like those of dense ones.
func skipNil(w *emit.Writer, el protocol.Element, x string) {
	if el.Pointer || symbol.Nilable(el.Target) {
		w.Open("if %s == nil {", x)
		w.Line("continue")
		w.Close("}")
		w.Blank()
	}
}

func itemExpr(el protocol.Element, x string) string {
	switch {
	case el.Target.Kind == model.KindStructure && !el.Pointer:
		return "&" + x
	case el.Pointer && el.Target.Kind != model.KindStructure:
		return "*" + x
	default:
		return x
	}
}

// item writes one list item. Scalars go through the array's member element;
// aggregates open their own, which also carries a structure's attributes.
func (g *Generator) item(w *emit.Writer, el protocol.Element, expr string) error {
	if !el.Target.Kind.IsAggregate() {
		return g.scalar(w, el.Member, el.Target, expr, "array.Member()")
	}

	fn, err := g.aggregate(el.Target)
	if err != nil {
		return err
	}

	switch el.Target.Kind {
	case model.KindStructure:
		attrFn, err := g.nestedAttributes(el.Target)
		if err != nil {
			return err
		}

		if attrFn != "" {
			w.Line("item := member.Copy()")
			w.Line("item.Attr = %s(%s)", attrFn, expr)
			w.Blank()
			w.Open("if err := %s(%s, value.MemberElement(item)); err != nil {", fn, expr)
		} else {
			w.Open("if err := %s(%s, value.MemberElement(member)); err != nil {", fn, expr)
		}
	case model.KindList, model.KindSet:
		w.Open("if err := %s(%s, value.MemberElement(member), %s); err != nil {", fn, expr, startElement(listMember(el.Target), ""))
	default:
		w.Open("if err := %s(%s, value.MemberElement(member)); err != nil {", fn, expr)
	}

	w.Line("return err")
	w.Close("}")

	return nil
}

// list returns the serializer writing each element of a list as member.
// value is the list's own element, or a flattened one naming the items.
func (g *Generator) list(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		var b emit.Writer

		b.Open("for _, x := range v {")
		skipNil(&b, el, "x")

		if err := g.item(&b, el, itemExpr(el, "x")); err != nil {
			return "", err
		}

		b.Close("}")

		var w emit.Writer

		w.Open("func %s(v []%s, value %s.Value, member %s.StartElement) error {", name, el.GoType, protocol.SmithyXMLPkg, protocol.SmithyXMLPkg)
		w.Open("if !value.IsFlattened() {")
		w.Line("defer value.Close()")
		w.Close("}")
		w.Blank()

		if !el.Target.Kind.IsAggregate() {
			w.Line("array := value.ArrayWithCustomName(member)")
			w.Blank()
		}

		w.Block(b.String())
		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}

// mapShape returns the serializer writing each entry as the key and value
// elements. Wrapped maps name their entries "entry"; flattened ones repeat
// the map's own element per entry.
func (g *Generator) mapShape(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose, Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		el, err := g.ctx.Element(s)
		if err != nil {
			return "", err
		}

		_, keyName, valueName := containerNames(s)

		var w emit.Writer

		w.Open("func %s(v map[string]%s, value %s.Value) error {", name, el.GoType, protocol.SmithyXMLPkg)
		w.Open("if !value.IsFlattened() {")
		w.Line("defer value.Close()")
		w.Close("}")
		w.Blank()
		w.Line("m := value.Map()")
		w.Blank()
		w.Line("keys := make([]string, 0, len(v))")
		w.Open("for k := range v {")
		w.Line("keys = append(keys, k)")
		w.Close("}")
		w.Blank()
		w.Line("sort.Strings(keys)")
		w.Blank()
		w.Open("for _, k := range keys {")
		w.Line("x := v[k]")
		skipNil(&w, el, "x")
		w.Line("entry := m.Entry()")
		w.Line("entry.MemberElement(%s).String(k)", startElement(keyName, ""))

		if err := g.write(&w, el.Member, el.Target, itemExpr(el, "x"), "entry", valueName, false); err != nil {
			return "", err
		}

		w.Line("entry.Close()")
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
		var w emit.Writer

		w.Open("func %s(v %s, value %s.Value) error {", name, g.ctx.TypeName(s), protocol.SmithyXMLPkg)
		w.Line("defer value.Close()")
		w.Blank()
		w.Open("switch uv := v.(type) {")
		w.Middle("case nil:")
		w.Line("return nil")

		for _, m := range s.Members {
			target, err := g.ctx.Model.Target(m)
			if err != nil {
				return "", err
			}

			tag := g.variantKey(s, m)

			w.Middle("case *%s:", g.ctx.Symbols.VariantName(s.ID, m))

			if model.IsUnit(target.ID) {
				w.Line("value.MemberElement(%s).Close()", startElement(tag, ""))
				continue
			}

			expr := "uv.Value"
			if target.Kind == model.KindStructure {
				expr = "&uv.Value"
			}

			if err := g.write(&w, m, target, expr, "value", tag, false); err != nil {
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
