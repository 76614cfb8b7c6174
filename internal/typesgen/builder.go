package typesgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"codec-generator/internal/constraint"
	"codec-generator/internal/emit"
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/symbol"
)

// builderFieldType is the Go type of a builder field. Every field can express
// absence so Build can tell a missing member from a zero one.
func (g *Generator) builderFieldType(f protocol.Field) (string, error) {
	goType, err := g.ctx.GoType(f.Target)
	if err != nil {
		return "", err
	}

	if symbol.Nilable(f.Target) {
		return goType, nil
	}

	return "*" + goType, nil
}

func (g *Generator) builder(s *model.Shape, fields []protocol.Field) (string, error) {
	typ := g.ctx.TypeName(s)
	name := g.ctx.Symbols.BuilderName(s.ID)

	if err := g.ctx.Symbols.Reserve(name, string(s.ID)+" builder"); err != nil {
		return "", err
	}

	var (
		w        emit.Writer
		patterns []string
	)

	w.Line("// %s accumulates a parsed %s before its constraints are checked.", name, typ)
	w.Open("type %s struct {", name)

	for _, f := range fields {
		t, err := g.builderFieldType(f)
		if err != nil {
			return "", err
		}

		w.Line("%s %s", f.Name, t)
	}

	w.Close("}")
	w.Blank()
	w.Line("// Build checks required members and modeled constraints, applies defaults,")
	w.Line("// and returns the finished %s.", typ)
	w.Open("func (b *%s) Build() (*%s, error) {", name, typ)
	w.Line("v := &%s{}", typ)

	for _, f := range fields {
		w.Blank()
		g.copyField(&w, s, f)

		check, pattern, err := g.checks(s, f)
		if err != nil {
			return "", err
		}

		if check != "" {
			w.Blank()
			w.Block(check)
		}

		if pattern != "" {
			patterns = append(patterns, pattern)
		}
	}

	w.Blank()
	w.Line("return v, nil")
	w.Close("}")

	if len(patterns) == 0 {
		return w.String(), nil
	}

	var out emit.Writer

	out.Open("var (")

	for _, p := range patterns {
		out.Line("%s", p)
	}

	out.Close(")")
	out.Blank()
	out.Block(w.String())

	return out.String(), nil
}

func missing(s *model.Shape, f protocol.Field) string {
	return fmt.Sprintf("return nil, &codec.ConstraintError{Shape: %q, Member: %q, Reason: \"required member is missing\"}",
		string(s.ID), f.Member.Name)
}

// copyField moves one builder field into v, enforcing presence of required
// members and filling in defaults.
func (g *Generator) copyField(w *emit.Writer, s *model.Shape, f protocol.Field) {
	src := "b." + f.Name
	dst := "v." + f.Name
	required := f.Nullability == constraint.Required && f.InDocument()

	if required {
		w.Open("if %s == nil {", src)
		w.Line("%s", missing(s, f))
		w.Close("}")
		w.Blank()
	}

	switch {
	case f.Pointer || symbol.Nilable(f.Target):
		w.Line("%s = %s", dst, src)
	case required:
		w.Line("%s = *%s", dst, src)
	default:
		w.Open("if %s != nil {", src)
		w.Line("%s = *%s", dst, src)

		if lit, ok := g.ctx.DefaultLiteral(f); ok && f.Nullability == constraint.Defaulted {
			w.Middle("} else {")
			w.Line("%s = %s", dst, lit)
		}

		w.Close("}")
	}
}

func hasLength(t *model.Shape) bool {
	switch t.Kind {
	case model.KindString, model.KindEnum, model.KindBlob, model.KindList, model.KindSet, model.KindMap:
		return true
	default:
		return false
	}
}

// bound picks the member's trait over the target's.
func bound(m *model.Member, t *model.Shape, get func(model.Traits) (model.Bounds, bool)) (model.Bounds, bool) {
	if b, ok := get(m.Traits); ok {
		return b, true
	}

	return get(t.Traits)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// outside renders the condition under which n lies outside b, and the
// human-readable bounds.
func outside(n string, b model.Bounds) (cond, desc string) {
	var parts []string

	switch {
	case b.Min != nil && b.Max != nil:
		desc = "between " + formatBound(*b.Min) + " and " + formatBound(*b.Max)
	case b.Min != nil:
		desc = "at least " + formatBound(*b.Min)
	case b.Max != nil:
		desc = "at most " + formatBound(*b.Max)
	}

	if b.Min != nil {
		parts = append(parts, n+" < "+formatBound(*b.Min))
	}

	if b.Max != nil {
		parts = append(parts, n+" > "+formatBound(*b.Max))
	}

	return strings.Join(parts, " || "), desc
}

// checks renders the constraint checks of one field of v, and the package
// level pattern variable it needs, if any.
func (g *Generator) checks(s *model.Shape, f protocol.Field) (check, pattern string, err error) {
	var (
		w    emit.Writer
		body emit.Writer
	)

	value := "v." + f.Name
	if f.Pointer && f.Target.Kind != model.KindStructure {
		value = "*v." + f.Name
	}

	fail := func(reason string) {
		body.Line("return nil, &codec.ConstraintError{Shape: %q, Member: %q, Reason: %s}", string(s.ID), f.Member.Name, reason)
	}

	t := f.Target

	if b, ok := bound(f.Member, t, model.Traits.Length); ok && hasLength(t) && (b.Min != nil || b.Max != nil) {
		size := "len(" + value + ")"

		switch {
		case t.IsEnum():
			size = "utf8.RuneCountInString(string(" + value + "))"
		case t.Kind == model.KindString:
			size = "utf8.RuneCountInString(" + value + ")"
		}

		cond, desc := outside("n", b)
		body.Open("if n := %s; %s {", size, cond)
		fail(fmt.Sprintf("fmt.Sprintf(\"length %%d is not %s\", n)", desc))
		body.Close("}")
	}

	p, ok := f.Member.Pattern()
	if !ok {
		p, ok = t.Pattern()
	}

	if ok && t.Kind == model.KindString && !t.IsEnum() {
		if _, err := regexp.Compile(p); err != nil {
			return "", "", fmt.Errorf("pattern of %s: %w", f.Member.ID(), err)
		}

		name := "pattern" + g.ctx.TypeName(s) + f.Name
		pattern = fmt.Sprintf("%s = regexp.MustCompile(%s)", name, strconv.Quote(p))

		body.Open("if !%s.MatchString(%s) {", name, value)
		fail(strconv.Quote("does not match " + p))
		body.Close("}")
	}

	if t.Kind.IsNumber() {
		if b, ok := bound(f.Member, t, model.Traits.Range); ok && (b.Min != nil || b.Max != nil) {
			cond, desc := outside("n", b)
			body.Open("if n := float64(%s); %s {", value, cond)
			fail(fmt.Sprintf("fmt.Sprintf(\"value %%v is not %s\", n)", desc))
			body.Close("}")
		}
	}

	if (t.IsEnum() || t.Kind == model.KindIntEnum) && g.ctx.Policy.EnumsConstrained() {
		body.Open("if !%s.IsKnown() {", strings.TrimPrefix(value, "*"))
		fail(fmt.Sprintf("fmt.Sprintf(\"%%v is not a %s value\", %s)", t.Name(), value))
		body.Close("}")
	}

	if body.String() == "" {
		return "", pattern, nil
	}

	if f.Pointer || symbol.Nilable(t) {
		w.Open("if v.%s != nil {", f.Name)
		w.Block(body.String())
		w.Close("}")

		return w.String(), pattern, nil
	}

	return body.String(), pattern, nil
}
