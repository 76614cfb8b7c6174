package protocol

import (
	"fmt"
	"strings"

	"codec-generator/internal/constraint"
	"codec-generator/internal/emit"
	"codec-generator/internal/model"
	"codec-generator/internal/symbol"
)

// DefaultsLiteral renders "Field: literal" pairs for the defaulted fields, to
// seed a freshly parsed structure.
func DefaultsLiteral(ctx *Context, fields []Field) string {
	var parts []string

	for _, f := range fields {
		if f.Nullability != constraint.Defaulted || f.Pointer {
			continue
		}

		if lit, ok := ctx.DefaultLiteral(f); ok {
			parts = append(parts, f.Name+": "+lit)
		}
	}

	return strings.Join(parts, ", ")
}

// AppendElement stores the element held in val (declared by a parser's read
// step) into a container. stmt is a format with one verb receiving the value
// expression, such as "v = append(v, %s)". present is the condition under
// which the wire value was not null. Sparse containers keep nulls as nil
// entries; dense ones drop them.
func AppendElement(w *emit.Writer, el Element, stmt, present string) {
	w.Open("if !(%s) {", present)

	if el.Sparse {
		w.Line(stmt, "nil")
	}

	w.Line("continue")
	w.Close("}")
	w.Blank()

	value := "val"

	switch {
	case el.Target.Kind == model.KindStructure && !el.Pointer:
		value = "*val"
	case el.Pointer && el.Target.Kind != model.KindStructure:
		value = "&val"
	}

	w.Line(stmt, value)
}

// BuildWrapper renders a parser that parses a structure through its builder
// and builds it right away, for structures nested in other values.
func BuildWrapper(name, params, args, offset, builderFn, typ string, s *model.Shape) string {
	var w emit.Writer

	w.Open("func %s(%s) (*%s, error) {", name, params, typ)
	w.Line("b, err := %s(%s)", builderFn, args)
	w.Open("if err != nil || b == nil {")
	w.Line("return nil, err")
	w.Close("}")
	w.Blank()
	w.Line("v, err := b.Build()")
	w.Open("if err != nil {")
	w.Line("return nil, codec.WrapDecodeError(%s, %q, err)", offset, fmt.Sprintf("invalid %s", s.Name()))
	w.Close("}")
	w.Blank()
	w.Line("return v, nil")
	w.Close("}")

	return w.String()
}

// Assign stores the value read into val into the structure field of v. For
// non-nilable targets the read step also declared ok, and a null wire value
// leaves the field untouched. Required value fields record their presence in
// seen<Field>.
func Assign(w *emit.Writer, f Field, builder bool) {
	dst := "v." + f.Name

	switch {
	case f.Target.Kind == model.KindStructure || symbol.Nilable(f.Target):
		w.Line("%s = val", dst)
	case builder || f.Pointer:
		w.Open("if ok {")
		w.Line("%s = &val", dst)
		w.Close("}")
	default:
		w.Open("if ok {")
		w.Line("%s = val", dst)

		if f.Nullability == constraint.Required {
			w.Line("seen%s = true", f.Name)
		}

		w.Close("}")
	}
}

// TrackRequired declares a seen<Field> flag for every required field whose
// Go type cannot express absence, and returns those fields. Builders track
// presence through pointers instead.
func TrackRequired(w *emit.Writer, fields []Field, builder bool) []Field {
	if builder {
		return nil
	}

	var tracked []Field

	for _, f := range fields {
		if f.Nullability == constraint.Required && !f.Pointer && !symbol.Nilable(f.Target) {
			tracked = append(tracked, f)
			w.Line("seen%s := false", f.Name)
		}
	}

	return tracked
}

// CheckRequired fails a finished parse whose required fields were absent.
func CheckRequired(w *emit.Writer, s *model.Shape, fields, tracked []Field, builder bool) {
	for _, f := range tracked {
		w.Blank()
		w.Open("if !seen%s {", f.Name)
		w.Line("return nil, codec.MissingFieldError(%q, %q)", string(s.ID), f.Member.Name)
		w.Close("}")
	}

	if builder {
		return
	}

	for _, f := range fields {
		if f.Nullability == constraint.Required && (f.Pointer || symbol.Nilable(f.Target)) {
			w.Blank()
			w.Open("if v.%s == nil {", f.Name)
			w.Line("return nil, codec.MissingFieldError(%q, %q)", string(s.ID), f.Member.Name)
			w.Close("}")
		}
	}
}

// Present is the condition under which a value read into val was not null.
func Present(t *model.Shape) string {
	if t.Kind == model.KindStructure || symbol.Nilable(t) {
		return "val != nil"
	}

	return "ok"
}
