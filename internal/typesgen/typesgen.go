// Package typesgen renders the Go types the codec functions operate on:
// structures, error structures, enums, unions and, for server targets, the
// builders that validate parsed structures.
package typesgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/untillpro/goutils/logger"

	"codec-generator/codec"
	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/symbol"
)

// UnknownName is the package-level sentinel every union accepts for
// variants it does not model.
const UnknownName = "UnknownUnionMember"

// errorMethods are the method names generated on error structures.
var errorMethods = []string{"Error", "ErrorCode", "ErrorMessage", "ErrorFault", "Metadata", "RetryKind"}

// Generator renders type declarations for one generation run.
type Generator struct {
	ctx *protocol.Context
}

// New creates a types generator.
func New(ctx *protocol.Context) *Generator {
	return &Generator{ctx: ctx}
}

// Generate renders the declarations of every named shape among ids, in shape
// ID order. Shapes without a Go type of their own are skipped.
func (g *Generator) Generate(ids []model.ShapeID) ([]string, error) {
	sorted := append([]model.ShapeID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var (
		decls  []string
		unions []*model.Shape
	)

	for _, id := range sorted {
		s, err := g.ctx.Model.MustShape(id)
		if err != nil {
			return nil, err
		}

		if model.IsUnit(id) || strings.HasPrefix(string(id), "smithy.api#") {
			continue
		}

		var decl string

		switch {
		case s.Kind == model.KindStructure:
			decl, err = g.structure(s)
		case s.Kind == model.KindUnion:
			unions = append(unions, s)
			decl, err = g.union(s)
		case s.Kind == model.KindIntEnum:
			decl, err = g.intEnum(s)
		case s.IsEnum():
			decl, err = g.enum(s)
		default:
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("type %s: %w", id, err)
		}

		logger.Verbose("typesgen: rendered", s.Kind, id)

		decls = append(decls, decl)
	}

	if len(unions) > 0 {
		decl, err := g.unknown(unions)
		if err != nil {
			return nil, err
		}

		decls = append(decls, decl)
	}

	return decls, nil
}

func docComment(w *emit.Writer, doc, fallback string) {
	if doc == "" {
		if fallback != "" {
			w.Line("// %s", fallback)
		}

		return
	}

	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			w.Line("//")
		} else {
			w.Line("// %s", line)
		}
	}
}

func (g *Generator) structure(s *model.Shape) (string, error) {
	fields, err := g.ctx.Fields(s)
	if err != nil {
		return "", err
	}

	typ := g.ctx.TypeName(s)

	var w emit.Writer

	docComment(&w, s.Documentation(), "")
	w.Open("type %s struct {", typ)

	for i, f := range fields {
		if doc := f.Member.Documentation(); doc != "" {
			if i > 0 {
				w.Blank()
			}

			docComment(&w, doc, "")
		}

		w.Line("%s %s", f.Name, f.GoType)
	}

	w.Close("}")

	if s.IsError() {
		methods, err := g.errorMethods(s, fields)
		if err != nil {
			return "", err
		}

		w.Blank()
		w.Block(methods)
	}

	if g.ctx.Builder(s) {
		builder, err := g.builder(s, fields)
		if err != nil {
			return "", err
		}

		w.Blank()
		w.Block(builder)
	}

	return w.String(), nil
}

// messageExpr returns the statements producing an error's message from its
// message member, if it has a string one.
func messageExpr(fields []protocol.Field) []string {
	for _, f := range fields {
		if !strings.EqualFold(f.Member.Name, "message") || f.Target.Kind != model.KindString || f.Target.IsEnum() {
			continue
		}

		if f.Pointer {
			return []string{
				fmt.Sprintf("if e.%s == nil {", f.Name),
				"\treturn \"\"",
				"}",
				"",
				fmt.Sprintf("return *e.%s", f.Name),
			}
		}

		return []string{"return e." + f.Name}
	}

	return []string{`return ""`}
}

func faultExpr(fault string) string {
	if fault == "server" {
		return "smithy.FaultServer"
	}

	return "smithy.FaultClient"
}

func retryConst(k codec.RetryKind) string {
	switch k {
	case codec.RetryThrottling:
		return "codec.RetryThrottling"
	case codec.RetryServerError:
		return "codec.RetryServerError"
	case codec.RetryClientError:
		return "codec.RetryClientError"
	default:
		return "codec.RetryNone"
	}
}

func (g *Generator) errorMethods(s *model.Shape, fields []protocol.Field) (string, error) {
	typ := g.ctx.TypeName(s)

	for _, f := range fields {
		for _, m := range errorMethods {
			if f.Name == m {
				return "", fmt.Errorf("%w: member %s shadows the %s method of %s", symbol.ErrNameCollision, f.Member.Name, m, typ)
			}
		}
	}

	fault, _ := s.ErrorFault()

	var w emit.Writer

	w.Open("func (e *%s) Error() string {", typ)
	w.Line("return fmt.Sprintf(%q, e.ErrorCode(), e.ErrorMessage())", "%s: %s")
	w.Close("}")
	w.Blank()
	w.Line("// ErrorCode returns the modeled error code.")
	w.Line("func (e *%s) ErrorCode() string { return %q }", typ, s.Name())
	w.Blank()
	w.Line("// ErrorMessage returns the error message, or \"\" when none was sent.")
	w.Open("func (e *%s) ErrorMessage() string {", typ)

	for _, line := range messageExpr(fields) {
		if line == "" {
			w.Blank()
		} else {
			w.Line("%s", line)
		}
	}

	w.Close("}")
	w.Blank()
	w.Line("// ErrorFault reports whether the caller or the service is at fault.")
	w.Line("func (e *%s) ErrorFault() smithy.ErrorFault { return %s }", typ, faultExpr(fault))
	w.Blank()
	w.Line("// Metadata returns the code and message of the error.")
	w.Open("func (e *%s) Metadata() codec.ErrorMetadata {", typ)
	w.Line("return codec.ErrorMetadata{Code: e.ErrorCode(), Message: e.ErrorMessage()}")
	w.Close("}")

	if retryable, throttling := s.Retryable(); retryable {
		f := smithy.FaultClient
		if fault == "server" {
			f = smithy.FaultServer
		}

		w.Blank()
		w.Line("// RetryKind classifies the error for retries.")
		w.Line("func (e *%s) RetryKind() codec.RetryKind { return %s }", typ, retryConst(codec.ClassifyRetry(throttling, f)))
	}

	if extra := g.ctx.Hooks.Write(hooks.ErrorTypeImpls{Shape: s, TypeName: typ}); extra != "" {
		w.Blank()
		w.Block(extra)
	}

	return w.String(), nil
}

func (g *Generator) reserveConsts(s *model.Shape) ([]string, error) {
	values := s.EnumValues()
	names := make([]string, 0, len(values))

	for _, v := range values {
		name := g.ctx.Symbols.EnumConstName(s.ID, v)
		if err := g.ctx.Symbols.Reserve(name, string(s.ID)); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, nil
}

func (g *Generator) enum(s *model.Shape) (string, error) {
	typ := g.ctx.TypeName(s)
	values := s.EnumValues()

	names, err := g.reserveConsts(s)
	if err != nil {
		return "", err
	}

	var w emit.Writer

	docComment(&w, s.Documentation(), "")
	w.Line("type %s string", typ)
	w.Blank()
	w.Line("// Enum values for %s.", typ)
	w.Open("const (")

	for i, v := range values {
		if v.Documentation != "" {
			docComment(&w, v.Documentation, "")
		}

		w.Line("%s %s = %q", names[i], typ, v.Value)
	}

	w.Close(")")
	w.Blank()
	w.Line("// Values returns every modeled %s value.", typ)
	w.Open("func (%s) Values() []%s {", typ, typ)
	w.Open("return []%s{", typ)

	for _, v := range values {
		w.Line("%q,", v.Value)
	}

	w.Close("}")
	w.Close("}")
	w.Blank()
	g.isKnown(&w, typ, names)

	return w.String(), nil
}

func (g *Generator) intEnum(s *model.Shape) (string, error) {
	typ := g.ctx.TypeName(s)
	values := s.EnumValues()

	names, err := g.reserveConsts(s)
	if err != nil {
		return "", err
	}

	var w emit.Writer

	docComment(&w, s.Documentation(), "")
	w.Line("type %s int32", typ)
	w.Blank()
	w.Line("// Enum values for %s.", typ)
	w.Open("const (")

	for i, v := range values {
		if v.Documentation != "" {
			docComment(&w, v.Documentation, "")
		}

		w.Line("%s %s = %s", names[i], typ, v.Value)
	}

	w.Close(")")
	w.Blank()
	w.Line("// Values returns every modeled %s value.", typ)
	w.Open("func (%s) Values() []%s {", typ, typ)
	w.Line("return []%s{%s}", typ, strings.Join(names, ", "))
	w.Close("}")
	w.Blank()
	g.isKnown(&w, typ, names)

	return w.String(), nil
}

func (g *Generator) isKnown(w *emit.Writer, typ string, names []string) {
	w.Line("// IsKnown reports whether v is a modeled value.")
	w.Open("func (v %s) IsKnown() bool {", typ)

	if len(names) == 0 {
		w.Line("return false")
		w.Close("}")

		return
	}

	w.Open("switch v {")
	w.Middle("case %s:", strings.Join(names, ", "))
	w.Line("return true")
	w.Middle("default:")
	w.Line("return false")
	w.Close("}")
	w.Close("}")
}

func (g *Generator) union(s *model.Shape) (string, error) {
	typ := g.ctx.TypeName(s)
	marker := "is" + typ

	var w emit.Writer

	docComment(&w, s.Documentation(), fmt.Sprintf("%s is one of the %s variants, or %s.", typ, typ+"Member*", UnknownName))
	w.Open("type %s interface {", typ)
	w.Line("%s()", marker)
	w.Close("}")

	for _, m := range s.Members {
		target, err := g.ctx.Model.Target(m)
		if err != nil {
			return "", err
		}

		name := g.ctx.Symbols.VariantName(s.ID, m)
		if err := g.ctx.Symbols.Reserve(name, string(m.ID())); err != nil {
			return "", err
		}

		w.Blank()
		docComment(&w, m.Documentation(), "")

		if model.IsUnit(target.ID) {
			w.Line("type %s struct{}", name)
		} else {
			goType, err := g.ctx.GoType(target)
			if err != nil {
				return "", err
			}

			w.Open("type %s struct {", name)
			w.Line("Value %s", goType)
			w.Close("}")
		}

		w.Blank()
		w.Line("func (*%s) %s() {}", name, marker)
	}

	return w.String(), nil
}

// unknown renders the sentinel variant shared by every union.
func (g *Generator) unknown(unions []*model.Shape) (string, error) {
	if err := g.ctx.Symbols.Reserve(UnknownName, UnknownName); err != nil {
		return "", err
	}

	var w emit.Writer

	w.Line("// %s is a union variant unknown when the code was generated.", UnknownName)
	w.Line("// Tag is the wire discriminator and Value the undecoded variant body, when")
	w.Line("// the protocol kept it.")
	w.Open("type %s struct {", UnknownName)
	w.Line("Tag   string")
	w.Line("Value []byte")
	w.Close("}")

	for _, s := range unions {
		w.Blank()
		w.Line("func (*%s) is%s() {}", UnknownName, g.ctx.TypeName(s))
	}

	return w.String(), nil
}
