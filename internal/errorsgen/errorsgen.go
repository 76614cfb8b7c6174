// Package errorsgen renders the error aggregates of operations and services:
// one sealed interface per operation over the error structures it can
// return, an unhandled catch-all, and the conversions between them.
package errorsgen

import (
	"fmt"

	"github.com/untillpro/goutils/logger"

	"codec-generator/internal/common"
	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/eventstream"
	"codec-generator/internal/symbol"
)

// MetadataFunc is the generated function extracting error metadata from a
// response body.
const MetadataFunc = "ErrorMetadataOf"

// Generator renders error aggregates for one protocol.
type Generator struct {
	ctx   *protocol.Context
	codec protocol.Codec
}

// New creates an errors generator reading error bodies through c.
func New(ctx *protocol.Context, c protocol.Codec) *Generator {
	return &Generator{ctx: ctx, codec: c}
}

// collector accumulates error shapes, deduplicated by Go type name.
type collector struct {
	ctx    *protocol.Context
	byName map[string]*model.Shape
}

func (c *collector) add(ids ...model.ShapeID) error {
	for _, id := range ids {
		s, err := c.ctx.Model.MustShape(id)
		if err != nil {
			return err
		}

		if !s.IsError() {
			return fmt.Errorf("%s is listed as an error but has no error trait", id)
		}

		c.byName[c.ctx.TypeName(s)] = s
	}

	return nil
}

func (c *collector) streams(op *model.Shape) error {
	unions, err := eventstream.Streams(c.ctx.Model, op)
	if err != nil {
		return err
	}

	for _, u := range unions {
		for _, m := range u.Members {
			target, err := c.ctx.Model.Target(m)
			if err != nil {
				return err
			}

			if target.IsError() {
				c.byName[c.ctx.TypeName(target)] = target
			}
		}
	}

	return nil
}

func (c *collector) sorted() []*model.Shape {
	names := common.SortedKeys(c.byName)

	out := make([]*model.Shape, 0, len(names))
	for _, name := range names {
		out = append(out, c.byName[name])
	}

	return out
}

// Collect returns the errors an operation can return: its own, the
// service-wide ones, and the error variants of its event streams. The result
// is deduplicated by name and sorted.
func (g *Generator) Collect(op *model.Shape) ([]*model.Shape, error) {
	c := &collector{ctx: g.ctx, byName: make(map[string]*model.Shape)}

	if err := c.add(op.Errors...); err != nil {
		return nil, fmt.Errorf("operation %s: %w", op.ID, err)
	}

	if g.ctx.Service != nil {
		if err := c.add(g.ctx.Service.Errors...); err != nil {
			return nil, fmt.Errorf("service %s: %w", g.ctx.Service.ID, err)
		}
	}

	if err := c.streams(op); err != nil {
		return nil, err
	}

	return c.sorted(), nil
}

// CollectService returns the union of the errors of every operation.
func (g *Generator) CollectService(ops []*model.Shape) ([]*model.Shape, error) {
	c := &collector{ctx: g.ctx, byName: make(map[string]*model.Shape)}

	for _, op := range ops {
		errs, err := g.Collect(op)
		if err != nil {
			return nil, err
		}

		for _, s := range errs {
			c.byName[g.ctx.TypeName(s)] = s
		}
	}

	if g.ctx.Service != nil {
		if err := c.add(g.ctx.Service.Errors...); err != nil {
			return nil, err
		}
	}

	return c.sorted(), nil
}

// Metadata renders the exported helper reading error metadata from a body.
func (g *Generator) Metadata() (string, error) {
	if err := g.ctx.Symbols.Reserve(MetadataFunc, "error metadata"); err != nil {
		return "", err
	}

	var w emit.Writer

	w.Line("// %s reads the error code and message of a %s error response.", MetadataFunc, g.ctx.Protocol.Name)
	w.Open("func %s(body []byte) codec.ErrorMetadata {", MetadataFunc)
	w.Line("return %s", g.codec.ErrorMetadata("body"))
	w.Close("}")

	return w.String(), nil
}

func (g *Generator) reserve(owner string, names ...string) error {
	for _, name := range names {
		if err := g.ctx.Symbols.Reserve(name, owner); err != nil {
			return err
		}
	}

	return nil
}

// aggregate renders the interface, markers and unhandled variant shared by
// operation and service aggregates.
func (g *Generator) aggregate(w *emit.Writer, name, owner string, errs []*model.Shape) {
	marker := "is" + name
	unhandled := name + "Unhandled"

	w.Line("// %s is an error %s can return: one of its modeled errors, or", name, owner)
	w.Line("// *%s.", unhandled)
	w.Open("type %s interface {", name)
	w.Line("error")
	w.Line("codec.MetadataProvider")
	w.Line("%s()", marker)
	w.Close("}")
	w.Blank()

	for _, s := range errs {
		w.Line("func (*%s) %s() {}", g.ctx.TypeName(s), marker)
	}

	if len(errs) > 0 {
		w.Blank()
	}

	w.Line("// %s is an error response %s does not model, or one whose", unhandled, owner)
	w.Line("// body could not be decoded. Err is the underlying failure, if any.")
	w.Open("type %s struct {", unhandled)
	w.Line("Meta codec.ErrorMetadata")
	w.Line("Err  error")
	w.Close("}")
	w.Blank()
	w.Open("func (e *%s) Error() string {", unhandled)
	w.Open("if e.Err != nil {")
	w.Line("return e.Meta.String() + \": \" + e.Err.Error()")
	w.Close("}")
	w.Blank()
	w.Line("return e.Meta.String()")
	w.Close("}")
	w.Blank()
	w.Line("func (e *%s) Unwrap() error { return e.Err }", unhandled)
	w.Blank()
	w.Line("// Metadata returns whatever code and message could be recovered.")
	w.Line("func (e *%s) Metadata() codec.ErrorMetadata { return e.Meta }", unhandled)
	w.Blank()
	w.Line("func (*%s) %s() {}", unhandled, marker)
	w.Blank()
	w.Line("// %sRetryKind classifies err for retries. Only modeled retryable errors", name)
	w.Line("// are retried.")
	w.Open("func %sRetryKind(err %s) codec.RetryKind {", name, name)

	var retryable []string

	for _, s := range errs {
		if ok, _ := s.Retryable(); ok {
			retryable = append(retryable, "*"+g.ctx.TypeName(s))
		}
	}

	if len(retryable) == 0 {
		w.Line("return codec.RetryNone")
	} else {
		w.Open("switch e := err.(type) {")

		for _, typ := range retryable {
			w.Middle("case %s:", typ)
			w.Line("return e.RetryKind()")
		}

		w.Middle("default:")
		w.Line("return codec.RetryNone")
		w.Close("}")
	}

	w.Close("}")
}

// Operation renders the error aggregate of an operation and its parser and
// transport conversion.
func (g *Generator) Operation(op *model.Shape) (string, error) {
	errs, err := g.Collect(op)
	if err != nil {
		return "", err
	}

	name := symbol.Exported(op.Name()) + "Error"
	unhandled := name + "Unhandled"
	parse := "Parse" + name
	fromTransport := name + "FromTransport"

	if err := g.reserve(string(op.ID), name, unhandled, parse, fromTransport, name+"RetryKind"); err != nil {
		return "", err
	}

	var w emit.Writer

	g.aggregate(&w, name, op.Name(), errs)

	if extra := g.ctx.Hooks.Write(hooks.OperationErrorImpls{Operation: op, TypeName: name}); extra != "" {
		w.Blank()
		w.Block(extra)
	}

	w.Blank()
	w.Line("// %s decodes the error response named by meta.Code. Unknown codes and", parse)
	w.Line("// undecodable bodies yield *%s.", unhandled)
	w.Open("func %s(meta codec.ErrorMetadata, body []byte) %s {", parse, name)
	w.Open("switch codec.SanitizeErrorCode(meta.Code) {")

	for _, s := range errs {
		fn, err := g.codec.ParseError(s)
		if err != nil {
			return "", fmt.Errorf("operation %s error %s: %w", op.ID, s.ID, err)
		}

		w.Middle("case %q:", s.Name())
		w.Line("v, err := %s(body)", fn)
		w.Open("if err != nil {")
		w.Line("return &%s{Meta: meta, Err: err}", unhandled)
		w.Close("}")
		w.Blank()
		w.Line("return v")
	}

	w.Middle("default:")
	w.Line("return &%s{Meta: meta}", unhandled)
	w.Close("}")
	w.Close("}")
	w.Blank()
	w.Line("// %s converts a transport failure. A service fault keeps the", fromTransport)
	w.Line("// already parsed error when it belongs to %s; anything else becomes", name)
	w.Line("// *%s with the transport error as its source.", unhandled)
	w.Open("func %s(err *codec.TransportError) %s {", fromTransport, name)
	w.Open("if err.Kind == codec.TransportServiceFault {")
	w.Line("var modeled %s", name)
	w.Open("if errors.As(err.Err, &modeled) {")
	w.Line("return modeled")
	w.Close("}")
	w.Blank()
	w.Line("return &%s{Meta: err.Meta, Err: err}", unhandled)
	w.Close("}")
	w.Blank()
	w.Line("return &%s{Err: err}", unhandled)
	w.Close("}")

	logger.Verbose("errorsgen: operation", op.ID, "has", len(errs), "errors")

	return w.String(), nil
}

// Service renders the service-wide aggregate that absorbs the error of any
// operation.
func (g *Generator) Service(svc *model.Shape, ops []*model.Shape) (string, error) {
	errs, err := g.CollectService(ops)
	if err != nil {
		return "", err
	}

	name := g.ctx.TypeName(svc) + "Error"
	unhandled := name + "Unhandled"
	from := name + "From"

	if err := g.reserve(string(svc.ID), name, unhandled, from, name+"RetryKind"); err != nil {
		return "", err
	}

	var w emit.Writer

	g.aggregate(&w, name, svc.Name(), errs)

	w.Blank()
	w.Line("// %s rewraps an operation error as %s: modeled errors keep their", from, name)
	w.Line("// type and unhandled ones keep their metadata and source.")
	w.Open("func %s(err error) %s {", from, name)
	w.Open("switch e := err.(type) {")
	w.Middle("case nil:")
	w.Line("return nil")
	w.Middle("case %s:", name)
	w.Line("return e")

	for _, op := range ops {
		w.Middle("case *%sErrorUnhandled:", symbol.Exported(op.Name()))
		w.Line("return &%s{Meta: e.Meta, Err: e.Err}", unhandled)
	}

	w.Close("}")
	w.Blank()
	w.Line("var meta codec.ErrorMetadata")
	w.Blank()
	w.Line("var mp codec.MetadataProvider")
	w.Open("if errors.As(err, &mp) {")
	w.Line("meta = mp.Metadata()")
	w.Close("}")
	w.Blank()
	w.Line("return &%s{Meta: meta, Err: err}", unhandled)
	w.Close("}")

	return w.String(), nil
}
