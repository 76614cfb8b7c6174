package protocol

import (
	"errors"
	"fmt"

	"codec-generator/internal/emit"
	"codec-generator/internal/model"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

// Entry is an exported top-level function.
type Entry struct {
	Direction registry.Direction
	Name      string
	Source    string
}

// EntryPoints generates the exported serialize/parse functions of an
// operation's input and output. Unit inputs and outputs have none.
func EntryPoints(ctx *Context, c Codec, op *model.Shape) ([]Entry, error) {
	opName := symbol.Exported(op.Name())

	var out []Entry

	add := func(e Entry, err error) error {
		if errors.Is(err, ErrNotSupported) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("operation %s: %w", op.ID, err)
		}

		if err := ctx.Symbols.Reserve(e.Name, string(op.ID)); err != nil {
			return err
		}

		out = append(out, e)

		return nil
	}

	if in, ok, err := ioShape(ctx, op.Input); err != nil {
		return nil, err
	} else if ok {
		builder := ctx.Builder(in)

		if err := add(serializerEntry(ctx, opName+"Input", in, func() (string, error) {
			return c.SerializeInput(op, in)
		})); err != nil {
			return nil, err
		}

		if err := add(parserEntry(ctx, opName+"Input", in, builder, func() (string, error) {
			return c.ParseInput(op, in, builder)
		})); err != nil {
			return nil, err
		}
	}

	if outShape, ok, err := ioShape(ctx, op.Output); err != nil {
		return nil, err
	} else if ok {
		if err := add(serializerEntry(ctx, opName+"Output", outShape, func() (string, error) {
			return c.SerializeOutput(op, outShape)
		})); err != nil {
			return nil, err
		}

		if err := add(parserEntry(ctx, opName+"Output", outShape, false, func() (string, error) {
			return c.ParseOutput(op, outShape)
		})); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// ErrorSerializerEntry generates the exported Serialize<Error> function that
// writes an error response body.
func ErrorSerializerEntry(ctx *Context, c Codec, s *model.Shape) (Entry, error) {
	e, err := serializerEntry(ctx, ctx.TypeName(s), s, func() (string, error) {
		return c.SerializeError(s)
	})
	if err != nil {
		return Entry{}, err
	}

	if err := ctx.Symbols.Reserve(e.Name, string(s.ID)); err != nil {
		return Entry{}, err
	}

	return e, nil
}

func ioShape(ctx *Context, id model.ShapeID) (*model.Shape, bool, error) {
	if id == "" || model.IsUnit(id) {
		return nil, false, nil
	}

	s, err := ctx.Model.MustShape(id)
	if err != nil {
		return nil, false, err
	}

	if s.Kind != model.KindStructure {
		return nil, false, fmt.Errorf("%w: operation input/output %s is a %s", ErrNotSupported, id, s.Kind)
	}

	return s, true, nil
}

func serializerEntry(ctx *Context, suffix string, s *model.Shape, impl func() (string, error)) (Entry, error) {
	fn, err := impl()
	if err != nil {
		return Entry{}, err
	}

	name := "Serialize" + suffix
	typ := ctx.TypeName(s)

	var w emit.Writer

	w.Line("// %s encodes a %s as a %s body.", name, typ, ctx.Protocol.Name)
	w.Open("func %s(v *%s) ([]byte, error) {", name, typ)
	w.Line("b, err := %s(v)", fn)
	w.Open("if err != nil {")
	w.Line("return nil, &smithy.SerializationError{Err: err}")
	w.Close("}")
	w.Blank()
	w.Line("return b, nil")
	w.Close("}")

	return Entry{Direction: registry.Serialize, Name: name, Source: w.String()}, nil
}

func parserEntry(ctx *Context, suffix string, s *model.Shape, builder bool, impl func() (string, error)) (Entry, error) {
	fn, err := impl()
	if err != nil {
		return Entry{}, err
	}

	name := "Parse" + suffix

	typ := ctx.TypeName(s)
	if builder {
		typ = ctx.Symbols.BuilderName(s.ID)
	}

	var w emit.Writer

	if builder {
		w.Line("// %s decodes a %s body into an unvalidated %s; call Build to", name, ctx.Protocol.Name, typ)
		w.Line("// enforce the modeled constraints.")
	} else {
		w.Line("// %s decodes a %s body.", name, ctx.Protocol.Name)
	}

	w.Open("func %s(data []byte) (*%s, error) {", name, typ)
	w.Line("v, err := %s(data)", fn)
	w.Open("if err != nil {")
	w.Line("return nil, &smithy.DeserializationError{Err: err, Snapshot: data}")
	w.Close("}")
	w.Blank()
	w.Line("return v, nil")
	w.Close("}")

	return Entry{Direction: registry.Deserialize, Name: name, Source: w.String()}, nil
}

// AddImports adds every runtime package generated code may refer to. Unused
// ones are pruned when the file is rendered.
func AddImports(f *emit.File) {
	for _, path := range []string{
		RuntimeCodec, RuntimeJSON, RuntimeCBOR, RuntimeXML, RuntimeQuery,
		RuntimeEvent, RuntimeTime, EventStream,
	} {
		f.Import(path)
	}

	f.ImportAs("smithy", Smithy)
	f.ImportAs(SmithyJSONPkg, SmithyJSON)
	f.ImportAs(SmithyCBORPkg, SmithyCBOR)
	f.ImportAs(SmithyXMLPkg, SmithyXML)
}
