package eventstream

import (
	"fmt"

	"codec-generator/internal/constraint"
	"codec-generator/internal/emit"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/registry"
	"codec-generator/internal/symbol"
)

// header describes how a scalar kind travels as a message header.
type header struct {
	// value is the eventstream header value type.
	value string
	// reader is the eventrt accessor.
	reader string
}

func headerOf(t *model.Shape) (header, bool) {
	switch t.Kind {
	case model.KindString, model.KindEnum:
		return header{"StringValue", "StringHeader"}, true
	case model.KindBoolean:
		return header{"BoolValue", "BoolHeader"}, true
	case model.KindByte:
		return header{"Int8Value", "Int8Header"}, true
	case model.KindShort:
		return header{"Int16Value", "Int16Header"}, true
	case model.KindInteger, model.KindIntEnum:
		return header{"Int32Value", "Int32Header"}, true
	case model.KindLong:
		return header{"Int64Value", "Int64Header"}, true
	case model.KindBlob:
		return header{"BytesValue", "BytesHeader"}, true
	case model.KindTimestamp:
		return header{"TimestampValue", "TimestampHeader"}, true
	default:
		return header{}, false
	}
}

// raw converts a field value expression to the Go type the header holds.
func raw(t *model.Shape, expr string) string {
	switch {
	case t.Kind == model.KindIntEnum:
		return "int32(" + expr + ")"
	case t.IsEnum():
		return "string(" + expr + ")"
	default:
		return expr
	}
}

// serializeMessage returns the function setting the headers and payload of
// a message from an event structure.
func (g *Generator) serializeMessage(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose + "Message", Direction: registry.Serialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		fields, err := g.ctx.Fields(s)
		if err != nil {
			return "", err
		}

		var w emit.Writer

		w.Open("func %s(v *%s, msg *eventstream.Message) error {", name, g.ctx.TypeName(s))

		for _, f := range fields {
			if !f.Member.EventHeader() {
				continue
			}

			h, ok := headerOf(f.Target)
			if !ok {
				return "", fmt.Errorf("%w: event header %s targets a %s", symbol.ErrUnsupportedShape, f.Member.ID(), f.Target.Kind)
			}

			expr := "v." + f.Name

			switch {
			case f.Pointer:
				w.Open("if %s != nil {", expr)
				w.Line("msg.Headers.Set(%q, eventstream.%s(%s))", f.Member.Name, h.value, raw(f.Target, "*"+expr))
				w.Close("}")
			case symbol.Nilable(f.Target):
				w.Open("if %s != nil {", expr)
				w.Line("msg.Headers.Set(%q, eventstream.%s(%s))", f.Member.Name, h.value, raw(f.Target, expr))
				w.Close("}")
			default:
				w.Line("msg.Headers.Set(%q, eventstream.%s(%s))", f.Member.Name, h.value, raw(f.Target, expr))
			}
		}

		if err := g.serializePayload(&w, s, fields); err != nil {
			return "", err
		}

		w.Blank()
		w.Line("return nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) serializePayload(w *emit.Writer, s *model.Shape, fields []protocol.Field) error {
	var payload *protocol.Field

	for i := range fields {
		if fields[i].Member.EventPayload() {
			payload = &fields[i]
		}
	}

	if payload == nil {
		fn, err := g.codec.SerializePayload(s, purpose, documentMember)
		if err != nil {
			return err
		}

		w.Blank()
		w.Line("body, err := %s(v)", fn)
		w.Open("if err != nil {")
		w.Line("return err")
		w.Close("}")
		w.Blank()
		w.Line("msg.Payload = body")

		return nil
	}

	expr := "v." + payload.Name

	w.Blank()

	switch payload.Target.Kind {
	case model.KindBlob:
		w.Line("msg.Payload = %s", expr)
	case model.KindString:
		if payload.Pointer {
			w.Open("if %s != nil {", expr)
			w.Line("msg.Payload = []byte(%s)", raw(payload.Target, "*"+expr))
			w.Close("}")
		} else {
			w.Line("msg.Payload = []byte(%s)", raw(payload.Target, expr))
		}
	case model.KindStructure:
		fn, err := g.codec.SerializePayload(payload.Target, purpose, nil)
		if err != nil {
			return err
		}

		w.Open("if %s != nil {", expr)
		w.Line("body, err := %s(%s)", fn, expr)
		w.Open("if err != nil {")
		w.Line("return err")
		w.Close("}")
		w.Blank()
		w.Line("msg.Payload = body")
		w.Close("}")
	default:
		return fmt.Errorf("%w: event payload %s targets a %s", symbol.ErrUnsupportedShape, payload.Member.ID(), payload.Target.Kind)
	}

	return nil
}

// parseMessage returns the function reading an event structure from the
// payload and headers of a message.
func (g *Generator) parseMessage(s *model.Shape) (string, error) {
	key := registry.Key{Shape: s.ID, Purpose: purpose + "Message", Direction: registry.Deserialize}

	return g.ctx.Functions.GetOrCreate(key, func(name string) (string, error) {
		fields, err := g.ctx.Fields(s)
		if err != nil {
			return "", err
		}

		typ := g.ctx.TypeName(s)

		var w emit.Writer

		w.Open("func %s(msg eventstream.Message) (*%s, error) {", name, typ)

		if err := g.parsePayload(&w, s, fields); err != nil {
			return "", err
		}

		for _, f := range fields {
			if !f.Member.EventHeader() {
				continue
			}

			if err := g.parseHeader(&w, s, f); err != nil {
				return "", err
			}
		}

		w.Blank()
		w.Line("return v, nil")
		w.Close("}")

		return w.String(), nil
	})
}

func (g *Generator) parsePayload(w *emit.Writer, s *model.Shape, fields []protocol.Field) error {
	var payload *protocol.Field

	for i := range fields {
		if fields[i].Member.EventPayload() {
			payload = &fields[i]
		}
	}

	if payload == nil {
		fn, err := g.codec.ParsePayload(s, purpose, documentMember)
		if err != nil {
			return err
		}

		w.Line("v, err := %s(msg.Payload)", fn)
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")

		return nil
	}

	w.Line("v := &%s{}", g.ctx.TypeName(s))
	w.Blank()

	dst := "v." + payload.Name

	switch payload.Target.Kind {
	case model.KindBlob:
		w.Line("%s = msg.Payload", dst)
	case model.KindString:
		conv := "string(msg.Payload)"
		if payload.Target.IsEnum() {
			conv = g.ctx.TypeName(payload.Target) + "(msg.Payload)"
		}

		w.Line("text := %s", conv)

		if payload.Pointer {
			w.Line("%s = &text", dst)
		} else {
			w.Line("%s = text", dst)
		}
	case model.KindStructure:
		fn, err := g.codec.ParsePayload(payload.Target, purpose, nil)
		if err != nil {
			return err
		}

		w.Line("body, err := %s(msg.Payload)", fn)
		w.Open("if err != nil {")
		w.Line("return nil, err")
		w.Close("}")
		w.Blank()
		w.Line("%s = body", dst)
	default:
		return fmt.Errorf("%w: event payload %s targets a %s", symbol.ErrUnsupportedShape, payload.Member.ID(), payload.Target.Kind)
	}

	return nil
}

// parseHeader emits the read of one header member into v.
func (g *Generator) parseHeader(w *emit.Writer, s *model.Shape, f protocol.Field) error {
	h, ok := headerOf(f.Target)
	if !ok {
		return fmt.Errorf("%w: event header %s targets a %s", symbol.ErrUnsupportedShape, f.Member.ID(), f.Target.Kind)
	}

	conv := "x"
	if f.Target.Kind == model.KindIntEnum || f.Target.IsEnum() {
		conv = g.ctx.TypeName(f.Target) + "(x)"
	}

	w.Blank()
	w.Open("if x, ok, err := eventrt.%s(msg, %q); err != nil {", h.reader, f.Member.Name)
	w.Line("return nil, err")
	w.Middle("} else if ok {")
	w.Line("val := %s", conv)

	if (f.Target.Kind == model.KindIntEnum || f.Target.IsEnum()) && g.ctx.Policy.UnknownEnum() == policy.RejectUnknown {
		tag := "x"
		if f.Target.Kind == model.KindIntEnum {
			tag = "strconv.FormatInt(int64(x), 10)"
		}

		w.Open("if !val.IsKnown() {")
		w.Line("return nil, codec.UnknownVariantError(-1, %q, %s)", string(f.Target.ID), tag)
		w.Close("}")
		w.Blank()
	}

	if f.Pointer {
		w.Line("v.%s = &val", f.Name)
	} else {
		w.Line("v.%s = val", f.Name)
	}

	if f.Nullability == constraint.Required {
		w.Middle("} else {")
		w.Line("return nil, codec.MissingFieldError(%q, %q)", string(s.ID), f.Member.Name)
	}

	w.Close("}")

	return nil
}
