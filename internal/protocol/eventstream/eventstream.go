// Package eventstream generates the marshallers and unmarshallers framing the
// variants of an event stream union as event stream messages. Payload bodies
// are delegated to the protocol's codec.
package eventstream

import (
	"fmt"

	"codec-generator/internal/emit"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/symbol"
)

const purpose = "Event"

// Content types of explicit payload members that are not documents.
const (
	BlobContentType   = "application/octet-stream"
	StringContentType = "text/plain"
)

// Generator generates event stream functions for one protocol.
type Generator struct {
	ctx   *protocol.Context
	codec protocol.Codec
}

// New creates an event stream generator delegating payloads to c.
func New(ctx *protocol.Context, c protocol.Codec) *Generator {
	return &Generator{ctx: ctx, codec: c}
}

// Streams returns the event stream unions bound to the input and output
// members of an operation, input first.
func Streams(m *model.Model, op *model.Shape) ([]*model.Shape, error) {
	var out []*model.Shape

	for _, id := range []model.ShapeID{op.Input, op.Output} {
		if id == "" || model.IsUnit(id) {
			continue
		}

		s, err := m.MustShape(id)
		if err != nil {
			return nil, err
		}

		for _, mem := range s.Members {
			target, err := m.Target(mem)
			if err != nil {
				return nil, err
			}

			if target.IsEventStream() {
				out = append(out, target)
			}
		}
	}

	return out, nil
}

// variant is one member of an event stream union.
type variant struct {
	member *model.Member
	target *model.Shape
	// tag is the :event-type or :exception-type header value.
	tag  string
	name string
}

func (g *Generator) variants(union *model.Shape) (events, errs []variant, err error) {
	for _, m := range union.Members {
		target, err := g.ctx.Model.Target(m)
		if err != nil {
			return nil, nil, err
		}

		if target.Kind != model.KindStructure && !model.IsUnit(target.ID) {
			return nil, nil, fmt.Errorf("%w: event stream %s member %s targets a %s",
				symbol.ErrUnsupportedShape, union.ID, m.Name, target.Kind)
		}

		v := variant{
			member: m,
			target: target,
			tag:    m.Name,
			name:   g.ctx.Symbols.VariantName(union.ID, m),
		}

		if target.IsError() {
			errs = append(errs, v)
		} else {
			events = append(events, v)
		}
	}

	return events, errs, nil
}

// payloadMember returns the member bound to the whole message payload.
func payloadMember(s *model.Shape) *model.Member {
	for _, m := range s.Members {
		if m.EventPayload() {
			return m
		}
	}

	return nil
}

// ContentType classifies the payload of an event structure: the payload
// member's kind when one is bound, else the protocol document type.
func (g *Generator) ContentType(s *model.Shape) (string, error) {
	if model.IsUnit(s.ID) {
		return "", nil
	}

	m := payloadMember(s)
	if m == nil {
		return g.ctx.Protocol.ContentType, nil
	}

	target, err := g.ctx.Model.Target(m)
	if err != nil {
		return "", err
	}

	switch target.Kind {
	case model.KindBlob:
		return BlobContentType, nil
	case model.KindString:
		return StringContentType, nil
	case model.KindStructure:
		return g.ctx.Protocol.ContentType, nil
	default:
		return "", fmt.Errorf("%w: event payload %s targets a %s", symbol.ErrUnsupportedShape, m.ID(), target.Kind)
	}
}

func documentMember(m *model.Member) bool {
	return !m.EventHeader() && !m.EventPayload()
}

// Entries generates the exported functions of an event stream union:
// Marshal<Union>Event, Marshal<Union>Error when the union has error variants,
// and Unmarshal<Union>Event.
func (g *Generator) Entries(union *model.Shape) ([]protocol.Entry, error) {
	events, errs, err := g.variants(union)
	if err != nil {
		return nil, err
	}

	typ := g.ctx.TypeName(union)

	var out []protocol.Entry

	add := func(name string, src func(string) (string, error)) error {
		if err := g.ctx.Symbols.Reserve(name, string(union.ID)); err != nil {
			return err
		}

		body, err := src(name)
		if err != nil {
			return fmt.Errorf("event stream %s: %w", union.ID, err)
		}

		out = append(out, protocol.Entry{Name: name, Source: body})

		return nil
	}

	if err := add("Marshal"+typ+"Event", func(name string) (string, error) {
		return g.marshal(name, union, events, errs, false)
	}); err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		if err := add("Marshal"+typ+"Error", func(name string) (string, error) {
			return g.marshal(name, union, errs, events, true)
		}); err != nil {
			return nil, err
		}
	}

	if err := add("Unmarshal"+typ+"Event", func(name string) (string, error) {
		return g.unmarshal(name, union, events, errs)
	}); err != nil {
		return nil, err
	}

	return out, nil
}

// marshal renders the function framing the variants in handled. Variants in
// other belong to the sibling marshaller and are refused.
func (g *Generator) marshal(name string, union *model.Shape, handled, other []variant, exception bool) (string, error) {
	typ := g.ctx.TypeName(union)

	var w emit.Writer

	if exception {
		w.Line("// %s frames a modeled error of the %s stream as an exception message.", name, union.Name())
	} else {
		w.Line("// %s frames an event of the %s stream.", name, union.Name())
	}

	w.Open("func %s(v %s) (eventstream.Message, error) {", name, typ)
	w.Open("switch uv := v.(type) {")

	for _, vr := range handled {
		ct, err := g.ContentType(vr.target)
		if err != nil {
			return "", err
		}

		ctor := "eventrt.NewEvent"
		if exception {
			ctor = "eventrt.NewException"
		}

		w.Middle("case *%s:", vr.name)
		w.Line("msg := %s(%q, %q)", ctor, vr.tag, ct)

		if model.IsUnit(vr.target.ID) {
			w.Line("return msg, nil")
			continue
		}

		fn, err := g.serializeMessage(vr.target)
		if err != nil {
			return "", err
		}

		w.Open("if err := %s(&uv.Value, &msg); err != nil {", fn)
		w.Line("return eventstream.Message{}, &smithy.SerializationError{Err: err}")
		w.Close("}")
		w.Blank()
		w.Line("return msg, nil")
	}

	for _, vr := range other {
		w.Middle("case *%s:", vr.name)

		if exception {
			w.Line("return eventstream.Message{}, fmt.Errorf(\"%s member %s is an event, not an error\")", typ, vr.tag)
		} else {
			w.Line("return eventstream.Message{}, fmt.Errorf(\"%s member %s is an error; use Marshal%sError\")", typ, vr.tag, typ)
		}
	}

	w.Middle("case *UnknownUnionMember:")
	w.Line("return eventstream.Message{}, fmt.Errorf(\"cannot marshal unknown %s member %%q\", uv.Tag)", typ)
	w.Middle("default:")
	w.Line("return eventstream.Message{}, fmt.Errorf(\"unexpected %s member %%T\", v)", typ)
	w.Close("}")
	w.Close("}")

	return w.String(), nil
}

// unmarshal renders the function decoding one message of the stream.
func (g *Generator) unmarshal(name string, union *model.Shape, events, errs []variant) (string, error) {
	typ := g.ctx.TypeName(union)

	var w emit.Writer

	w.Line("// %s decodes one message of the %s stream. Modeled exceptions are", name, union.Name())
	w.Line("// returned as errors.")
	w.Open("func %s(msg eventstream.Message) (%s, error) {", name, typ)
	w.Line("mt, err := eventrt.MessageType(msg)")
	w.Open("if err != nil {")
	w.Line("return nil, err")
	w.Close("}")
	w.Blank()
	w.Open("switch mt {")
	w.Middle("case eventrt.EventMessageType:")
	w.Line("tag, _, err := eventrt.StringHeader(msg, eventrt.EventTypeHeader)")
	w.Open("if err != nil {")
	w.Line("return nil, err")
	w.Close("}")
	w.Blank()
	w.Open("switch tag {")

	for _, vr := range events {
		w.Middle("case %q:", vr.tag)

		if model.IsUnit(vr.target.ID) {
			w.Line("return &%s{}, nil", vr.name)
			continue
		}

		fn, err := g.parseMessage(vr.target)
		if err != nil {
			return "", err
		}

		w.Line("val, err := %s(msg)", fn)
		w.Open("if err != nil {")
		w.Line("return nil, &smithy.DeserializationError{Err: err, Snapshot: msg.Payload}")
		w.Close("}")
		w.Blank()
		w.Line("return &%s{Value: *val}, nil", vr.name)
	}

	w.Middle("default:")

	if g.ctx.Policy.UnknownUnionVariant() == policy.RejectUnknown {
		w.Line("return nil, codec.UnknownVariantError(-1, %q, tag)", string(union.ID))
	} else {
		w.Line("return &UnknownUnionMember{Tag: tag, Value: msg.Payload}, nil")
	}

	w.Close("}")
	w.Middle("case eventrt.ExceptionMessageType:")
	w.Line("tag, _, err := eventrt.StringHeader(msg, eventrt.ExceptionTypeHeader)")
	w.Open("if err != nil {")
	w.Line("return nil, err")
	w.Close("}")
	w.Blank()
	w.Open("switch tag {")

	for _, vr := range errs {
		w.Middle("case %q:", vr.tag)

		fn, err := g.parseMessage(vr.target)
		if err != nil {
			return "", err
		}

		w.Line("val, err := %s(msg)", fn)
		w.Open("if err != nil {")
		w.Line("return nil, &smithy.DeserializationError{Err: err, Snapshot: msg.Payload}")
		w.Close("}")
		w.Blank()
		w.Line("return nil, val")
	}

	w.Middle("default:")
	w.Line("return nil, &smithy.GenericAPIError{Code: tag, Message: string(msg.Payload)}")
	w.Close("}")
	w.Middle("case eventrt.ErrorMessageType:")
	w.Line("return nil, eventrt.NewMessageError(msg)")
	w.Middle("default:")
	w.Line("return nil, codec.NewDecodeError(-1, %q, mt)", "unrecognized event stream message type %q")
	w.Close("}")
	w.Close("}")

	return w.String(), nil
}
