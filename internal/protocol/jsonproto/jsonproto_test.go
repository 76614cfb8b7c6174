package jsonproto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/hooks"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/jsonproto"
	"codec-generator/internal/protocol/protocoltest"
)

func entries(t *testing.T, ctx *protocol.Context) []protocol.Entry {
	t.Helper()

	op := protocoltest.Shape(t, ctx, "example.shop#PutOrder")

	out, err := protocol.EntryPoints(ctx, jsonproto.New(ctx), op)
	require.NoError(t, err)

	return out
}

func names(es []protocol.Entry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name)
	}

	return out
}

func TestEntryPoints_Names(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)

	assert.Equal(t, []string{
		"SerializePutOrderInput",
		"ParsePutOrderInput",
		"SerializePutOrderOutput",
		"ParsePutOrderOutput",
	}, names(entries(t, ctx)))

	ping, err := protocol.EntryPoints(ctx, jsonproto.New(ctx), protocoltest.Shape(t, ctx, "example.shop#Ping"))
	require.NoError(t, err)
	assert.Empty(t, ping)
}

func TestEntryPoints_WrapErrors(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)

	es := entries(t, ctx)
	assert.Contains(t, es[0].Source, "return nil, &smithy.SerializationError{Err: err}")
	assert.Contains(t, es[1].Source, "return nil, &smithy.DeserializationError{Err: err, Snapshot: data}")
	assert.Contains(t, es[1].Source, "func ParsePutOrderInput(data []byte) (*PutOrderInput, error) {")
}

func TestSerializer_RecursiveStructureGeneratedOnce(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Equal(t, 1, strings.Count(src, "func serializeJSONOrder(v *Order, value smithyjson.Value) error {"))
	assert.Equal(t, 1, strings.Count(src, "func parseJSONOrder(d *jsonrt.Decoder) (*Order, error) {"))
	assert.Contains(t, src, `if err := serializeJSONOrder(v.Parent, object.Key("parent")); err != nil {`)

	protocoltest.Render(t, ctx)
}

func TestSerializer_Containers(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	entries(t, ctx)

	src := protocoltest.Source(ctx)

	// Dense list of structures holds values.
	assert.Contains(t, src, "func serializeJSONItemList(v []Item, value smithyjson.Value) error {")
	assert.Contains(t, src, "if err := serializeJSONItem(&e, array.Value()); err != nil {")

	// Sparse map writes null for nil entries, in key order.
	assert.Contains(t, src, "func serializeJSONLabels(v map[string]*int32, value smithyjson.Value) error {")
	assert.Contains(t, src, "sort.Strings(keys)")
	assert.Contains(t, src, "object.Key(k).Null()")
	assert.Contains(t, src, "object.Key(k).Integer(*e)")
}

func TestSerializer_Scalars(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Contains(t, src, `object.Key("placedAt").String(timefmt.FormatHTTPDate(*v.PlacedAt))`)
	assert.Contains(t, src, `object.Key("priority").Integer(int32(*v.Priority))`)
	assert.Contains(t, src, `object.Key("status").String(string(*v.Status))`)
	assert.Contains(t, src, `object.Key("receipt").Base64EncodeBytes(v.Receipt)`)
	assert.Contains(t, src, `jsonrt.WriteFloat(object.Key("weight"), float64(*v.Weight), 32)`)
	assert.Contains(t, src, `object.Key("quantity").Integer(v.Quantity)`)
}

func TestSerializer_JSONNameOnlyForRestJSON(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_1", policy.Client, nil)
	entries(t, ctx)
	assert.Contains(t, protocoltest.Source(ctx), `object.Key("customerName")`)

	ctx = protocoltest.Context(t, "restJson1", policy.Client, nil)
	entries(t, ctx)
	assert.Contains(t, protocoltest.Source(ctx), `object.Key("customer_name")`)
	assert.Contains(t, protocoltest.Source(ctx), `case "customer_name":`)
}

func TestSerializer_SuppressDefaults(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	ctx.SuppressDefaults = true
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Contains(t, src, "if v.Quantity != 1 {")
	assert.Contains(t, src, "if v.Gift != false {")
}

func TestSerializer_Union(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Contains(t, src, "case *PaymentMemberCard:")
	assert.Contains(t, src, `if err := serializeJSONCard(&uv.Value, object.Key("card")); err != nil {`)
	assert.Contains(t, src, `object.Key("cash").Object().Close()`)
	assert.Contains(t, src, `object.Key("voucher").String(uv.Value)`)
	assert.Contains(t, src, `return fmt.Errorf("cannot serialize unknown Payment member %q", uv.Tag)`)
}

func TestSerializeError_WritesType(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	s := protocoltest.Shape(t, ctx, "example.shop#OrderRejected")

	e, err := protocol.ErrorSerializerEntry(ctx, jsonproto.New(ctx), s)
	require.NoError(t, err)

	assert.Equal(t, "SerializeOrderRejected", e.Name)
	assert.Contains(t, protocoltest.Source(ctx), `object.Key("__type").String("example.shop#OrderRejected")`)
}

func TestParser_ClientKeepsUnknownVariants(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Contains(t, src, "raw, err := d.ReadRaw()")
	assert.Contains(t, src, "v = &UnknownUnionMember{Tag: key, Value: raw}")
	assert.Contains(t, src, `return nil, codec.MixedUnionError(d.Offset(), "example.shop#Payment", tag, key)`)
	assert.NotContains(t, src, "IsKnown()")

	// A null variant never claims the tag.
	assert.Contains(t, src, "if val != nil {\n\t\t\t\tif tag != \"\" {")
	assert.NotContains(t, src, "\t\ttag = key\n\n\t\tswitch key {")
	assert.NotContains(t, src, "Builder")

	protocoltest.Render(t, ctx)
}

func TestParser_ClientRequiredAndDefaults(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Contains(t, src, "v := &Order{Quantity: 1, Gift: false}")
	assert.Contains(t, src, "seenId := false")
	assert.Contains(t, src, `return nil, codec.MissingFieldError("example.shop#PutOrderOutput", "id")`)
	assert.Contains(t, src, "if v.Order == nil {")
	assert.Contains(t, src, "val, ok, err := d.ReadHTTPDate()")
}

func TestParser_ServerUsesBuilders(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Server, nil)
	es := entries(t, ctx)

	assert.Contains(t, es[1].Source, "func ParsePutOrderInput(data []byte) (*PutOrderInputBuilder, error) {")

	src := protocoltest.Source(ctx)
	assert.Contains(t, src, "func parseJSONBuilderOrder(d *jsonrt.Decoder) (*OrderBuilder, error) {")
	assert.Contains(t, src, "b, err := parseJSONBuilderOrder(d)")
	assert.Contains(t, src, "v, err := b.Build()")
	assert.Contains(t, src, `return nil, codec.UnknownVariantError(d.Offset(), "example.shop#Payment", key)`)
	assert.Contains(t, src, "if ok && !val.IsKnown() {")
	assert.NotContains(t, src, "d.ReadRaw()")

	protocoltest.Render(t, ctx)
}

func TestParser_DocumentEnvelope(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Contains(t, src, `data = []byte("{}")`)
	assert.Contains(t, src, `return nil, codec.NewDecodeError(d.Offset(), "unexpected data after PutOrderOutput object")`)
}

func TestHooks_PrologueAndEpilogue(t *testing.T) {
	var reg hooks.Registry

	reg.Register(hooks.HookFunc(func(s hooks.Section) string {
		switch sec := s.(type) {
		case hooks.StructSerializerPrologue:
			if sec.Shape.Name() == "Card" {
				return "// card prologue"
			}
		case hooks.StructParserEpilogue:
			if sec.Shape.Name() == "Card" {
				return "// card epilogue"
			}
		}

		return ""
	}))

	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, &reg)
	entries(t, ctx)

	src := protocoltest.Source(ctx)
	assert.Equal(t, 1, strings.Count(src, "// card prologue"))
	assert.Equal(t, 1, strings.Count(src, "// card epilogue"))
}

func TestPayload_DistinctPurpose(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_0", policy.Client, nil)
	g := jsonproto.New(ctx)
	card := protocoltest.Shape(t, ctx, "example.shop#Card")

	ser, err := g.SerializePayload(card, "Event", nil)
	require.NoError(t, err)
	assert.Equal(t, "serializeDocEventJSONCard", ser)

	parse, err := g.ParsePayload(card, "Event", nil)
	require.NoError(t, err)
	assert.Equal(t, "parseDocEventJSONCard", parse)

	assert.Equal(t, "jsonrt.ErrorComponents(body)", g.ErrorMetadata("body"))
}
