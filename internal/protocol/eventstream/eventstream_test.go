package eventstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/cborproto"
	"codec-generator/internal/protocol/eventstream"
	"codec-generator/internal/protocol/jsonproto"
	"codec-generator/internal/protocol/protocoltest"
)

func generate(t *testing.T, protocolName string, target policy.Target) (*protocol.Context, []protocol.Entry, string) {
	t.Helper()

	ctx := protocoltest.Context(t, protocolName, target, nil)

	var c protocol.Codec = jsonproto.New(ctx)
	if protocolName == "rpcv2Cbor" {
		c = cborproto.New(ctx)
	}

	op := protocoltest.Shape(t, ctx, "example.shop#WatchOrders")

	streams, err := eventstream.Streams(ctx.Model, op)
	require.NoError(t, err)
	require.Len(t, streams, 1)

	entries, err := eventstream.New(ctx, c).Entries(streams[0])
	require.NoError(t, err)

	src := protocoltest.Source(ctx)
	for _, e := range entries {
		src += e.Source
	}

	return ctx, entries, src
}

func TestEntries_Names(t *testing.T) {
	_, entries, _ := generate(t, "awsJson1_1", policy.Client)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}

	assert.Equal(t, []string{"MarshalOrderEventsEvent", "MarshalOrderEventsError", "UnmarshalOrderEventsEvent"}, names)
}

func TestMarshal_Headers(t *testing.T) {
	ctx, entries, src := generate(t, "awsJson1_1", policy.Client)

	assert.Contains(t, src, `msg := eventrt.NewEvent("shipped", "application/x-amz-json-1.1")`)
	assert.Contains(t, src, `msg := eventrt.NewEvent("receipt", "application/octet-stream")`)
	assert.Contains(t, src, `msg := eventrt.NewException("throttled", "application/x-amz-json-1.1")`)
	assert.Contains(t, src, `msg.Headers.Set("trackingId", eventstream.StringValue(v.TrackingId))`)
	assert.Contains(t, src, `msg.Headers.Set("parcels", eventstream.Int32Value(*v.Parcels))`)
	assert.Contains(t, src, `msg.Headers.Set("status", eventstream.StringValue(string(*v.Status)))`)
	assert.Contains(t, src, `msg.Headers.Set("shippedAt", eventstream.TimestampValue(*v.ShippedAt))`)
	assert.Contains(t, src, "msg.Payload = v.Data")
	assert.Contains(t, src, "body, err := serializeDocEventJSONOrderShipped(v)")

	// Error variants are framed by the sibling marshaller only.
	assert.Contains(t, entries[0].Source, "use MarshalOrderEventsError")
	assert.Contains(t, entries[1].Source, "is an event, not an error")

	var decls []string
	for _, e := range entries {
		decls = append(decls, e.Source)
	}

	protocoltest.Render(t, ctx, decls...)
}

func TestUnmarshal_Client(t *testing.T) {
	ctx, entries, src := generate(t, "awsJson1_1", policy.Client)

	unmarshal := entries[2].Source
	assert.Contains(t, unmarshal, "switch mt {")
	assert.Contains(t, unmarshal, "tag, _, err := eventrt.StringHeader(msg, eventrt.EventTypeHeader)")
	assert.Contains(t, unmarshal, "tag, _, err := eventrt.StringHeader(msg, eventrt.ExceptionTypeHeader)")
	assert.Contains(t, unmarshal, "val, err := parseEventMessageOrderShipped(msg)")
	assert.Contains(t, unmarshal, "return &OrderEventsMemberShipped{Value: *val}, nil")
	assert.Contains(t, unmarshal, "return nil, val")
	assert.Contains(t, unmarshal, "return &UnknownUnionMember{Tag: tag, Value: msg.Payload}, nil")
	assert.Contains(t, unmarshal, "return nil, eventrt.NewMessageError(msg)")

	assert.Contains(t, src, "v, err := parseDocEventJSONOrderShipped(msg.Payload)")
	assert.Contains(t, src, `if x, ok, err := eventrt.StringHeader(msg, "trackingId"); err != nil {`)
	assert.Contains(t, src, `return nil, codec.MissingFieldError("example.shop#OrderShipped", "trackingId")`)
	assert.Contains(t, src, "val := Status(x)")

	protocoltest.Render(t, ctx, unmarshal)
}

func TestUnmarshal_Server(t *testing.T) {
	_, entries, src := generate(t, "rpcv2Cbor", policy.Server)

	assert.Contains(t, entries[2].Source, `return nil, codec.UnknownVariantError(-1, "example.shop#OrderEvents", tag)`)
	assert.NotContains(t, entries[2].Source, "UnknownUnionMember")
	assert.Contains(t, src, `return nil, codec.UnknownVariantError(-1, "example.shop#Status", x)`)
	assert.Contains(t, src, "parseDocEventCBOROrderShipped(msg.Payload)")
}

func TestContentType(t *testing.T) {
	ctx := protocoltest.Context(t, "rpcv2Cbor", policy.Client, nil)
	g := eventstream.New(ctx, cborproto.New(ctx))

	for id, want := range map[model.ShapeID]string{
		"example.shop#OrderShipped": "application/cbor",
		"example.shop#ReceiptEvent": eventstream.BlobContentType,
		"example.shop#Throttled":    "application/cbor",
	} {
		got, err := g.ContentType(protocoltest.Shape(t, ctx, id))
		require.NoError(t, err)
		assert.Equal(t, want, got, id)
	}
}

func TestStreams_None(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_1", policy.Client, nil)

	streams, err := eventstream.Streams(ctx.Model, protocoltest.Shape(t, ctx, "example.shop#PutOrder"))
	require.NoError(t, err)
	assert.Empty(t, streams)
}
