package cborproto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/hooks"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/cborproto"
	"codec-generator/internal/protocol/protocoltest"
)

func generate(t *testing.T, target policy.Target, reg *hooks.Registry) (*protocol.Context, string) {
	t.Helper()

	ctx := protocoltest.Context(t, "rpcv2Cbor", target, reg)

	_, err := protocol.EntryPoints(ctx, cborproto.New(ctx), protocoltest.Shape(t, ctx, "example.shop#PutOrder"))
	require.NoError(t, err)

	return ctx, protocoltest.Source(ctx)
}

func TestSerializer_Structures(t *testing.T) {
	ctx, src := generate(t, policy.Client, nil)

	assert.Equal(t, 1, strings.Count(src, "func serializeCBOROrder(v *Order) (smithycbor.Value, error) {"))
	assert.Contains(t, src, "m := smithycbor.Map{}")
	assert.Contains(t, src, `m["quantity"] = cborrt.Int(int64(v.Quantity))`)
	assert.Contains(t, src, `m["weight"] = smithycbor.Float32(*v.Weight)`)
	assert.Contains(t, src, `if m["payment"], err = serializeCBORPayment(v.Payment); err != nil {`)
	assert.Contains(t, src, "return cborrt.Encode(av), nil")

	protocoltest.Render(t, ctx)
}

func TestSerializer_Containers(t *testing.T) {
	_, src := generate(t, policy.Client, nil)

	assert.Contains(t, src, "l := make(smithycbor.List, 0, len(v))")
	assert.Contains(t, src, "av, err := serializeCBORItem(&x)")
	assert.Contains(t, src, "l = append(l, av)")
	// Sparse maps keep nil entries as null.
	assert.Contains(t, src, "m[k] = cborrt.Null()\n\t\t\tcontinue")
}

func TestSerializer_Union(t *testing.T) {
	_, src := generate(t, policy.Client, nil)

	assert.Contains(t, src, `m["cash"] = smithycbor.Map{}`)
	assert.Contains(t, src, `m["voucher"] = smithycbor.String(uv.Value)`)
	assert.Contains(t, src, `if m["card"], err = serializeCBORCard(&uv.Value); err != nil {`)
	assert.Contains(t, src, `return nil, fmt.Errorf("cannot serialize unknown Payment member %q", uv.Tag)`)
}

func TestUnionWireNameHook(t *testing.T) {
	var reg hooks.Registry

	reg.Register(hooks.HookFunc(func(s hooks.Section) string {
		if sec, ok := s.(hooks.UnionVariantWireName); ok && sec.Protocol == "cbor" {
			return strings.ToUpper(sec.Current)
		}

		return ""
	}))

	_, src := generate(t, policy.Client, &reg)
	assert.Contains(t, src, `m["CARD"]`)
	assert.Contains(t, src, `case "CARD":`)
	// Structure member keys are untouched.
	assert.Contains(t, src, `case "number":`)
}

func TestParser_Client(t *testing.T) {
	ctx, src := generate(t, policy.Client, nil)

	assert.Contains(t, src, "func parseCBOROrder(av smithycbor.Value) (*Order, error) {")
	assert.Contains(t, src, "av, err := cborrt.Decode(data)")
	assert.Contains(t, src, "m, ok, err := cborrt.Map(av)")
	assert.Contains(t, src, "x, ok, err := cborrt.Integer(sv, math.MinInt32, math.MaxInt32)")
	assert.Contains(t, src, `return nil, cborrt.In("Order.quantity", err)`)
	assert.Contains(t, src, "v = &UnknownUnionMember{Tag: key, Value: cborrt.Raw(sv)}")
	assert.Contains(t, src, `return nil, codec.MissingFieldError("example.shop#PutOrderOutput", "id")`)

	protocoltest.Render(t, ctx)
}

func TestParser_UnionNullVariantsNeverClaim(t *testing.T) {
	_, src := generate(t, policy.Client, nil)

	assert.Contains(t, src, "if val != nil {\n\t\t\t\tif tag != \"\" {")
	assert.Contains(t, src, "if ok {\n\t\t\t\tif tag != \"\" {")
	assert.Contains(t, src, `return nil, codec.MixedUnionError(-1, "example.shop#Payment", tag, key)`)
}

func TestParser_Server(t *testing.T) {
	ctx, src := generate(t, policy.Server, nil)

	assert.Contains(t, src, "func parseDocCBORBuilderPutOrderInput(data []byte) (*PutOrderInputBuilder, error) {")
	assert.Contains(t, src, "b, err := parseCBORBuilderOrder(av)")
	assert.Contains(t, src, `return nil, codec.UnknownVariantError(-1, "example.shop#Payment", key)`)
	assert.Contains(t, src, "if ok && !val.IsKnown() {")
	assert.NotContains(t, src, "cborrt.Raw(")

	protocoltest.Render(t, ctx)
}

func TestErrorMetadata(t *testing.T) {
	ctx := protocoltest.Context(t, "rpcv2Cbor", policy.Client, nil)
	assert.Equal(t, "cborrt.ErrorComponents(body)", cborproto.New(ctx).ErrorMetadata("body"))
}
