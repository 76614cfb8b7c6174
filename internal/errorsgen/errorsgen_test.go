package errorsgen_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/errorsgen"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
	"codec-generator/internal/protocol/jsonproto"
	"codec-generator/internal/protocol/protocoltest"
	"codec-generator/internal/typesgen"
)

var operations = []model.ShapeID{"example.shop#PutOrder", "example.shop#Ping", "example.shop#WatchOrders"}

func names(ctx *protocol.Context, shapes []*model.Shape) []string {
	var out []string
	for _, s := range shapes {
		out = append(out, ctx.TypeName(s))
	}

	return out
}

func generate(t *testing.T, reg *hooks.Registry) (*protocol.Context, string) {
	t.Helper()

	ctx := protocoltest.Context(t, "awsJson1_1", policy.Client, reg)
	g := errorsgen.New(ctx, jsonproto.New(ctx))

	var (
		ops   []*model.Shape
		decls []string
	)

	for _, id := range operations {
		op := protocoltest.Shape(t, ctx, id)
		ops = append(ops, op)

		src, err := g.Operation(op)
		require.NoError(t, err)

		decls = append(decls, src)
	}

	svc, err := g.Service(protocoltest.Shape(t, ctx, protocoltest.Service), ops)
	require.NoError(t, err)

	meta, err := g.Metadata()
	require.NoError(t, err)

	decls = append(decls, svc, meta)

	var shapes []model.ShapeID
	for _, s := range ctx.Model.Shapes() {
		shapes = append(shapes, s.ID)
	}

	types, err := typesgen.New(ctx).Generate(shapes)
	require.NoError(t, err)

	protocoltest.Render(t, ctx, append(types, decls...)...)

	return ctx, strings.Join(decls, "\n")
}

func TestCollect(t *testing.T) {
	ctx := protocoltest.Context(t, "awsJson1_1", policy.Client, nil)
	g := errorsgen.New(ctx, jsonproto.New(ctx))

	for id, want := range map[model.ShapeID][]string{
		"example.shop#PutOrder": {"OrderRejected", "Throttled"},
		// Service errors apply everywhere.
		"example.shop#Ping": {"Throttled"},
		// The stream's error variant duplicates a service error.
		"example.shop#WatchOrders": {"OrderRejected", "Throttled"},
	} {
		errs, err := g.Collect(protocoltest.Shape(t, ctx, id))
		require.NoError(t, err)
		assert.Equal(t, want, names(ctx, errs), id)
	}
}

func TestCollect_NotAnError(t *testing.T) {
	m := protocoltest.Model(t, []byte(`{
  "smithy": "2.0",
  "shapes": {
    "example.bad#Op": {"type": "operation", "errors": [{"target": "example.shop#Card"}]}
  }
}`))
	ctx := protocoltest.ContextFor(t, m, "awsJson1_1", policy.Client, nil)

	_, err := errorsgen.New(ctx, jsonproto.New(ctx)).Collect(protocoltest.Shape(t, ctx, "example.bad#Op"))
	assert.ErrorContains(t, err, "has no error trait")
}

func TestOperation(t *testing.T) {
	_, src := generate(t, nil)

	assert.Contains(t, src, "type PutOrderError interface {\n\terror\n\tcodec.MetadataProvider\n\tisPutOrderError()\n}")
	assert.Contains(t, src, "func (*OrderRejected) isPutOrderError() {}")
	assert.Contains(t, src, "func (*Throttled) isPingError() {}")
	assert.NotContains(t, src, "func (*OrderRejected) isPingError() {}")

	assert.Contains(t, src, "func ParsePutOrderError(meta codec.ErrorMetadata, body []byte) PutOrderError {")
	assert.Contains(t, src, "switch codec.SanitizeErrorCode(meta.Code) {")
	assert.Contains(t, src, `case "OrderRejected":`)
	assert.Contains(t, src, "return &PutOrderErrorUnhandled{Meta: meta, Err: err}")
	assert.Contains(t, src, "return &PutOrderErrorUnhandled{Meta: meta}")
}

func TestOperation_RetryKind(t *testing.T) {
	_, src := generate(t, nil)

	assert.Contains(t, src, "func PutOrderErrorRetryKind(err PutOrderError) codec.RetryKind {")
	assert.Contains(t, src, "\tcase *Throttled:\n\t\treturn e.RetryKind()")
	assert.NotContains(t, src, "case *OrderRejected:\n\t\treturn e.RetryKind()")
}

func TestOperation_TransportKeepsSource(t *testing.T) {
	_, src := generate(t, nil)

	assert.Contains(t, src, "if err.Kind == codec.TransportServiceFault {")
	assert.Contains(t, src, "if errors.As(err.Err, &modeled) {")
	assert.Contains(t, src, "return &PutOrderErrorUnhandled{Meta: err.Meta, Err: err}")
	assert.Contains(t, src, "return &PutOrderErrorUnhandled{Err: err}")
}

func TestOperation_Hook(t *testing.T) {
	reg := &hooks.Registry{}
	reg.Register(hooks.HookFunc(func(s hooks.Section) string {
		sec, ok := s.(hooks.OperationErrorImpls)
		if !ok {
			return ""
		}

		return "// " + sec.TypeName + " of " + sec.Operation.Name()
	}))

	_, src := generate(t, reg)

	assert.Contains(t, src, "// PutOrderError of PutOrder")
	assert.Contains(t, src, "// PingError of Ping")
}

func TestService(t *testing.T) {
	_, src := generate(t, nil)

	assert.Contains(t, src, "type ShopError interface {")
	assert.Contains(t, src, "func (*OrderRejected) isShopError() {}")
	assert.Contains(t, src, "func ShopErrorFrom(err error) ShopError {")
	assert.Contains(t, src, "case *PingErrorUnhandled:\n\t\treturn &ShopErrorUnhandled{Meta: e.Meta, Err: e.Err}")
	assert.Contains(t, src, "func ErrorMetadataOf(body []byte) codec.ErrorMetadata {\n\treturn jsonrt.ErrorComponents(body)\n}")
}

func TestDeterministic(t *testing.T) {
	_, first := generate(t, nil)
	_, second := generate(t, nil)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("output differs between runs (-first +second):\n%s", diff)
	}
}
