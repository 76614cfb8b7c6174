// Package protocoltest loads a small shop model exercising every shape kind
// the codecs handle, for generator tests.
package protocoltest

import (
	_ "embed"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"codec-generator/internal/emit"
	"codec-generator/internal/hooks"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol"
)

//go:embed shop.json
var shop []byte

// Service is the shop service shape ID.
const Service model.ShapeID = "example.shop#Shop"

// Model parses the shop model, or extra documents merged with it.
func Model(t testing.TB, extra ...[]byte) *model.Model {
	t.Helper()

	m, err := model.Parse(append([][]byte{shop}, extra...)...)
	require.NoError(t, err)

	return m
}

// Context returns a generation context for the shop service.
func Context(t testing.TB, protocolName string, target policy.Target, reg *hooks.Registry) *protocol.Context {
	t.Helper()

	return ContextFor(t, Model(t), protocolName, target, reg)
}

// ContextFor returns a generation context over every shape of m.
func ContextFor(t testing.TB, m *model.Model, protocolName string, target policy.Target, reg *hooks.Registry) *protocol.Context {
	t.Helper()

	settings, err := protocol.Lookup(protocolName)
	require.NoError(t, err)

	var shapes []model.ShapeID
	for _, s := range m.Shapes() {
		shapes = append(shapes, s.ID)
	}

	svc, _ := m.Shape(Service)

	ctx, err := protocol.NewContext(m, svc, shapes, protocol.Options{
		Protocol: settings,
		Target:   target,
		Hooks:    reg,
	})
	require.NoError(t, err)

	return ctx
}

// Shape returns a shape of the model.
func Shape(t testing.TB, ctx *protocol.Context, id model.ShapeID) *model.Shape {
	t.Helper()

	s, err := ctx.Model.MustShape(id)
	require.NoError(t, err)

	return s
}

// Source concatenates every generated function, in registration order.
func Source(ctx *protocol.Context) string {
	var sb strings.Builder

	for _, f := range ctx.Functions.Functions() {
		sb.WriteString(f.Source)
		sb.WriteString("\n")
	}

	return sb.String()
}

// Render formats every generated function and the extra declarations into
// one file, failing the test when the result does not parse.
func Render(t testing.TB, ctx *protocol.Context, extra ...string) string {
	t.Helper()

	f := emit.NewFile("generated.go", "shop")
	protocol.AddImports(f)

	for _, fn := range ctx.Functions.Functions() {
		f.Add(fn.Source)
	}

	for _, decl := range extra {
		f.Add(decl)
	}

	out, err := f.Render()
	require.NoError(t, err, "%s", out)

	return string(out)
}
