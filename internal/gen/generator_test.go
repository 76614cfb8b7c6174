package gen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/diagnostic"
	"codec-generator/internal/model"
	"codec-generator/internal/policy"
	"codec-generator/internal/protocol/protocoltest"
)

var inventory = []byte(`{
  "smithy": "2.0",
  "shapes": {
    "example.inventory#Inventory": {
      "type": "service",
      "version": "2024-01-01",
      "operations": [{"target": "example.inventory#GetStock"}]
    },
    "example.inventory#GetStock": {
      "type": "operation",
      "input": {"target": "example.inventory#GetStockInput"},
      "output": {"target": "example.inventory#GetStockOutput"}
    },
    "example.inventory#GetStockInput": {
      "type": "structure",
      "members": {
        "sku": {"target": "smithy.api#String", "traits": {"smithy.api#required": {}}}
      }
    },
    "example.inventory#GetStockOutput": {
      "type": "structure",
      "members": {
        "levels": {"target": "example.inventory#Levels"}
      }
    },
    "example.inventory#Levels": {
      "type": "list",
      "traits": {"smithy.api#sparse": {}},
      "member": {"target": "smithy.api#Integer"}
    }
  }
}`)

func config(protocolName string, target policy.Target) GeneratorConfig {
	cfg := DefaultGeneratorConfig()
	cfg.PackageName = "shop"
	cfg.OutputDir = ""
	cfg.Protocol = protocolName
	cfg.Target = target

	return cfg
}

func parse(t *testing.T, doc []byte) *model.Model {
	t.Helper()

	m, err := model.Parse(doc)
	require.NoError(t, err)

	return m
}

func content(files []GeneratedFile, name string) string {
	for _, f := range files {
		if f.Filename == name {
			return string(f.Content)
		}
	}

	return ""
}

func filenames(files []GeneratedFile) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Filename)
	}

	return out
}

func TestGenerator_Generate_Files(t *testing.T) {
	g := NewGenerator(config("awsJson1_1", policy.Client))

	files, err := g.Generate(protocoltest.Model(t))
	require.NoError(t, err)

	assert.Equal(t, []string{DeserializersFile, ErrorsFile, EventStreamFile, SerializersFile, TypesFile}, filenames(files))

	for _, f := range files {
		src := string(f.Content)
		assert.True(t, strings.HasPrefix(src, "// Code generated by codec-generator. DO NOT EDIT."), f.Filename)
		assert.Contains(t, src, "package shop", f.Filename)
	}

	types := content(files, TypesFile)
	assert.Contains(t, types, "// Package shop holds the awsJson1_1 codecs of Shop.")
	assert.Contains(t, types, "type PutOrderInput struct {")

	serializers := content(files, SerializersFile)
	assert.Contains(t, serializers, "func SerializePutOrderInput(v *PutOrderInput) ([]byte, error) {")
	assert.Contains(t, serializers, "func SerializeThrottled(v *Throttled) ([]byte, error) {")
	assert.NotContains(t, serializers, "func ParsePutOrderOutput(")

	deserializers := content(files, DeserializersFile)
	assert.Contains(t, deserializers, "func ParsePutOrderOutput(data []byte) (*PutOrderOutput, error) {")

	errs := content(files, ErrorsFile)
	assert.Contains(t, errs, "func ParsePutOrderError(meta codec.ErrorMetadata, body []byte) PutOrderError {")
	assert.Contains(t, errs, "func ShopErrorFrom(err error) ShopError {")
	assert.Contains(t, errs, "func ErrorMetadataOf(body []byte) codec.ErrorMetadata {")

	assert.Contains(t, content(files, EventStreamFile), "func UnmarshalOrderEventsEvent(")
}

func TestGenerator_Generate_Deterministic(t *testing.T) {
	for _, name := range []string{"awsJson1_0", "restJson1", "rpcv2Cbor"} {
		first, err := NewGenerator(config(name, policy.Server)).Generate(protocoltest.Model(t))
		require.NoError(t, err, name)

		second, err := NewGenerator(config(name, policy.Server)).Generate(protocoltest.Model(t))
		require.NoError(t, err, name)

		assert.Equal(t, first, second, name)
	}
}

func TestGenerator_Generate_BuilderNotes(t *testing.T) {
	g := NewGenerator(config("awsJson1_1", policy.Server))

	files, err := g.Generate(protocoltest.Model(t))
	require.NoError(t, err)

	assert.Contains(t, content(files, DeserializersFile), "func ParsePutOrderInput(data []byte) (*PutOrderInputBuilder, error) {")

	var shapes []string
	for _, d := range g.Diagnostics().Infos {
		assert.Equal(t, diagnostic.CodeBuilder, d.Code)
		shapes = append(shapes, d.Shape)
	}

	assert.Contains(t, shapes, "example.shop#PutOrderInput")
}

func TestGenerator_Generate_SparseUnderQuery(t *testing.T) {
	for _, name := range []string{"restXml", "awsQuery", "ec2Query"} {
		g := NewGenerator(config(name, policy.Client))

		_, err := g.Generate(parse(t, inventory))
		require.NoError(t, err, name)

		warnings := g.Diagnostics().Warnings
		require.Len(t, warnings, 1, name)
		assert.Equal(t, diagnostic.CodeSparseNull, warnings[0].Code)
		assert.Equal(t, "example.inventory#Levels", warnings[0].Shape)
	}

	g := NewGenerator(config("awsJson1_0", policy.Client))
	_, err := g.Generate(parse(t, inventory))
	require.NoError(t, err)
	assert.Empty(t, g.Diagnostics().Warnings)
}

func TestGenerator_Generate_QueryHasNoInputParser(t *testing.T) {
	files, err := NewGenerator(config("awsQuery", policy.Server)).Generate(parse(t, inventory))
	require.NoError(t, err)

	assert.NotContains(t, content(files, DeserializersFile), "func ParseGetStockInput(")
	assert.Contains(t, content(files, SerializersFile), "func SerializeGetStockOutput(")
}

func TestGenerator_Generate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		service model.ShapeID
		proto   string
		want    string
	}{
		{
			name:  "unknown protocol",
			doc:   string(inventory),
			proto: "soap",
			want:  `unknown protocol "soap"`,
		},
		{
			name:  "no service",
			doc:   `{"smithy": "2.0", "shapes": {"example.a#S": {"type": "structure"}}}`,
			proto: "awsJson1_0",
			want:  "model has no service",
		},
		{
			name:    "not a service",
			doc:     string(inventory),
			service: "example.inventory#GetStockInput",
			proto:   "awsJson1_0",
			want:    "is a structure, not a service",
		},
		{
			name:    "misspelled service",
			doc:     string(inventory),
			service: "example.inventory#Inventroy",
			proto:   "awsJson1_0",
			want:    `not found in model (did you mean "example.inventory#Inventory"?)`,
		},
		{
			name:  "misspelled protocol",
			doc:   string(inventory),
			proto: "restxml",
			want:  `(did you mean "restXml"?)`,
		},
		{
			name: "big numbers",
			doc: `{"smithy": "2.0", "shapes": {
  "example.big#Big": {"type": "service", "operations": [{"target": "example.big#Op"}]},
  "example.big#Op": {"type": "operation", "input": {"target": "example.big#In"}},
  "example.big#In": {"type": "structure", "members": {"n": {"target": "smithy.api#BigInteger"}}}
}}`,
			proto: "awsJson1_0",
			want:  "[unsupported] bigInteger shapes have no codec",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config(tc.proto, policy.Client)
			cfg.Service = tc.service

			_, err := NewGenerator(cfg).Generate(parse(t, []byte(tc.doc)))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestGenerator_Generate_NoOperations(t *testing.T) {
	g := NewGenerator(config("awsJson1_0", policy.Client))

	files, err := g.Generate(parse(t, []byte(`{"smithy": "2.0", "shapes": {"example.e#Empty": {"type": "service"}}}`)))
	require.NoError(t, err)

	assert.Equal(t, []string{ErrorsFile}, filenames(files))
	require.Len(t, g.Diagnostics().Warnings, 1)
	assert.Equal(t, diagnostic.CodeNoOperations, g.Diagnostics().Warnings[0].Code)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, writeDebugUnformatted(dir, TypesFile, []byte("package broken {")))
	assert.FileExists(t, filepath.Join(dir, "types.unformatted.go"))

	files := []GeneratedFile{{Filename: TypesFile, Content: []byte("package shop\n")}}
	require.NoError(t, WriteFiles(files, dir))

	got, err := os.ReadFile(filepath.Join(dir, TypesFile))
	require.NoError(t, err)
	assert.Equal(t, "package shop\n", string(got))
	assert.NoFileExists(t, filepath.Join(dir, "types.unformatted.go"))
}

func TestWriteDebugUnformatted_NoDir(t *testing.T) {
	assert.NoError(t, writeDebugUnformatted("", TypesFile, []byte("x")))
}
