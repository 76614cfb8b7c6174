package model

import (
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadLibrary(t *testing.T) *Model {
	t.Helper()

	m, err := LoadFiles(filepath.Join("testdata", "library.json"))
	require.NoError(t, err)

	return m
}

func TestShapeID(t *testing.T) {
	id := ShapeID("example.library#Book$title")
	assert.Equal(t, "example.library", id.Namespace())
	assert.Equal(t, "Book", id.Name())
	assert.Equal(t, "title", id.Member())
	assert.Equal(t, ShapeID("example.library#Book"), id.Root())
	assert.Equal(t, ShapeID("example.library#Book$id"), id.WithMember("id"))
}

func TestKind_Names(t *testing.T) {
	for k := KindBlob; k <= KindResource; k++ {
		assert.Equal(t, k, ParseKind(k.String()), "kind %d", int(k))
	}

	assert.Equal(t, "bigDecimal", KindBigDecimal.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Equal(t, KindUnknown, ParseKind("unknown"))
	assert.Equal(t, KindUnknown, ParseKind("widget"))
}

func TestLoad_MembersKeepDocumentOrder(t *testing.T) {
	m := loadLibrary(t)

	book, ok := m.Shape("example.library#Book")
	require.True(t, ok)
	assert.Equal(t, KindStructure, book.Kind)
	assert.Equal(t, "A book.", book.Documentation())

	var names []string
	for _, mem := range book.Members {
		names = append(names, mem.Name)
	}

	assert.Equal(t, []string{"title", "id", "genre", "sequel", "tags"}, names, spew.Sdump(book.Members))
}

func TestLoad_Traits(t *testing.T) {
	m := loadLibrary(t)
	book, _ := m.Shape("example.library#Book")

	title, _ := book.MemberNamed("title")
	name, ok := title.XMLName()
	assert.True(t, ok)
	assert.Equal(t, "Name", name)

	id, _ := book.MemberNamed("id")
	assert.True(t, id.Required())
	assert.True(t, id.XMLAttribute())

	tags, _ := book.MemberNamed("tags")
	assert.True(t, tags.XMLFlattened())

	titleShape, err := m.Target(title)
	require.NoError(t, err)

	length, ok := titleShape.Length()
	require.True(t, ok)
	require.NotNil(t, length.Min)
	require.NotNil(t, length.Max)
	assert.InDelta(t, 1, *length.Min, 0)
	assert.InDelta(t, 256, *length.Max, 0)

	nf, _ := m.Shape("example.library#NotFound")
	fault, ok := nf.ErrorFault()
	assert.True(t, ok)
	assert.Equal(t, "client", fault)

	retryable, throttling := nf.Retryable()
	assert.True(t, retryable)
	assert.True(t, throttling)
	assert.True(t, nf.IsError())
}

func TestEnumValues(t *testing.T) {
	m := loadLibrary(t)
	genre, _ := m.Shape("example.library#Genre")

	assert.True(t, genre.IsEnum())
	assert.Equal(t, []EnumValue{
		{Name: "FICTION", Value: "fiction"},
		{Name: "POETRY", Value: "POETRY"},
	}, genre.EnumValues())
}

func TestPrelude(t *testing.T) {
	m := loadLibrary(t)

	s, ok := m.Shape("smithy.api#Timestamp")
	require.True(t, ok)
	assert.Equal(t, KindTimestamp, s.Kind)

	p, ok := m.Shape("smithy.api#PrimitiveInteger")
	require.True(t, ok)

	def, ok := p.Default()
	assert.True(t, ok)
	assert.NotNil(t, def)

	assert.True(t, IsUnit("smithy.api#Unit"))
}

func TestOperations_ThroughResources(t *testing.T) {
	m := loadLibrary(t)

	ops, err := m.Operations("example.library#Library")
	require.NoError(t, err)

	var ids []ShapeID
	for _, op := range ops {
		ids = append(ids, op.ID)
	}

	assert.Equal(t, []ShapeID{"example.library#GetBook", "example.library#ListBooks"}, ids)

	listBooks, _ := m.Shape("example.library#ListBooks")
	assert.Equal(t, ShapeID("smithy.api#Unit"), listBooks.Input)

	_, err = m.Operations("example.library#Book")
	assert.Error(t, err)
}

func TestWalk_TerminatesOnCycles(t *testing.T) {
	m := loadLibrary(t)

	got := m.Walk("example.library#Book")
	assert.Equal(t, []ShapeID{
		"example.library#Book",
		"example.library#Genre",
		"example.library#Tags",
		"example.library#Title",
		"smithy.api#String",
	}, got)

	ops := m.Walk("example.library#GetBook")
	assert.Contains(t, ops, ShapeID("example.library#NotFound"))
	assert.Contains(t, ops, ShapeID("example.library#GetBookInput"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		want string
	}{
		{
			name: "dangling target",
			docs: []string{`{"smithy":"2.0","shapes":{"a#S":{"type":"structure","members":{"x":{"target":"a#Missing"}}}}}`},
			want: "unknown shape",
		},
		{
			name: "duplicate",
			docs: []string{
				`{"smithy":"2.0","shapes":{"a#S":{"type":"string"}}}`,
				`{"smithy":"2.0","shapes":{"a#S":{"type":"string"}}}`,
			},
			want: "duplicate shape a#S",
		},
		{
			name: "bad type",
			docs: []string{`{"smithy":"2.0","shapes":{"a#S":{"type":"thing"}}}`},
			want: "unsupported type",
		},
		{
			name: "bad version",
			docs: []string{`{"smithy":"9.0","shapes":{}}`},
			want: "unsupported smithy version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var docs [][]byte
			for _, d := range tt.docs {
				docs = append(docs, []byte(d))
			}

			_, err := Parse(docs...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
