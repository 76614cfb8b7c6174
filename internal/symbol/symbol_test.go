package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/internal/model"
)

const twoNamespaces = `{
  "smithy": "2.0",
  "shapes": {
    "a.shop#Item": {"type": "structure", "members": {
      "name": {"target": "smithy.api#String"},
      "price": {"target": "smithy.api#Double"},
      "other": {"target": "b.store#Item"},
      "tags": {"target": "a.shop#TagList"},
      "sparse": {"target": "a.shop#SparseCounts"},
      "when": {"target": "smithy.api#Timestamp"},
      "big": {"target": "smithy.api#BigInteger"}
    }},
    "b.store#Item": {"type": "structure", "members": {}},
    "a.shop#TagList": {"type": "list", "member": {"target": "smithy.api#String"}},
    "a.shop#SparseCounts": {"type": "map", "traits": {"smithy.api#sparse": {}},
      "key": {"target": "smithy.api#String"}, "value": {"target": "smithy.api#Integer"}},
    "a.shop#Size": {"type": "enum", "members": {
      "EXTRA_LARGE": {"target": "smithy.api#Unit"},
      "medium": {"target": "smithy.api#Unit"}
    }}
  }
}`

func newProvider(t *testing.T) (*Provider, *model.Model) {
	t.Helper()

	m, err := model.Parse([]byte(twoNamespaces))
	require.NoError(t, err)

	var ids []model.ShapeID
	for _, s := range m.Shapes() {
		ids = append(ids, s.ID)
	}

	p, err := NewProvider(m, ids)
	require.NoError(t, err)

	return p, m
}

func TestNewProvider_QualifiesCollisions(t *testing.T) {
	p, _ := newProvider(t)

	assert.Equal(t, "ShopItem", p.TypeName("a.shop#Item"))
	assert.Equal(t, "StoreItem", p.TypeName("b.store#Item"))
	assert.Equal(t, "Size", p.TypeName("a.shop#Size"))
	assert.True(t, p.Reserved("ShopItem"))
}

func TestReserve_Collision(t *testing.T) {
	p, _ := newProvider(t)

	require.NoError(t, p.Reserve("ItemError", "op A"))
	require.NoError(t, p.Reserve("ItemError", "op A"))

	err := p.Reserve("ItemError", "op B")
	require.ErrorIs(t, err, ErrNameCollision)
	assert.Contains(t, err.Error(), "op A")
}

func TestEnumConstName(t *testing.T) {
	p, m := newProvider(t)
	size, _ := m.Shape("a.shop#Size")
	values := size.EnumValues()

	assert.Equal(t, "SizeExtraLarge", p.EnumConstName(size.ID, values[0]))
	assert.Equal(t, "SizeMedium", p.EnumConstName(size.ID, values[1]))
}

func TestFieldTypes(t *testing.T) {
	p, m := newProvider(t)
	item, _ := m.Shape("a.shop#Item")

	tests := []struct {
		member   string
		optional bool
		want     string
	}{
		{"name", true, "*string"},
		{"name", false, "string"},
		{"price", true, "*float64"},
		{"other", false, "*StoreItem"},
		{"tags", true, "[]string"},
		{"sparse", true, "map[string]*int32"},
		{"when", true, "*time.Time"},
	}

	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			mem, ok := item.MemberNamed(tt.member)
			require.True(t, ok)

			got, err := p.FieldType(mem, tt.optional)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	big, _ := item.MemberNamed("big")
	_, err := p.FieldType(big, true)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestExported(t *testing.T) {
	assert.Equal(t, "GetBook", Exported("getBook"))
	assert.Equal(t, "V2", Exported("2"))
	assert.Equal(t, "nextToken", Unexported("NextToken"))
	assert.Equal(t, "BookId", Exported("book_id"))
}
