package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPkgAlias(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"generated":           "generated",
		"./examples/shop-api": "shopapi",
		"out/Wire_Types":      "wire_types",
		"gen/2fa":             "fa",
		`C:\work\codecs`:      "codecs",
	}

	for in, want := range tests {
		assert.Equal(t, want, PkgAlias(in), in)
	}
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 3, "a": 1, "b": 2}))
	assert.Empty(t, SortedKeys(map[string]bool{}))
}

func TestFirst(t *testing.T) {
	v, ok := First([]int{4, 5})
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = First[[]int](nil)
	assert.False(t, ok)
}
