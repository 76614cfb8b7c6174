package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Hello", "hello", 1},
		// Runes, not bytes.
		{"naïve", "naive", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "awsjson11", Normalize("aws_json_1.1"))
	assert.Equal(t, "awsjson11", Normalize("AwsJson1_1"))
	assert.Equal(t, "faultpredicates", Normalize("Fault Predicates"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("rest-json-1", "restJson1"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestSuggest(t *testing.T) {
	protocols := []string{"awsJson1_0", "awsJson1_1", "restJson1", "restXml", "rpcv2Cbor"}

	best, ok := Suggest("restjson", protocols)
	assert.True(t, ok)
	assert.Equal(t, "restJson1", best)

	best, ok = Suggest("rpcv2-cbor", protocols)
	assert.True(t, ok)
	assert.Equal(t, "rpcv2Cbor", best)

	// Equally close: the first in sort order wins.
	best, ok = Suggest("awsJson1", protocols)
	assert.True(t, ok)
	assert.Equal(t, "awsJson1_0", best)

	_, ok = Suggest("soap", protocols)
	assert.False(t, ok)
}

func TestHint(t *testing.T) {
	assert.Equal(t, ` (did you mean "restXml"?)`, Hint("restxm", []string{"restXml", "restJson1"}))
	assert.Empty(t, Hint("grpc", []string{"restXml"}))
}
