package cborrt

import (
	"bytes"
	"math"
	"testing"

	smithycbor "github.com/aws/smithy-go/encoding/cbor"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type interopDoc struct {
	A []int64 `cbor:"a"`
	B string  `cbor:"b"`
	C bool    `cbor:"c"`
}

func TestInterop_EncodedTreeDecodes(t *testing.T) {
	body := Encode(smithycbor.Map{
		"a": smithycbor.List{Int(1), Int(-2)},
		"b": smithycbor.String("x"),
		"c": smithycbor.Bool(true),
	})

	var got interopDoc
	require.NoError(t, cbor.Unmarshal(body, &got))
	assert.Equal(t, interopDoc{A: []int64{1, -2}, B: "x", C: true}, got)
}

func TestInterop_IndefiniteInput(t *testing.T) {
	var buf bytes.Buffer

	enc := cbor.NewEncoder(&buf)
	require.NoError(t, enc.StartIndefiniteArray())

	for _, v := range []int64{1, 2, 3} {
		require.NoError(t, enc.Encode(v))
	}

	require.NoError(t, enc.StartIndefiniteTextString())
	require.NoError(t, enc.Encode("ab"))
	require.NoError(t, enc.Encode("cd"))
	require.NoError(t, enc.EndIndefinite())
	require.NoError(t, enc.EndIndefinite())

	v, err := Decode(buf.Bytes())
	require.NoError(t, err)

	l, ok, err := List(v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, l, 4)

	var ints []int64

	for _, e := range l[:3] {
		n, _, err := Integer(e, math.MinInt64, math.MaxInt64)
		require.NoError(t, err)

		ints = append(ints, n)
	}

	assert.Equal(t, []int64{1, 2, 3}, ints)

	s, _, err := String(l[3])
	require.NoError(t, err)
	assert.Equal(t, "abcd", s)
}

func TestInterop_UnreadEntriesIgnored(t *testing.T) {
	b, err := cbor.Marshal(map[string]any{
		"skip": []any{map[string]any{"x": []byte{1, 2}}, 1.5, nil},
		"keep": 7,
	})
	require.NoError(t, err)

	v, err := Decode(b)
	require.NoError(t, err)

	m, _, err := Map(v)
	require.NoError(t, err)

	n, ok, err := Integer(m["keep"], 0, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
}

func TestInterop_TimestampTag(t *testing.T) {
	b, err := cbor.Marshal(cbor.Tag{Number: 1, Content: 1363896240.5})
	require.NoError(t, err)

	v, err := Decode(b)
	require.NoError(t, err)

	ts, ok, err := Timestamp(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1363896240500), ts.UnixMilli())
}
