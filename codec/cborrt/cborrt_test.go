package cborrt

import (
	"encoding/hex"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aws/smithy-go/encoding/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/codec"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

func TestEncode_Scalars(t *testing.T) {
	tests := []struct {
		name string
		v    cbor.Value
		want string
	}{
		{"small uint", Int(10), "0a"},
		{"uint16", Int(1000), "1903e8"},
		{"negative", Int(-100), "3863"},
		{"min int64", Int(math.MinInt64), "3b7fffffffffffffff"},
		{"text", cbor.String("IETF"), "6449455446"},
		{"bytes", cbor.Slice{1, 2, 3, 4}, "4401020304"},
		{"null", Null(), "f6"},
		{"float64", cbor.Float64(1.1), "fb3ff199999999999a"},
		{"list", cbor.List{Int(1), Int(2)}, "820102"},
		{"timestamp", Timestamp(time.Unix(1363896240, 0)), "c1fb41d452d9ec000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hex.EncodeToString(Encode(tt.v)))
		})
	}
}

func TestDecode_EmptyBodyIsEmptyMap(t *testing.T) {
	v, err := Decode(nil)
	require.NoError(t, err)

	m, ok, err := Map(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m)
}

func TestDecode_Malformed(t *testing.T) {
	// Map header announcing one entry, then nothing.
	_, err := Decode(mustHex(t, "a1"))

	var de *codec.DecodeError
	require.True(t, errors.As(err, &de), "err is %T", err)
	assert.Equal(t, "malformed cbor", de.Reason)
	assert.Equal(t, -1, de.Offset)
}

func TestDecode_IndefiniteLengths(t *testing.T) {
	// {_ "a": [_ 1, 2], "b": (_ "x", "y")}
	v, err := Decode(mustHex(t, "bf61619f0102ff61627f61786179ffff"))
	require.NoError(t, err)

	m, ok, err := Map(v)
	require.NoError(t, err)
	require.True(t, ok)

	l, ok, err := List(m["a"])
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, l, 2)

	n, ok, err := Integer(l[1], 0, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), n)

	s, ok, err := String(m["b"])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "xy", s)
}

func TestReads_NullIsNotSet(t *testing.T) {
	for _, v := range []cbor.Value{nil, &cbor.Nil{}, &cbor.Undefined{}} {
		_, ok, err := String(v)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = Integer(v, 0, 1)
		require.NoError(t, err)
		assert.False(t, ok)

		b, ok, err := Blob(v)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, b)

		_, ok, err = Timestamp(v)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestReads_TypeMismatch(t *testing.T) {
	_, _, err := String(cbor.Uint(1))
	assert.ErrorContains(t, err, "expected text string, got unsigned integer")

	_, _, err = Map(cbor.List{})
	assert.ErrorContains(t, err, "expected map, got array")

	_, _, err = Bool(cbor.String("true"))
	assert.ErrorContains(t, err, "expected boolean, got text string")
}

func TestInteger_Range(t *testing.T) {
	n, ok, err := Integer(Int(-128), math.MinInt8, math.MaxInt8)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(-128), n)

	_, _, err = Integer(Int(128), math.MinInt8, math.MaxInt8)
	assert.ErrorContains(t, err, "integer 128 exceeds range [-128, 127]")

	_, _, err = Integer(cbor.Uint(math.MaxUint64), math.MinInt64, math.MaxInt64)
	assert.ErrorContains(t, err, "integer overflows int64")

	_, _, err = Integer(cbor.Float64(1), 0, 10)
	assert.ErrorContains(t, err, "expected integer, got float")
}

func TestFloat_AcceptsIntegers(t *testing.T) {
	f, ok, err := Float(Int(-3))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -3.0, f)

	f, _, err = Float(cbor.Float32(1.5))
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	_, _, err = Float(cbor.Uint(1 << 60))
	assert.ErrorContains(t, err, "loses precision")
}

func TestBlob_EmptyIsSet(t *testing.T) {
	b, ok, err := Blob(cbor.Slice{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, b)
	assert.Empty(t, b)
}

func TestTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 250_000_000, time.UTC)

	v, err := Decode(Encode(Timestamp(want)))
	require.NoError(t, err)

	got, ok, err := Timestamp(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, want.Equal(got), "got %v", got)

	// Untagged epoch seconds are accepted.
	got, _, err = Timestamp(Int(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Unix())

	_, _, err = Timestamp(&cbor.Tag{ID: 0, Value: cbor.String("2024-01-02T03:04:05Z")})
	assert.ErrorContains(t, err, "expected epoch timestamp tag, got tag 0")
}

func TestIn_NamesLocation(t *testing.T) {
	_, _, err := String(cbor.Bool(true))
	err = In("Item.sku", err)
	err = In("Order.items", err)

	var de *codec.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Order.items: Item.sku: expected text string, got boolean", de.Reason)

	plain := errors.New("boom")
	err = In("Order.id", plain)
	assert.ErrorIs(t, err, plain)
	assert.ErrorContains(t, err, "Order.id")
}

func TestRaw_KeepsValue(t *testing.T) {
	raw := Raw(cbor.Map{"x": Int(1)})
	assert.Equal(t, "a1617801", hex.EncodeToString(raw))
	assert.Nil(t, Raw(nil))
}

func TestErrorComponents(t *testing.T) {
	body := Encode(cbor.Map{
		"__type":  cbor.String("example.shop#OutOfStock:http://internal.example.com/"),
		"message": cbor.String("gone"),
	})

	meta := ErrorComponents(body)
	assert.Equal(t, "OutOfStock", meta.Code)
	assert.Equal(t, "gone", meta.Message)

	assert.Equal(t, codec.ErrorMetadata{}, ErrorComponents([]byte{0xff}))
}
