package jsonrt

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	smithyjson "github.com/aws/smithy-go/encoding/json"
	smithytesting "github.com/aws/smithy-go/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/codec"
)

func TestDecoder_ObjectWalk(t *testing.T) {
	d := NewDecoder([]byte(`{"name":"a","count":3,"extra":{"deep":[1,{"x":null}]},"ok":true}`))

	ok, err := d.BeginObject()
	require.NoError(t, err)
	require.True(t, ok)

	got := map[string]any{}

	for {
		key, more, err := d.NextKey()
		require.NoError(t, err)

		if !more {
			break
		}

		switch key {
		case "name":
			s, _, err := d.ReadString()
			require.NoError(t, err)
			got[key] = s
		case "count":
			n, _, err := d.ReadInt(math.MinInt32, math.MaxInt32)
			require.NoError(t, err)
			got[key] = n
		case "ok":
			b, _, err := d.ReadBool()
			require.NoError(t, err)
			got[key] = b
		default:
			require.NoError(t, d.Skip())
		}
	}

	assert.Equal(t, map[string]any{"name": "a", "count": int64(3), "ok": true}, got)
	assert.True(t, d.AtEOF())
}

func TestDecoder_Nulls(t *testing.T) {
	d := NewDecoder([]byte(`[null, null, null, null]`))

	ok, err := d.BeginArray()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = d.ReadString()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = d.ReadInt(0, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.BeginObject()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = d.ReadBlob()
	require.NoError(t, err)
	assert.False(t, ok)

	more, err := d.More()
	require.NoError(t, err)
	assert.False(t, more)
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		read  func(d *Decoder) error
	}{
		{"string for int", `"x"`, func(d *Decoder) error { _, _, err := d.ReadInt(0, 10); return err }},
		{"int out of range", `300`, func(d *Decoder) error { _, _, err := d.ReadInt(-128, 127); return err }},
		{"number for string", `1`, func(d *Decoder) error { _, _, err := d.ReadString(); return err }},
		{"bad base64", `"@@"`, func(d *Decoder) error { _, _, err := d.ReadBlob(); return err }},
		{"bad timestamp", `"noon"`, func(d *Decoder) error { _, _, err := d.ReadDateTime(); return err }},
		{"truncated", `{"a":`, func(d *Decoder) error {
			if _, err := d.BeginObject(); err != nil {
				return err
			}
			if _, _, err := d.NextKey(); err != nil {
				return err
			}
			_, _, err := d.ReadString()
			return err
		}},
		{"array for object", `[]`, func(d *Decoder) error { _, err := d.BeginObject(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewDecoder([]byte(tt.input)))
			var de *codec.DecodeError
			require.ErrorAs(t, err, &de)
			assert.NotEmpty(t, de.Reason)
		})
	}
}

func TestDecoder_FloatsAndTimes(t *testing.T) {
	d := NewDecoder([]byte(`["NaN", "-Infinity", 1.5, 1577836800, "2020-01-01T00:00:00Z"]`))

	_, err := d.BeginArray()
	require.NoError(t, err)

	f, _, err := d.ReadFloat(64)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))

	f, _, err = d.ReadFloat(64)
	require.NoError(t, err)
	assert.True(t, math.IsInf(f, -1))

	f, _, err = d.ReadFloat(32)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, f, 0)

	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	ts, _, err := d.ReadEpochSeconds()
	require.NoError(t, err)
	assert.True(t, want.Equal(ts))

	ts, _, err = d.ReadDateTime()
	require.NoError(t, err)
	assert.True(t, want.Equal(ts))
}

func TestDecoder_ReadDocument(t *testing.T) {
	d := NewDecoder([]byte(`{"doc":{"a":[1,"b",true]}}`))

	_, err := d.BeginObject()
	require.NoError(t, err)

	_, _, err = d.NextKey()
	require.NoError(t, err)

	doc, err := d.ReadDocument()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{json.Number("1"), "b", true}}, doc)

	_, more, err := d.NextKey()
	require.NoError(t, err)
	assert.False(t, more)
}

func TestWriteFloatAndDocument(t *testing.T) {
	enc := smithyjson.NewEncoder()
	obj := enc.Object()
	WriteFloat(obj.Key("nan"), math.NaN(), 64)
	WriteFloat(obj.Key("inf"), math.Inf(1), 64)
	WriteFloat(obj.Key("half"), 0.5, 32)
	require.NoError(t, WriteDocument(obj.Key("doc"), map[string]any{
		"z": []any{json.Number("2"), nil},
		"a": "x",
	}))
	obj.Close()

	smithytesting.AssertJSONEqual(t,
		[]byte(`{"nan":"NaN","inf":"Infinity","half":0.5,"doc":{"a":"x","z":[2,null]}}`),
		enc.Bytes())

	assert.Error(t, WriteDocument(smithyjson.NewEncoder().Value, struct{}{}))
}

func TestErrorComponents(t *testing.T) {
	meta := ErrorComponents([]byte(`{"__type":"example#Throttled:http://x","message":"slow down"}`))
	assert.Equal(t, codec.ErrorMetadata{Code: "Throttled", Message: "slow down"}, meta)

	meta = ErrorComponents([]byte(`{"Code":"NotFound","Message":"gone"}`))
	assert.Equal(t, codec.ErrorMetadata{Code: "NotFound", Message: "gone"}, meta)

	assert.Equal(t, codec.ErrorMetadata{}, ErrorComponents([]byte(`<xml/>`)))
}

func TestDecoder_ReadRaw(t *testing.T) {
	d := NewDecoder([]byte(`{"tag":{"a":[1,2]},"next":true}`))

	ok, err := d.BeginObject()
	require.NoError(t, err)
	require.True(t, ok)

	key, more, err := d.NextKey()
	require.NoError(t, err)
	require.True(t, more)
	assert.Equal(t, "tag", key)

	raw, err := d.ReadRaw()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,2]}`, string(raw))

	key, _, err = d.NextKey()
	require.NoError(t, err)
	assert.Equal(t, "next", key)
}
