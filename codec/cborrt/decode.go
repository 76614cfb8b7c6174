package cborrt

import (
	"errors"
	"time"

	"github.com/aws/smithy-go/encoding/cbor"

	"codec-generator/codec"
	"codec-generator/codec/timefmt"
)

// emptyMap is the body of a structure with no members set.
var emptyMap = []byte{0xa0}

// Decode decodes a whole body. An empty body reads as an empty map.
func Decode(data []byte) (cbor.Value, error) {
	if len(data) == 0 {
		data = emptyMap
	}

	v, err := cbor.Decode(data)
	if err != nil {
		return nil, &codec.DecodeError{Reason: "malformed cbor", Offset: -1, Err: err}
	}

	return v, nil
}

// In prefixes the location of a failed read, such as "Order.items", to its
// error. Nested failures read outermost first.
func In(where string, err error) error {
	var de *codec.DecodeError
	if errors.As(err, &de) {
		return &codec.DecodeError{Reason: where + ": " + de.Reason, Offset: de.Offset, Err: de.Err}
	}

	return &codec.DecodeError{Reason: where, Offset: -1, Err: err}
}

// IsNull reports whether v is null or undefined.
func IsNull(v cbor.Value) bool {
	switch v.(type) {
	case *cbor.Nil, *cbor.Undefined:
		return true
	default:
		return v == nil
	}
}

func kind(v cbor.Value) string {
	switch v.(type) {
	case cbor.Uint:
		return "unsigned integer"
	case cbor.NegInt:
		return "negative integer"
	case cbor.Slice:
		return "byte string"
	case cbor.String:
		return "text string"
	case cbor.List:
		return "array"
	case cbor.Map:
		return "map"
	case *cbor.Tag:
		return "tag"
	case cbor.Bool:
		return "boolean"
	case cbor.Float32, cbor.Float64:
		return "float"
	default:
		return "simple value"
	}
}

func expected(want string, v cbor.Value) error {
	return codec.ExpectedError(-1, want, kind(v))
}

// String reads a text string. ok is false when v is null.
func String(v cbor.Value) (s string, ok bool, err error) {
	if IsNull(v) {
		return "", false, nil
	}

	str, isStr := v.(cbor.String)
	if !isStr {
		return "", false, expected("text string", v)
	}

	return string(str), true, nil
}

// Blob reads a byte string.
func Blob(v cbor.Value) (b []byte, ok bool, err error) {
	if IsNull(v) {
		return nil, false, nil
	}

	slice, isSlice := v.(cbor.Slice)
	if !isSlice {
		return nil, false, expected("byte string", v)
	}

	return append([]byte{}, slice...), true, nil
}

// Bool reads a boolean.
func Bool(v cbor.Value) (b bool, ok bool, err error) {
	if IsNull(v) {
		return false, false, nil
	}

	bv, isBool := v.(cbor.Bool)
	if !isBool {
		return false, false, expected("boolean", v)
	}

	return bool(bv), true, nil
}

// Integer reads an integer within [minV, maxV].
func Integer(v cbor.Value, minV, maxV int64) (n int64, ok bool, err error) {
	if IsNull(v) {
		return 0, false, nil
	}

	switch v.(type) {
	case cbor.Uint, cbor.NegInt:
	default:
		return 0, false, expected("integer", v)
	}

	n, err = cbor.AsInt64(v)
	if err != nil {
		return 0, false, &codec.DecodeError{Reason: "integer overflows int64", Offset: -1, Err: err}
	}

	if n < minV || n > maxV {
		return 0, false, codec.NewDecodeError(-1, "integer %d exceeds range [%d, %d]", n, minV, maxV)
	}

	return n, true, nil
}

// Float reads a half, single or double precision float. Integers within the
// lossless range are accepted and converted.
func Float(v cbor.Value) (f float64, ok bool, err error) {
	if IsNull(v) {
		return 0, false, nil
	}

	switch v.(type) {
	case cbor.Float32, cbor.Float64, cbor.Uint, cbor.NegInt:
	default:
		return 0, false, expected("float", v)
	}

	f, err = cbor.AsFloat64(v)
	if err != nil {
		return 0, false, &codec.DecodeError{Reason: "number loses precision as float", Offset: -1, Err: err}
	}

	return f, true, nil
}

// Timestamp reads epoch seconds, with or without tag 1.
func Timestamp(v cbor.Value) (t time.Time, ok bool, err error) {
	if tag, isTag := v.(*cbor.Tag); isTag {
		if tag.ID != TagEpochTime {
			return time.Time{}, false, codec.NewDecodeError(-1, "expected epoch timestamp tag, got tag %d", tag.ID)
		}

		v = tag.Value
	}

	f, ok, err := Float(v)
	if err != nil || !ok {
		return time.Time{}, ok, err
	}

	return timefmt.FromEpochSeconds(f), true, nil
}

// Map reads a map. A nil map with ok false means v was null.
func Map(v cbor.Value) (m cbor.Map, ok bool, err error) {
	if IsNull(v) {
		return nil, false, nil
	}

	mv, isMap := v.(cbor.Map)
	if !isMap {
		return nil, false, expected("map", v)
	}

	return mv, true, nil
}

// List reads an array.
func List(v cbor.Value) (l cbor.List, ok bool, err error) {
	if IsNull(v) {
		return nil, false, nil
	}

	lv, isList := v.(cbor.List)
	if !isList {
		return nil, false, expected("array", v)
	}

	return lv, true, nil
}

// Raw re-encodes a value that is kept opaque, such as an unknown union
// variant.
func Raw(v cbor.Value) []byte {
	if v == nil {
		return nil
	}

	return cbor.Encode(v)
}
