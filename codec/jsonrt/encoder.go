package jsonrt

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	smithyjson "github.com/aws/smithy-go/encoding/json"

	"codec-generator/codec"
)

// WriteFloat writes f, spelling the non-finite values as the strings "NaN",
// "Infinity" and "-Infinity".
func WriteFloat(v smithyjson.Value, f float64, bits int) {
	switch {
	case math.IsNaN(f):
		v.String("NaN")
	case math.IsInf(f, 1):
		v.String("Infinity")
	case math.IsInf(f, -1):
		v.String("-Infinity")
	case bits == 32:
		v.Float(float32(f))
	default:
		v.Double(f)
	}
}

// WriteDocument writes an untyped document value. Object keys are written in
// sorted order.
func WriteDocument(v smithyjson.Value, doc any) error {
	switch d := doc.(type) {
	case nil:
		v.Null()
	case string:
		v.String(d)
	case bool:
		v.Boolean(d)
	case json.Number:
		if n, err := d.Int64(); err == nil {
			v.Long(n)
			return nil
		}

		f, err := d.Float64()
		if err != nil {
			return fmt.Errorf("document number %q: %w", d, err)
		}

		WriteFloat(v, f, 64)
	case float64:
		WriteFloat(v, d, 64)
	case float32:
		WriteFloat(v, float64(d), 32)
	case int:
		v.Long(int64(d))
	case int32:
		v.Integer(d)
	case int64:
		v.Long(d)
	case []any:
		arr := v.Array()
		defer arr.Close()

		for _, e := range d {
			if err := WriteDocument(arr.Value(), e); err != nil {
				return err
			}
		}
	case map[string]any:
		obj := v.Object()
		defer obj.Close()

		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			if err := WriteDocument(obj.Key(k), d[k]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported document value of type %T", doc)
	}

	return nil
}

// ErrorComponents recovers the error code and message from a JSON error body.
// The code is taken from "__type", "code" or "Code"; the message from
// "message", "Message" or "errorMessage". Malformed bodies yield empty
// metadata.
func ErrorComponents(body []byte) codec.ErrorMetadata {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return codec.ErrorMetadata{}
	}

	pick := func(names ...string) string {
		for _, name := range names {
			raw, ok := fields[name]
			if !ok {
				continue
			}

			var s string
			if json.Unmarshal(raw, &s) == nil {
				return s
			}
		}

		return ""
	}

	return codec.ErrorMetadata{
		Code:    codec.SanitizeErrorCode(pick("__type", "code", "Code")),
		Message: pick("message", "Message", "errorMessage"),
	}
}
