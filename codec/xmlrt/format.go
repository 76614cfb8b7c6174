package xmlrt

import (
	"math"

	"github.com/aws/smithy-go/encoding"
	smithyxml "github.com/aws/smithy-go/encoding/xml"
)

// WriteFloat writes f as the text of v, spelling the non-finite values as
// "NaN", "Infinity" and "-Infinity".
func WriteFloat(v smithyxml.Value, f float64, bits int) {
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

// FormatFloat renders f as attribute or form text, the same way WriteFloat
// renders element text.
func FormatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return string(encoding.EncodeFloat(nil, f, bits))
	}
}
