// Package jsonrt is the JSON runtime for generated codecs: a token decoder
// with null-aware typed reads, and writing helpers over smithy-go's JSON
// encoder.
package jsonrt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"time"

	"codec-generator/codec"
	"codec-generator/codec/timefmt"
)

// Decoder reads JSON values token by token.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder creates a Decoder over p.
func NewDecoder(p []byte) *Decoder {
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()

	return &Decoder{dec: dec}
}

// Offset returns the input offset of the last read token.
func (d *Decoder) Offset() int64 {
	return d.dec.InputOffset()
}

func (d *Decoder) token() (json.Token, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &codec.DecodeError{Reason: "truncated input", Offset: d.Offset(), Err: io.ErrUnexpectedEOF}
		}

		return nil, codec.WrapDecodeError(d.Offset(), "malformed json", err)
	}

	return tok, nil
}

// AtEOF reports whether the input has no more values.
func (d *Decoder) AtEOF() bool {
	_, err := d.dec.Token()
	return errors.Is(err, io.EOF)
}

// BeginObject consumes '{'. It returns false when the value is null.
func (d *Decoder) BeginObject() (bool, error) {
	return d.begin('{', "object")
}

// BeginArray consumes '['. It returns false when the value is null.
func (d *Decoder) BeginArray() (bool, error) {
	return d.begin('[', "array")
}

func (d *Decoder) begin(delim json.Delim, kind string) (bool, error) {
	tok, err := d.token()
	if err != nil {
		return false, err
	}

	if tok == nil {
		return false, nil
	}

	if got, ok := tok.(json.Delim); ok && got == delim {
		return true, nil
	}

	return false, codec.ExpectedError(d.Offset(), kind, tok)
}

// NextKey reads the next object key. It returns false after consuming the
// closing '}'.
func (d *Decoder) NextKey() (string, bool, error) {
	tok, err := d.token()
	if err != nil {
		return "", false, err
	}

	switch v := tok.(type) {
	case string:
		return v, true, nil
	case json.Delim:
		if v == '}' {
			return "", false, nil
		}
	}

	return "", false, codec.ExpectedError(d.Offset(), "object key", tok)
}

// More reports whether the current array has another element. It consumes the
// closing ']' when it returns false.
func (d *Decoder) More() (bool, error) {
	if d.dec.More() {
		return true, nil
	}

	tok, err := d.token()
	if err != nil {
		return false, err
	}

	if delim, ok := tok.(json.Delim); ok && delim == ']' {
		return false, nil
	}

	return false, codec.ExpectedError(d.Offset(), "]", tok)
}

// Skip discards the next value, including nested containers.
func (d *Decoder) Skip() error {
	depth := 0

	for {
		tok, err := d.token()
		if err != nil {
			return err
		}

		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}

		if depth == 0 {
			return nil
		}
	}
}

// ReadString reads a string; ok is false for null.
func (d *Decoder) ReadString() (string, bool, error) {
	tok, err := d.token()
	if err != nil {
		return "", false, err
	}

	switch v := tok.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	default:
		return "", false, codec.ExpectedError(d.Offset(), "string", tok)
	}
}

// ReadBool reads a boolean; ok is false for null.
func (d *Decoder) ReadBool() (bool, bool, error) {
	tok, err := d.token()
	if err != nil {
		return false, false, err
	}

	switch v := tok.(type) {
	case nil:
		return false, false, nil
	case bool:
		return v, true, nil
	default:
		return false, false, codec.ExpectedError(d.Offset(), "boolean", tok)
	}
}

// ReadInt reads an integer within [min, max]; ok is false for null.
func (d *Decoder) ReadInt(minV, maxV int64) (int64, bool, error) {
	tok, err := d.token()
	if err != nil {
		return 0, false, err
	}

	if tok == nil {
		return 0, false, nil
	}

	num, ok := tok.(json.Number)
	if !ok {
		return 0, false, codec.ExpectedError(d.Offset(), "integer", tok)
	}

	n, err := num.Int64()
	if err != nil {
		return 0, false, codec.WrapDecodeError(d.Offset(), "expected integer", err)
	}

	if n < minV || n > maxV {
		return 0, false, codec.NewDecodeError(d.Offset(), "integer %d exceeds range [%d, %d]", n, minV, maxV)
	}

	return n, true, nil
}

// ReadFloat reads a number or one of the strings "NaN", "Infinity",
// "-Infinity"; ok is false for null.
func (d *Decoder) ReadFloat(bits int) (float64, bool, error) {
	tok, err := d.token()
	if err != nil {
		return 0, false, err
	}

	switch v := tok.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), bits)
		if err != nil {
			return 0, false, codec.WrapDecodeError(d.Offset(), "expected number", err)
		}

		return f, true, nil
	case string:
		switch v {
		case "NaN":
			return math.NaN(), true, nil
		case "Infinity":
			return math.Inf(1), true, nil
		case "-Infinity":
			return math.Inf(-1), true, nil
		}
	}

	return 0, false, codec.ExpectedError(d.Offset(), "number", tok)
}

// ReadBlob reads a base64 string; ok is false for null.
func (d *Decoder) ReadBlob() ([]byte, bool, error) {
	s, ok, err := d.ReadString()
	if err != nil || !ok {
		return nil, ok, err
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false, codec.WrapDecodeError(d.Offset(), "invalid base64", err)
	}

	return b, true, nil
}

// ReadEpochSeconds reads an epoch-seconds timestamp.
func (d *Decoder) ReadEpochSeconds() (time.Time, bool, error) {
	f, ok, err := d.ReadFloat(64)
	if err != nil || !ok {
		return time.Time{}, ok, err
	}

	return timefmt.FromEpochSeconds(f), true, nil
}

// ReadDateTime reads a date-time string timestamp.
func (d *Decoder) ReadDateTime() (time.Time, bool, error) {
	return d.readTimeString(timefmt.ParseDateTime)
}

// ReadHTTPDate reads an http-date string timestamp.
func (d *Decoder) ReadHTTPDate() (time.Time, bool, error) {
	return d.readTimeString(timefmt.ParseHTTPDate)
}

func (d *Decoder) readTimeString(parse func(string) (time.Time, error)) (time.Time, bool, error) {
	s, ok, err := d.ReadString()
	if err != nil || !ok {
		return time.Time{}, ok, err
	}

	t, err := parse(s)
	if err != nil {
		return time.Time{}, false, codec.WrapDecodeError(d.Offset(), "invalid timestamp", err)
	}

	return t, true, nil
}

// ReadDocument reads any JSON value as an untyped document. Numbers are kept
// as json.Number.
func (d *Decoder) ReadDocument() (any, error) {
	var v any
	if err := d.dec.Decode(&v); err != nil {
		return nil, codec.WrapDecodeError(d.Offset(), "malformed document", err)
	}

	return v, nil
}

// ReadRaw returns the next value's raw JSON text.
func (d *Decoder) ReadRaw() ([]byte, error) {
	var raw json.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		return nil, codec.WrapDecodeError(d.Offset(), "malformed value", err)
	}

	return raw, nil
}
