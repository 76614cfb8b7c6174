// Package xmlrt is the XML runtime for generated codecs. Serializers write
// through smithy-go's XML encoder, with the float and timestamp text helpers
// of this package; parsers use the node decoder that walks one element's
// children, typed text readers and root wrapper descent for operation
// responses and error bodies.
package xmlrt

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	smithyxml "github.com/aws/smithy-go/encoding/xml"

	"codec-generator/codec"
	"codec-generator/codec/timefmt"
)

// NodeDecoder walks the children of one element.
type NodeDecoder struct {
	Decoder *xml.Decoder
	StartEl xml.StartElement
}

// WrapNodeDecoder returns a NodeDecoder positioned just after start.
func WrapNodeDecoder(d *xml.Decoder, start xml.StartElement) NodeDecoder {
	return NodeDecoder{Decoder: d, StartEl: start}
}

// Offset returns the decoder's input offset.
func (n NodeDecoder) Offset() int64 {
	return n.Decoder.InputOffset()
}

func (n NodeDecoder) token() (xml.Token, error) {
	tok, err := n.Decoder.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &codec.DecodeError{
				Reason: "truncated input inside <" + n.StartEl.Name.Local + ">",
				Offset: n.Offset(),
				Err:    io.ErrUnexpectedEOF,
			}
		}

		return nil, codec.WrapDecodeError(n.Offset(), "malformed xml", err)
	}

	return tok, nil
}

// Token returns the next child start element. done is true once the end tag
// of the wrapped element has been consumed. Every returned child must be
// read fully (through a nested parser, Value or Skip) before calling Token
// again.
func (n NodeDecoder) Token() (xml.StartElement, bool, error) {
	for {
		tok, err := n.token()
		if err != nil {
			return xml.StartElement{}, false, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return t.Copy(), false, nil
		case xml.EndElement:
			return xml.StartElement{}, true, nil
		}
	}
}

// Value reads the text of the wrapped element up to its end tag.
func (n NodeDecoder) Value() (string, error) {
	var sb strings.Builder

	for {
		tok, err := n.token()
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", codec.NewDecodeError(n.Offset(), "unexpected element <%s> inside <%s>",
				t.Name.Local, n.StartEl.Name.Local)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

// Skip discards the rest of the wrapped element.
func (n NodeDecoder) Skip() error {
	if err := n.Decoder.Skip(); err != nil {
		return codec.WrapDecodeError(n.Offset(), "skipping <"+n.StartEl.Name.Local+">", err)
	}

	return nil
}

// Attr returns the value of the named attribute of the wrapped element.
func (n NodeDecoder) Attr(name string) (string, bool) {
	for _, a := range n.StartEl.Attr {
		if a.Name.Local == name && a.Name.Space != "xmlns" {
			return a.Value, true
		}
	}

	return "", false
}

// Bool reads the element text as a boolean.
func (n NodeDecoder) Bool() (bool, error) {
	s, err := n.Value()
	if err != nil {
		return false, err
	}

	return ParseBool(s, n.Offset())
}

// Int reads the element text as an integer within [min, max].
func (n NodeDecoder) Int(minV, maxV int64) (int64, error) {
	s, err := n.Value()
	if err != nil {
		return 0, err
	}

	return ParseInt(s, minV, maxV, n.Offset())
}

// Float reads the element text as a float.
func (n NodeDecoder) Float(bits int) (float64, error) {
	s, err := n.Value()
	if err != nil {
		return 0, err
	}

	return ParseFloat(s, bits, n.Offset())
}

// Blob reads the element text as base64.
func (n NodeDecoder) Blob() ([]byte, error) {
	s, err := n.Value()
	if err != nil {
		return nil, err
	}

	return ParseBlob(s, n.Offset())
}

// Time reads the element text as a timestamp in the given format
// ("date-time", "http-date" or "epoch-seconds").
func (n NodeDecoder) Time(format string) (time.Time, error) {
	s, err := n.Value()
	if err != nil {
		return time.Time{}, err
	}

	return ParseTime(s, format, n.Offset())
}

// ParseBool parses XML boolean text.
func ParseBool(s string, offset int64) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, &codec.DecodeError{Reason: "expected boolean", Offset: offset, Err: err}
	}

	return v, nil
}

// ParseInt parses XML integer text within [min, max].
func ParseInt(s string, minV, maxV int64, offset int64) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &codec.DecodeError{Reason: "expected integer", Offset: offset, Err: err}
	}

	if v < minV || v > maxV {
		return 0, codec.NewDecodeError(offset, "integer %d exceeds range [%d, %d]", v, minV, maxV)
	}

	return v, nil
}

// ParseFloat parses XML float text, including "NaN", "Infinity" and
// "-Infinity".
func ParseFloat(s string, bits int, offset int64) (float64, error) {
	switch s = strings.TrimSpace(s); s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}

	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, &codec.DecodeError{Reason: "expected number", Offset: offset, Err: err}
	}

	return v, nil
}

// ParseBlob parses base64 text.
func ParseBlob(s string, offset int64) ([]byte, error) {
	v, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, &codec.DecodeError{Reason: "invalid base64", Offset: offset, Err: err}
	}

	return v, nil
}

// ParseTime parses timestamp text in the given format.
func ParseTime(s, format string, offset int64) (time.Time, error) {
	s = strings.TrimSpace(s)

	var (
		t   time.Time
		err error
	)

	switch format {
	case "http-date":
		t, err = timefmt.ParseHTTPDate(s)
	case "epoch-seconds":
		t, err = timefmt.ParseEpochString(s)
	default:
		t, err = timefmt.ParseDateTime(s)
	}

	if err != nil {
		return time.Time{}, &codec.DecodeError{Reason: "invalid timestamp", Offset: offset, Err: err}
	}

	return t, nil
}

// FormatTime renders t in the given format.
func FormatTime(t time.Time, format string) string {
	switch format {
	case "http-date":
		return timefmt.FormatHTTPDate(t)
	case "epoch-seconds":
		return timefmt.FormatEpochString(t)
	default:
		return timefmt.FormatDateTime(t)
	}
}

// NewDecoder returns a strict xml.Decoder over body.
func NewDecoder(body []byte) *xml.Decoder {
	return xml.NewDecoder(bytes.NewReader(body))
}

// FetchRootElement skips the prolog and returns the document's root start
// element.
func FetchRootElement(d *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, codec.NewDecodeError(d.InputOffset(), "no root element")
			}

			return xml.StartElement{}, codec.WrapDecodeError(d.InputOffset(), "malformed xml", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			return start.Copy(), nil
		}
	}
}

// Descend requires the document root to be named path[0], then finds each
// following path element among the children of the previous one, skipping
// unrelated siblings. It returns a NodeDecoder on the last element.
func Descend(body []byte, path ...string) (NodeDecoder, error) {
	d := NewDecoder(body)

	root, err := FetchRootElement(d)
	if err != nil {
		return NodeDecoder{}, err
	}

	node := WrapNodeDecoder(d, root)
	if len(path) == 0 {
		return node, nil
	}

	if root.Name.Local != path[0] {
		return NodeDecoder{}, codec.NewDecodeError(d.InputOffset(),
			"unrecognized root element <%s>, expected <%s>", root.Name.Local, path[0])
	}

	for _, name := range path[1:] {
		next, err := findChild(node, name)
		if err != nil {
			return NodeDecoder{}, err
		}

		node = next
	}

	return node, nil
}

func findChild(node NodeDecoder, name string) (NodeDecoder, error) {
	for {
		start, done, err := node.Token()
		if err != nil {
			return NodeDecoder{}, err
		}

		if done {
			return NodeDecoder{}, codec.NewDecodeError(node.Offset(),
				"missing <%s> inside <%s>", name, node.StartEl.Name.Local)
		}

		child := WrapNodeDecoder(node.Decoder, start)
		if start.Name.Local == name {
			return child, nil
		}

		if err := child.Skip(); err != nil {
			return NodeDecoder{}, err
		}
	}
}

// ErrorComponents reads Code and Message from the error element found at
// path (for example "ErrorResponse", "Error"), plus RequestId/RequestID from
// the root. Bodies with the error at or just under the root are read by
// smithy-go; deeper ones, such as EC2's Response/Errors/Error, by walking
// down path. Malformed bodies yield whatever was read before the failure.
func ErrorComponents(body []byte, path ...string) codec.ErrorMetadata {
	var meta codec.ErrorMetadata

	meta.RequestID = requestID(body)

	if len(path) == 1 || len(path) == 2 {
		c, err := smithyxml.GetErrorResponseComponents(bytes.NewReader(body), len(path) == 1)
		if err != nil {
			return meta
		}

		meta.Code = codec.SanitizeErrorCode(strings.TrimSpace(c.Code))
		meta.Message = c.Message

		return meta
	}

	node, err := Descend(body, path...)
	if err != nil {
		return meta
	}

	for {
		start, done, err := node.Token()
		if err != nil || done {
			return meta
		}

		child := WrapNodeDecoder(node.Decoder, start)

		switch start.Name.Local {
		case "Code":
			s, err := child.Value()
			if err != nil {
				return meta
			}

			meta.Code = codec.SanitizeErrorCode(strings.TrimSpace(s))
		case "Message", "message":
			s, err := child.Value()
			if err != nil {
				return meta
			}

			meta.Message = s
		default:
			if err := child.Skip(); err != nil {
				return meta
			}
		}
	}
}

func requestID(body []byte) string {
	node, err := Descend(body)
	if err != nil {
		return ""
	}

	for {
		start, done, err := node.Token()
		if err != nil || done {
			return ""
		}

		child := WrapNodeDecoder(node.Decoder, start)

		if start.Name.Local == "RequestId" || start.Name.Local == "RequestID" {
			s, err := child.Value()
			if err != nil {
				return ""
			}

			return strings.TrimSpace(s)
		}

		if err := child.Skip(); err != nil {
			return ""
		}
	}
}
