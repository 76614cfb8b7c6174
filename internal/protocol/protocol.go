// Package protocol holds what the codec generators share: the protocol
// table, the generation context threaded through every generator, member
// classification for serde, and the operation entry points built on top of
// a Codec.
package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"codec-generator/internal/match"
	"codec-generator/internal/model"
)

// ErrNotSupported is returned by a Codec for an entry point the protocol does
// not define, such as parsing an AWS Query request body.
var ErrNotSupported = errors.New("not supported by protocol")

//go:generate go tool stringer -type=Body -linecomment -output=body_string.go

// Body is the wire codec of a protocol's document bodies.
type Body int

const (
	BodyJSON  Body = iota // json
	BodyCBOR              // cbor
	BodyXML               // xml
	BodyQuery             // query
)

// Timestamp formats.
const (
	DateTime     = "date-time"
	HTTPDate     = "http-date"
	EpochSeconds = "epoch-seconds"
)

// Settings describes one protocol.
type Settings struct {
	// Name is the protocol name used in configuration.
	Name string
	Body Body
	// DefaultTimestamp applies when neither member nor target carry a
	// timestampFormat trait.
	DefaultTimestamp string
	// UseJSONName makes JSON member names honor the jsonName trait.
	UseJSONName bool
	// ContentType is the media type of document bodies.
	ContentType string
	// EC2 selects EC2 Query framing over AWS Query.
	EC2 bool
}

var protocols = map[string]Settings{
	"awsJson1_0": {Name: "awsJson1_0", Body: BodyJSON, DefaultTimestamp: EpochSeconds,
		ContentType: "application/x-amz-json-1.0"},
	"awsJson1_1": {Name: "awsJson1_1", Body: BodyJSON, DefaultTimestamp: EpochSeconds,
		ContentType: "application/x-amz-json-1.1"},
	"restJson1": {Name: "restJson1", Body: BodyJSON, DefaultTimestamp: EpochSeconds, UseJSONName: true,
		ContentType: "application/json"},
	"rpcv2Cbor": {Name: "rpcv2Cbor", Body: BodyCBOR, DefaultTimestamp: EpochSeconds,
		ContentType: "application/cbor"},
	"restXml": {Name: "restXml", Body: BodyXML, DefaultTimestamp: DateTime,
		ContentType: "application/xml"},
	"awsQuery": {Name: "awsQuery", Body: BodyQuery, DefaultTimestamp: DateTime,
		ContentType: "application/x-www-form-urlencoded"},
	"ec2Query": {Name: "ec2Query", Body: BodyQuery, DefaultTimestamp: DateTime, EC2: true,
		ContentType: "application/x-www-form-urlencoded"},
}

// Lookup returns the settings of a named protocol.
func Lookup(name string) (Settings, error) {
	s, ok := protocols[name]
	if !ok {
		return Settings{}, fmt.Errorf("unknown protocol %q%s (available: %s)", name, match.Hint(name, Names()), strings.Join(Names(), ", "))
	}

	return s, nil
}

// Names returns the known protocol names, sorted.
func Names() []string {
	names := make([]string, 0, len(protocols))
	for n := range protocols {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Codec generates the protocol-specific functions behind the operation entry
// points. Every method returns the name of a generated function:
//
//	serializers: func(v *T) ([]byte, error)
//	parsers:     func(data []byte) (*T, error), or (*TBuilder, error) when builder is set
//
// A method returns ErrNotSupported when the protocol has no such body.
type Codec interface {
	SerializeInput(op, s *model.Shape) (string, error)
	SerializeOutput(op, s *model.Shape) (string, error)
	ParseInput(op, s *model.Shape, builder bool) (string, error)
	ParseOutput(op, s *model.Shape) (string, error)

	// SerializeError writes an error structure as a complete error response
	// body; ParseError reads one.
	SerializeError(s *model.Shape) (string, error)
	ParseError(s *model.Shape) (string, error)

	// SerializePayload and ParsePayload handle a structure as a bare document
	// without protocol framing, restricted to the members accepted by
	// include. They back event stream payloads.
	SerializePayload(s *model.Shape, purpose string, include func(*model.Member) bool) (string, error)
	ParsePayload(s *model.Shape, purpose string, include func(*model.Member) bool) (string, error)

	// ErrorMetadata returns a Go expression of type codec.ErrorMetadata read
	// from the []byte variable named body.
	ErrorMetadata(body string) string
}
