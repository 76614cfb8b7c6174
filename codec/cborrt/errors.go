package cborrt

import (
	"github.com/aws/smithy-go/encoding/cbor"

	"codec-generator/codec"
)

// ErrorComponents recovers the error code and message from a CBOR error body
// (a map carrying "__type" and "message"). Malformed bodies yield empty
// metadata.
func ErrorComponents(body []byte) codec.ErrorMetadata {
	var meta codec.ErrorMetadata

	v, err := cbor.Decode(body)
	if err != nil {
		return meta
	}

	m, ok := v.(cbor.Map)
	if !ok {
		return meta
	}

	for _, key := range []string{"__type", "code"} {
		if s, ok := m[key].(cbor.String); ok {
			meta.Code = codec.SanitizeErrorCode(string(s))
			break
		}
	}

	for _, key := range []string{"message", "Message"} {
		if s, ok := m[key].(cbor.String); ok {
			meta.Message = string(s)
			break
		}
	}

	return meta
}
