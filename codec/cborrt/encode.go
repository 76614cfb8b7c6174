// Package cborrt is the CBOR runtime for generated codecs. Serializers build a
// value tree out of smithy-go's encoding/cbor types and encode it in one go;
// parsers decode the whole body into that tree and walk it with the typed,
// null-aware reads of this package.
package cborrt

import (
	"time"

	"github.com/aws/smithy-go/encoding/cbor"

	"codec-generator/codec/timefmt"
)

// TagEpochTime is the CBOR tag of an epoch-based date/time.
const TagEpochTime uint64 = 1

// Null is the null value written for absent sparse entries.
func Null() cbor.Value {
	return &cbor.Nil{}
}

// Int returns v as a CBOR unsigned or negative integer.
func Int(v int64) cbor.Value {
	if v < 0 {
		return cbor.NegInt(uint64(-(v + 1)) + 1)
	}

	return cbor.Uint(uint64(v))
}

// Timestamp returns t as tag 1 over fractional epoch seconds.
func Timestamp(t time.Time) cbor.Value {
	return &cbor.Tag{ID: TagEpochTime, Value: cbor.Float64(timefmt.EpochSeconds(t))}
}

// Encode encodes a serialized value tree.
func Encode(v cbor.Value) []byte {
	return cbor.Encode(v)
}
