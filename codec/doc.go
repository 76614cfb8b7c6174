// Package codec holds the runtime types shared by generated serializers and
// parsers: structured decode errors, error metadata, retry classification and
// transport-level error wrappers.
//
// Protocol specific readers and writers live in the sub-packages:
//
//   - jsonrt: JSON token decoder and JSON writing helpers
//   - cborrt: CBOR value trees over smithy-go encoding/cbor, with typed null-aware reads
//   - xmlrt: float formatting for smithy-go's XML encoder, and a node decoder with root wrapper descent
//   - queryrt: AWS Query / EC2 Query form key helpers
//   - eventrt: event stream header helpers
//   - timefmt: timestamp formatting per modeled format
package codec
