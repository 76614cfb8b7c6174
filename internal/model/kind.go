package model

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is the type of a shape. String returns its Smithy type name.
type Kind int

const (
	KindUnknown    Kind = iota // unknown
	KindBlob                   // blob
	KindBoolean                // boolean
	KindByte                   // byte
	KindShort                  // short
	KindInteger                // integer
	KindLong                   // long
	KindFloat                  // float
	KindDouble                 // double
	KindBigInteger             // bigInteger
	KindBigDecimal             // bigDecimal
	KindString                 // string
	KindEnum                   // enum
	KindIntEnum                // intEnum
	KindTimestamp              // timestamp
	KindDocument               // document
	KindList                   // list
	KindSet                    // set
	KindMap                    // map
	KindStructure              // structure
	KindUnion                  // union
	KindOperation              // operation
	KindService                // service
	KindResource               // resource
)

// ParseKind maps a Smithy type name to a Kind.
func ParseKind(s string) Kind {
	for k := KindBlob; k <= KindResource; k++ {
		if k.String() == s {
			return k
		}
	}

	return KindUnknown
}

// IsNumber reports whether k is one of the integer or floating kinds.
func (k Kind) IsNumber() bool {
	switch k {
	case KindByte, KindShort, KindInteger, KindLong, KindFloat, KindDouble, KindIntEnum:
		return true
	default:
		return false
	}
}

// IsCollection reports whether k is a list or set.
func (k Kind) IsCollection() bool {
	return k == KindList || k == KindSet
}

// IsAggregate reports whether values of k contain other values.
func (k Kind) IsAggregate() bool {
	switch k {
	case KindList, KindSet, KindMap, KindStructure, KindUnion:
		return true
	default:
		return false
	}
}
