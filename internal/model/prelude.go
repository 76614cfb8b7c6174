package model

import "github.com/boynton/data"

var prelude = buildPrelude()

func buildPrelude() map[ShapeID]*Shape {
	simple := map[string]Kind{
		"String":     KindString,
		"Blob":       KindBlob,
		"Boolean":    KindBoolean,
		"Byte":       KindByte,
		"Short":      KindShort,
		"Integer":    KindInteger,
		"Long":       KindLong,
		"Float":      KindFloat,
		"Double":     KindDouble,
		"BigInteger": KindBigInteger,
		"BigDecimal": KindBigDecimal,
		"Timestamp":  KindTimestamp,
		"Document":   KindDocument,
	}

	out := make(map[ShapeID]*Shape, len(simple)*2+1)

	for name, kind := range simple {
		id := ShapeID("smithy.api#" + name)
		out[id] = &Shape{ID: id, Kind: kind}
	}

	// smithy 1.0 primitive shapes carry a zero default.
	primitives := map[string]Kind{
		"PrimitiveBoolean": KindBoolean,
		"PrimitiveByte":    KindByte,
		"PrimitiveShort":   KindShort,
		"PrimitiveInteger": KindInteger,
		"PrimitiveLong":    KindLong,
		"PrimitiveFloat":   KindFloat,
		"PrimitiveDouble":  KindDouble,
	}

	for name, kind := range primitives {
		id := ShapeID("smithy.api#" + name)
		traits := data.NewObject()

		if kind == KindBoolean {
			traits.Put(TraitDefault, false)
		} else {
			traits.Put(TraitDefault, 0)
		}

		out[id] = &Shape{ID: id, Kind: kind, Traits: NewTraits(traits)}
	}

	out["smithy.api#Unit"] = &Shape{ID: "smithy.api#Unit", Kind: KindStructure}

	return out
}

// IsUnit reports whether id is the prelude Unit shape.
func IsUnit(id ShapeID) bool {
	return id == "smithy.api#Unit"
}
