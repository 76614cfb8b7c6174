package xmlproto

import "codec-generator/internal/protocol"

// Partition splits fields into those bound to attributes of the structure's
// element and those written as child elements, keeping member order.
func Partition(fields []protocol.Field) (attrs, elems []protocol.Field) {
	for _, f := range fields {
		if f.Member.XMLAttribute() && !f.Target.Kind.IsAggregate() {
			attrs = append(attrs, f)
		} else {
			elems = append(elems, f)
		}
	}

	return attrs, elems
}
