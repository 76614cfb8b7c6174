package model

import (
	"fmt"
	"strconv"

	"github.com/boynton/data"
)

// Trait identifiers.
const (
	TraitRequired        = "smithy.api#required"
	TraitDefault         = "smithy.api#default"
	TraitClientOptional  = "smithy.api#clientOptional"
	TraitSparse          = "smithy.api#sparse"
	TraitEnum            = "smithy.api#enum"
	TraitEnumValue       = "smithy.api#enumValue"
	TraitLength          = "smithy.api#length"
	TraitRange           = "smithy.api#range"
	TraitPattern         = "smithy.api#pattern"
	TraitTimestampFormat = "smithy.api#timestampFormat"
	TraitJSONName        = "smithy.api#jsonName"
	TraitXMLName         = "smithy.api#xmlName"
	TraitXMLAttribute    = "smithy.api#xmlAttribute"
	TraitXMLFlattened    = "smithy.api#xmlFlattened"
	TraitXMLNamespace    = "smithy.api#xmlNamespace"
	TraitEC2QueryName    = "aws.protocols#ec2QueryName"
	TraitStreaming       = "smithy.api#streaming"
	TraitEventHeader     = "smithy.api#eventHeader"
	TraitEventPayload    = "smithy.api#eventPayload"
	TraitError           = "smithy.api#error"
	TraitRetryable       = "smithy.api#retryable"
	TraitDocumentation   = "smithy.api#documentation"
	TraitInput           = "smithy.api#input"
	TraitOutput          = "smithy.api#output"
)

// Traits is the ordered trait object attached to a shape or member.
type Traits struct {
	obj *data.Object
}

// NewTraits wraps an ordered trait object. A nil object has no traits.
func NewTraits(obj *data.Object) Traits {
	return Traits{obj: obj}
}

// Has reports whether the trait is applied.
func (t Traits) Has(id string) bool {
	return t.obj != nil && t.obj.Has(id)
}

// Keys returns the applied trait IDs in document order.
func (t Traits) Keys() []string {
	if t.obj == nil {
		return nil
	}

	return t.obj.Keys()
}

// Value returns the raw trait value.
func (t Traits) Value(id string) any {
	if t.obj == nil {
		return nil
	}

	return t.obj.Get(id)
}

func (t Traits) str(id string) (string, bool) {
	if !t.Has(id) {
		return "", false
	}

	s, ok := t.obj.Get(id).(string)

	return s, ok
}

func (t Traits) object(id string) *data.Object {
	if !t.Has(id) {
		return nil
	}

	return t.obj.GetObject(id)
}

// Required reports the required trait.
func (t Traits) Required() bool { return t.Has(TraitRequired) }

// ClientOptional reports the clientOptional trait.
func (t Traits) ClientOptional() bool { return t.Has(TraitClientOptional) }

// Sparse reports the sparse trait.
func (t Traits) Sparse() bool { return t.Has(TraitSparse) }

// Streaming reports the streaming trait.
func (t Traits) Streaming() bool { return t.Has(TraitStreaming) }

// EventHeader reports the eventHeader trait.
func (t Traits) EventHeader() bool { return t.Has(TraitEventHeader) }

// EventPayload reports the eventPayload trait.
func (t Traits) EventPayload() bool { return t.Has(TraitEventPayload) }

// XMLAttribute reports the xmlAttribute trait.
func (t Traits) XMLAttribute() bool { return t.Has(TraitXMLAttribute) }

// XMLFlattened reports the xmlFlattened trait.
func (t Traits) XMLFlattened() bool { return t.Has(TraitXMLFlattened) }

// XMLName returns the xmlName trait.
func (t Traits) XMLName() (string, bool) { return t.str(TraitXMLName) }

// JSONName returns the jsonName trait.
func (t Traits) JSONName() (string, bool) { return t.str(TraitJSONName) }

// EC2QueryName returns the ec2QueryName trait.
func (t Traits) EC2QueryName() (string, bool) { return t.str(TraitEC2QueryName) }

// TimestampFormat returns the timestampFormat trait.
func (t Traits) TimestampFormat() (string, bool) { return t.str(TraitTimestampFormat) }

// Pattern returns the pattern trait.
func (t Traits) Pattern() (string, bool) { return t.str(TraitPattern) }

// Documentation returns the documentation trait or "".
func (t Traits) Documentation() string {
	s, _ := t.str(TraitDocumentation)
	return s
}

// ErrorFault returns "client" or "server" when the error trait is applied.
func (t Traits) ErrorFault() (string, bool) { return t.str(TraitError) }

// XMLNamespace returns the xmlNamespace trait's uri and prefix.
func (t Traits) XMLNamespace() (uri, prefix string, ok bool) {
	obj := t.object(TraitXMLNamespace)
	if obj == nil {
		return "", "", false
	}

	uri, _ = obj.Get("uri").(string)
	prefix, _ = obj.Get("prefix").(string)

	return uri, prefix, uri != ""
}

// Retryable returns whether the retryable trait is applied and its throttling
// flag.
func (t Traits) Retryable() (retryable, throttling bool) {
	if !t.Has(TraitRetryable) {
		return false, false
	}

	if obj := t.object(TraitRetryable); obj != nil {
		throttling, _ = obj.Get("throttling").(bool)
	}

	return true, throttling
}

// Default returns the default trait value. ok is false when the trait is not
// applied; the value may be nil for an explicit null default.
func (t Traits) Default() (any, bool) {
	if !t.Has(TraitDefault) {
		return nil, false
	}

	return t.obj.Get(TraitDefault), true
}

// Bounds is a min/max pair from a length or range trait.
type Bounds struct {
	Min *float64
	Max *float64
}

// Length returns the length trait.
func (t Traits) Length() (Bounds, bool) { return t.bounds(TraitLength) }

// Range returns the range trait.
func (t Traits) Range() (Bounds, bool) { return t.bounds(TraitRange) }

func (t Traits) bounds(id string) (Bounds, bool) {
	obj := t.object(id)
	if obj == nil {
		return Bounds{}, false
	}

	var b Bounds

	if v, ok := toFloat(obj.Get("min")); ok {
		b.Min = &v
	}

	if v, ok := toFloat(obj.Get("max")); ok {
		b.Max = &v
	}

	return b, true
}

// toFloat converts a JSON number in whatever representation the trait object
// holds it.
func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}

	f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// EnumValue is one modeled enum entry.
type EnumValue struct {
	// Name is the member (or enum trait entry) name.
	Name string
	// Value is the wire value; for intEnum shapes it is the decimal literal.
	Value string
	// Documentation is the entry's documentation.
	Documentation string
}

// legacyEnum reads the smithy 1.0 enum trait on a string shape.
func (t Traits) legacyEnum() []EnumValue {
	if !t.Has(TraitEnum) {
		return nil
	}

	var out []EnumValue

	for _, e := range t.obj.GetArray(TraitEnum) {
		obj := data.AsObject(e)
		if obj == nil {
			continue
		}

		value, _ := obj.Get("value").(string)
		name, _ := obj.Get("name").(string)
		doc, _ := obj.Get("documentation").(string)

		if name == "" {
			name = value
		}

		out = append(out, EnumValue{Name: name, Value: value, Documentation: doc})
	}

	return out
}
