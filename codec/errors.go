package codec

import (
	"errors"
	"fmt"
	"strconv"
)

// DecodeError reports malformed wire input.
type DecodeError struct {
	// Reason is the human-readable description of what was wrong.
	Reason string
	// Offset is the byte offset or tag position where the problem was found,
	// -1 when unknown.
	Offset int64
	// Err is the underlying failure, if any.
	Err error
}

func (e *DecodeError) Error() string {
	msg := e.Reason
	if e.Offset >= 0 {
		msg += " at offset " + strconv.FormatInt(e.Offset, 10)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError builds a DecodeError with a formatted reason.
func NewDecodeError(offset int64, format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), Offset: offset}
}

// WrapDecodeError attaches a reason and offset to err. An err that already is
// a *DecodeError is returned as is.
func WrapDecodeError(offset int64, reason string, err error) error {
	if err == nil {
		return nil
	}

	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}

	return &DecodeError{Reason: reason, Offset: offset, Err: err}
}

// ExpectedError reports a token or value of the wrong kind.
func ExpectedError(offset int64, want string, got any) *DecodeError {
	return NewDecodeError(offset, "expected %s, got %v", want, got)
}

// MissingFieldError reports an unset required member after parsing.
func MissingFieldError(shape, member string) *DecodeError {
	return NewDecodeError(-1, "%s: missing required field %s", shape, member)
}

// MixedUnionError reports a union payload carrying more than one variant.
func MixedUnionError(offset int64, union, first, second string) *DecodeError {
	return NewDecodeError(offset, "%s: mixed union variants %s and %s", union, first, second)
}

// UnknownVariantError reports a union discriminator or enum value that the
// strict parser does not recognize.
func UnknownVariantError(offset int64, shape, tag string) *DecodeError {
	return NewDecodeError(offset, "%s: unknown variant %q", shape, tag)
}

// ConstraintError reports a modeled constraint violated by a parsed value.
type ConstraintError struct {
	Shape  string
	Member string
	Reason string
}

func (e *ConstraintError) Error() string {
	if e.Member == "" {
		return e.Shape + ": " + e.Reason
	}

	return e.Shape + "." + e.Member + ": " + e.Reason
}
