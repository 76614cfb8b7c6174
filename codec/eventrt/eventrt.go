// Package eventrt holds the event stream header names and typed header
// accessors used by generated event marshallers and unmarshallers.
package eventrt

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"

	"codec-generator/codec"
)

// Header names.
const (
	MessageTypeHeader   = ":message-type"
	EventTypeHeader     = ":event-type"
	ExceptionTypeHeader = ":exception-type"
	ContentTypeHeader   = ":content-type"
	ErrorCodeHeader     = ":error-code"
	ErrorMessageHeader  = ":error-message"
)

// Message types.
const (
	EventMessageType     = "event"
	ExceptionMessageType = "exception"
	ErrorMessageType     = "error"
)

// NewEvent starts an event frame for the given event type.
func NewEvent(eventType, contentType string) eventstream.Message {
	var msg eventstream.Message
	msg.Headers.Set(MessageTypeHeader, eventstream.StringValue(EventMessageType))
	msg.Headers.Set(EventTypeHeader, eventstream.StringValue(eventType))

	if contentType != "" {
		msg.Headers.Set(ContentTypeHeader, eventstream.StringValue(contentType))
	}

	return msg
}

// NewException starts an exception frame for the given exception type.
func NewException(exceptionType, contentType string) eventstream.Message {
	var msg eventstream.Message
	msg.Headers.Set(MessageTypeHeader, eventstream.StringValue(ExceptionMessageType))
	msg.Headers.Set(ExceptionTypeHeader, eventstream.StringValue(exceptionType))

	if contentType != "" {
		msg.Headers.Set(ContentTypeHeader, eventstream.StringValue(contentType))
	}

	return msg
}

// MessageError is a transport level error frame (":message-type" "error").
type MessageError struct {
	Code    string
	Message string
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("event stream error %s: %s", e.Code, e.Message)
}

// Metadata returns the frame's code and message.
func (e *MessageError) Metadata() codec.ErrorMetadata {
	return codec.ErrorMetadata{Code: e.Code, Message: e.Message}
}

// NewMessageError reads an error frame.
func NewMessageError(msg eventstream.Message) *MessageError {
	code, _, _ := StringHeader(msg, ErrorCodeHeader)
	message, _, _ := StringHeader(msg, ErrorMessageHeader)

	return &MessageError{Code: code, Message: message}
}

// MessageType returns the frame's ":message-type" header.
func MessageType(msg eventstream.Message) (string, error) {
	s, ok, err := StringHeader(msg, MessageTypeHeader)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", codec.NewDecodeError(-1, "event stream message has no %s header", MessageTypeHeader)
	}

	return s, nil
}

func lookup[T any](msg eventstream.Message, name, kind string) (T, bool, error) {
	var zero T

	v := msg.Headers.Get(name)
	if v == nil {
		return zero, false, nil
	}

	t, ok := v.(T)
	if !ok {
		return zero, false, codec.NewDecodeError(-1, "header %s: expected %s, got %T", name, kind, v)
	}

	return t, true, nil
}

// StringHeader reads a string header.
func StringHeader(msg eventstream.Message, name string) (string, bool, error) {
	v, ok, err := lookup[eventstream.StringValue](msg, name, "string")
	return string(v), ok, err
}

// BoolHeader reads a boolean header.
func BoolHeader(msg eventstream.Message, name string) (bool, bool, error) {
	v, ok, err := lookup[eventstream.BoolValue](msg, name, "boolean")
	return bool(v), ok, err
}

// Int8Header reads a byte header.
func Int8Header(msg eventstream.Message, name string) (int8, bool, error) {
	v, ok, err := lookup[eventstream.Int8Value](msg, name, "byte")
	return int8(v), ok, err
}

// Int16Header reads a short header.
func Int16Header(msg eventstream.Message, name string) (int16, bool, error) {
	v, ok, err := lookup[eventstream.Int16Value](msg, name, "short")
	return int16(v), ok, err
}

// Int32Header reads an integer header.
func Int32Header(msg eventstream.Message, name string) (int32, bool, error) {
	v, ok, err := lookup[eventstream.Int32Value](msg, name, "integer")
	return int32(v), ok, err
}

// Int64Header reads a long header.
func Int64Header(msg eventstream.Message, name string) (int64, bool, error) {
	v, ok, err := lookup[eventstream.Int64Value](msg, name, "long")
	return int64(v), ok, err
}

// BytesHeader reads a blob header.
func BytesHeader(msg eventstream.Message, name string) ([]byte, bool, error) {
	v, ok, err := lookup[eventstream.BytesValue](msg, name, "blob")
	return []byte(v), ok, err
}

// TimestampHeader reads a timestamp header.
func TimestampHeader(msg eventstream.Message, name string) (time.Time, bool, error) {
	v, ok, err := lookup[eventstream.TimestampValue](msg, name, "timestamp")
	return time.Time(v), ok, err
}
