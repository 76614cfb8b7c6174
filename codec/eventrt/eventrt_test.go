package eventrt

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codec-generator/codec"
)

func TestNewEvent(t *testing.T) {
	msg := NewEvent("Greeting", "application/json")

	mt, err := MessageType(msg)
	require.NoError(t, err)
	assert.Equal(t, EventMessageType, mt)

	et, ok, err := StringHeader(msg, EventTypeHeader)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Greeting", et)

	ct, _, _ := StringHeader(msg, ContentTypeHeader)
	assert.Equal(t, "application/json", ct)
}

func TestNewException(t *testing.T) {
	msg := NewException("Throttled", "")

	mt, err := MessageType(msg)
	require.NoError(t, err)
	assert.Equal(t, ExceptionMessageType, mt)

	_, ok, err := StringHeader(msg, ContentTypeHeader)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTypedHeaders(t *testing.T) {
	ts := time.Date(2022, 2, 2, 2, 2, 2, 0, time.UTC)

	var msg eventstream.Message
	msg.Headers.Set("b", eventstream.BoolValue(true))
	msg.Headers.Set("i8", eventstream.Int8Value(-3))
	msg.Headers.Set("i16", eventstream.Int16Value(300))
	msg.Headers.Set("i32", eventstream.Int32Value(70000))
	msg.Headers.Set("i64", eventstream.Int64Value(1<<40))
	msg.Headers.Set("blob", eventstream.BytesValue("raw"))
	msg.Headers.Set("ts", eventstream.TimestampValue(ts))

	b, ok, err := BoolHeader(msg, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	i8, _, err := Int8Header(msg, "i8")
	require.NoError(t, err)
	assert.Equal(t, int8(-3), i8)

	i16, _, err := Int16Header(msg, "i16")
	require.NoError(t, err)
	assert.Equal(t, int16(300), i16)

	i32, _, err := Int32Header(msg, "i32")
	require.NoError(t, err)
	assert.Equal(t, int32(70000), i32)

	i64, _, err := Int64Header(msg, "i64")
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), i64)

	blob, _, err := BytesHeader(msg, "blob")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), blob)

	got, _, err := TimestampHeader(msg, "ts")
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	_, _, err = StringHeader(msg, "b")
	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)

	_, ok, err = Int32Header(msg, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMessageError(t *testing.T) {
	var msg eventstream.Message
	msg.Headers.Set(MessageTypeHeader, eventstream.StringValue(ErrorMessageType))
	msg.Headers.Set(ErrorCodeHeader, eventstream.StringValue("InternalError"))
	msg.Headers.Set(ErrorMessageHeader, eventstream.StringValue("oops"))

	e := NewMessageError(msg)
	assert.Equal(t, "event stream error InternalError: oops", e.Error())
	assert.Equal(t, codec.ErrorMetadata{Code: "InternalError", Message: "oops"}, e.Metadata())

	_, err := MessageType(eventstream.Message{})
	assert.Error(t, err)
}
