package codec

import (
	"errors"
	"io"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeError_Message(t *testing.T) {
	err := NewDecodeError(12, "expected %s", "string")
	assert.Equal(t, "expected string at offset 12", err.Error())

	err = &DecodeError{Reason: "truncated", Offset: -1, Err: io.ErrUnexpectedEOF}
	assert.Equal(t, "truncated: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWrapDecodeError_KeepsExisting(t *testing.T) {
	inner := MissingFieldError("Foo", "Name")
	wrapped := WrapDecodeError(3, "outer", inner)
	assert.Same(t, inner, wrapped)

	assert.NoError(t, WrapDecodeError(0, "nothing", nil))

	plain := WrapDecodeError(7, "bad literal", io.EOF)
	var de *DecodeError
	require.ErrorAs(t, plain, &de)
	assert.Equal(t, int64(7), de.Offset)
}

func TestSanitizeErrorCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Throttled", "Throttled"},
		{"example.weather#Throttled", "Throttled"},
		{"example.weather#Throttled:http://internal.example.com/", "Throttled"},
		{"Throttled:http://internal", "Throttled"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeErrorCode(tt.in))
		})
	}
}

func TestClassifyRetry(t *testing.T) {
	assert.Equal(t, RetryThrottling, ClassifyRetry(true, smithy.FaultClient))
	assert.Equal(t, RetryServerError, ClassifyRetry(false, smithy.FaultServer))
	assert.Equal(t, RetryClientError, ClassifyRetry(false, smithy.FaultClient))
	assert.Equal(t, "throttling", RetryThrottling.String())
	assert.Equal(t, "server_error", RetryServerError.String())
	assert.Equal(t, "service_fault", TransportServiceFault.String())
	assert.Equal(t, "RetryKind(7)", RetryKind(7).String())
}

func TestTransportError_Unwrap(t *testing.T) {
	src := errors.New("boom")
	err := &TransportError{Kind: TransportServiceFault, Err: src}
	assert.ErrorIs(t, err, src)
	assert.Contains(t, err.Error(), "service_fault")

	noSrc := &TransportError{Kind: TransportTimeout, Meta: ErrorMetadata{Code: "X"}}
	assert.Equal(t, "transport timeout error: X", noSrc.Error())
}

func TestErrorMetadata_String(t *testing.T) {
	assert.Equal(t, "Unhandled", ErrorMetadata{}.String())
	assert.Equal(t, "Code: msg (request id r1)",
		ErrorMetadata{Code: "Code", Message: "msg", RequestID: "r1"}.String())
}
