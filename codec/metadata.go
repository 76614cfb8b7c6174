package codec

import (
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorMetadata is the code/message pair recovered from an error response,
// plus whatever request identification the protocol carried.
type ErrorMetadata struct {
	Code      string
	Message   string
	RequestID string
}

// String renders the metadata for display.
func (m ErrorMetadata) String() string {
	var sb strings.Builder

	if m.Code != "" {
		sb.WriteString(m.Code)
	} else {
		sb.WriteString("Unhandled")
	}

	if m.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(m.Message)
	}

	if m.RequestID != "" {
		fmt.Fprintf(&sb, " (request id %s)", m.RequestID)
	}

	return sb.String()
}

// SanitizeErrorCode strips the namespace and the trailing URI that some
// protocols attach to error codes ("ns#Code:http://...").
func SanitizeErrorCode(code string) string {
	if i := strings.IndexByte(code, ':'); i >= 0 {
		code = code[:i]
	}

	if i := strings.LastIndexByte(code, '#'); i >= 0 {
		code = code[i+1:]
	}

	return code
}

//go:generate go tool stringer -type=RetryKind -linecomment -output=retrykind_string.go

// RetryKind classifies a modeled error for retry purposes.
type RetryKind int

const (
	// RetryNone means the error is not retryable.
	RetryNone RetryKind = iota // none
	// RetryServerError is a retryable server fault.
	RetryServerError // server_error
	// RetryClientError is a retryable client fault.
	RetryClientError // client_error
	// RetryThrottling is a retryable throttling error.
	RetryThrottling // throttling
)

// ClassifyRetry picks the retry kind of a retryable error from its throttling
// flag and structural fault.
func ClassifyRetry(throttling bool, fault smithy.ErrorFault) RetryKind {
	switch {
	case throttling:
		return RetryThrottling
	case fault == smithy.FaultServer:
		return RetryServerError
	default:
		return RetryClientError
	}
}

// MetadataProvider is implemented by every generated error.
type MetadataProvider interface {
	Metadata() ErrorMetadata
}

// Retryable is implemented by generated errors that can classify themselves.
type Retryable interface {
	RetryKind() RetryKind
}

//go:generate go tool stringer -type=TransportErrorKind -linecomment -output=transporterrorkind_string.go

// TransportErrorKind distinguishes the layers a TransportError can come from.
type TransportErrorKind int

const (
	// TransportTimeout is a timeout before a response arrived.
	TransportTimeout TransportErrorKind = iota // timeout
	// TransportDispatch is a failure sending the request.
	TransportDispatch // dispatch
	// TransportResponse is a failure reading the response.
	TransportResponse // response
	// TransportServiceFault is a well-formed error response from the service.
	TransportServiceFault // service_fault
)

// TransportError is the transport-level wrapper that generated operation
// error conversions accept.
type TransportError struct {
	Kind TransportErrorKind
	// Meta is set for TransportServiceFault.
	Meta ErrorMetadata
	// Err is the service error already parsed for TransportServiceFault, or
	// the raw transport failure otherwise.
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport " + e.Kind.String() + " error: " + e.Meta.String()
	}

	return "transport " + e.Kind.String() + " error: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
