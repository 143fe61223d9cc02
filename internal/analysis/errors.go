package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of an analysis failure
type ErrorType string

const (
	// ErrTypeServer indicates the service answered with a failure status
	ErrTypeServer ErrorType = "server"

	// ErrTypeMalformed indicates a success status with an unusable body
	ErrTypeMalformed ErrorType = "malformed_response"

	// ErrTypeTransport indicates no response could be obtained
	ErrTypeTransport ErrorType = "transport"

	// ErrTypeInternal indicates a local failure while building the request
	ErrTypeInternal ErrorType = "internal"
)

const (
	// MsgInvalidResponse is shown when a 2xx body lacks success/data
	MsgInvalidResponse = "Invalid response format from server"

	// MsgAnalyzeFailed is the fallback when a failure body carries no detail
	MsgAnalyzeFailed = "Failed to analyze chat file"

	// MsgUnexpected is shown for failures that carry no text at all
	MsgUnexpected = "An error occurred while processing the file"
)

// ErrRequestInFlight is returned when an upload is started while another is pending
var ErrRequestInFlight = errors.New("an analysis request is already in progress")

// Error is a classified analysis failure
type Error struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message is the human-readable text shown to the user
	Message string `json:"message"`

	// StatusCode for failures that produced an HTTP response
	StatusCode int `json:"status_code,omitempty"`

	// Cause is the underlying error, if any
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("type=%s", e.Type)}

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches analysis errors by type
func (e *Error) Is(target error) bool {
	if ae, ok := target.(*Error); ok {
		return e.Type == ae.Type
	}
	return false
}

// NewServerError creates an error for a non-2xx response
func NewServerError(statusCode int, message string) *Error {
	return &Error{Type: ErrTypeServer, StatusCode: statusCode, Message: message}
}

// NewMalformedError creates an error for an unusable 2xx body
func NewMalformedError(statusCode int, cause error) *Error {
	return &Error{Type: ErrTypeMalformed, StatusCode: statusCode, Message: MsgInvalidResponse, Cause: cause}
}

// NewTransportError creates a connectivity error naming the expected service address
func NewTransportError(serviceURL string, cause error) *Error {
	return &Error{
		Type:    ErrTypeTransport,
		Message: ConnectivityMessage(serviceURL),
		Cause:   cause,
	}
}

// NewInternalError creates an error for local failures; the cause's own text is shown
func NewInternalError(cause error) *Error {
	message := MsgUnexpected
	if cause != nil && cause.Error() != "" {
		message = cause.Error()
	}
	return &Error{Type: ErrTypeInternal, Message: message, Cause: cause}
}

// ConnectivityMessage is the fixed message for transport failures
func ConnectivityMessage(serviceURL string) string {
	return "Unable to connect to the server. Please make sure the backend is running on " + serviceURL
}

// UserMessage extracts the text to show for any error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnexpected
}

// IsTransportError checks if an error is a connectivity failure
func IsTransportError(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Type == ErrTypeTransport
}

// IsServerError checks if an error was reported by the service
func IsServerError(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Type == ErrTypeServer
}

// IsMalformedError checks if an error is an invalid success body
func IsMalformedError(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Type == ErrTypeMalformed
}
