package facturio

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure.
type Kind string

const (
	// KindNetwork means no response reached the client at all.
	KindNetwork Kind = "network-error"
	// KindProtocol means the response arrived but was missing or malformed
	// in a way the client cannot work around.
	KindProtocol Kind = "protocol-error"
	// KindServer means the backend returned a structured error response.
	KindServer Kind = "server-error"
	// KindValidation means a client-side precondition failed; the request
	// never left the process.
	KindValidation Kind = "validation-error"
)

// Error represents an API error.
type Error struct {
	Kind    Kind
	Code    string // backend error code, or "http/<status>" when none supplied
	Status  int    // HTTP status, 0 when no response arrived
	Message string
	Details string
	Op      string // operation that failed (e.g., "GetInvoice")
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsNotFound reports whether err indicates a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	return false
}

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool {
	return KindOf(err) == KindNetwork
}

// IsValidation reports whether err is a client-side precondition failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// wrapError wraps an error with an operation name if it's an API error.
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		apiErr.Op = op
		return apiErr
	}
	return fmt.Errorf("%s: %w", op, err)
}
