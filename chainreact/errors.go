package chainreact

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid chainreact configuration")
	// ErrInvalidRequest indicates a request rejected before it was sent
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnexpectedResponse indicates a success response the client could not use
	ErrUnexpectedResponse = errors.New("unexpected response from chainreact API")
)

// ErrorKind tells HTTP failures apart from failures where no usable response was obtained.
type ErrorKind int

const (
	// KindHTTP means the server answered with a non-success status.
	KindHTTP ErrorKind = iota + 1
	// KindNetwork means no usable response was obtained.
	KindNetwork
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every request made through a Transport.
type Error struct {
	Kind ErrorKind
	// StatusCode is zero for KindNetwork.
	StatusCode int
	Message    string
	// Body is the raw response body of an HTTP failure.
	Body      string
	Method    string
	Path      string
	RequestID string
	Err       error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasStatus reports whether the server answered at all.
func (e *Error) HasStatus() bool {
	return e.Kind == KindHTTP && e.StatusCode != 0
}

// IsNotFound checks if the error indicates a not found response
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.IsNotFound()
}

func httpError(method, path, requestID string, status int, body []byte) *Error {
	return &Error{
		Kind:       KindHTTP,
		StatusCode: status,
		Message:    errorMessage(status, body),
		Body:       string(body),
		Method:     method,
		Path:       path,
		RequestID:  requestID,
	}
}

func networkError(method, path, requestID string, err error) *Error {
	return &Error{
		Kind:      KindNetwork,
		Message:   err.Error(),
		Method:    method,
		Path:      path,
		RequestID: requestID,
		Err:       err,
	}
}

// unusable marks a failure to decode a response the server sent successfully.
func unusable(err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	return &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
}
