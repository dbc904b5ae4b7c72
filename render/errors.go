package render

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfiguration is returned when the client is constructed without a
	// usable API key or service ID.
	ErrConfiguration = errors.New("render: invalid client configuration")

	// ErrInvalidArgument is returned for bad per-call input. No request is made.
	ErrInvalidArgument = errors.New("render: invalid argument")

	// ErrUnrecognizedResponse is returned by ListLogs together with an empty
	// sequence when the body is valid JSON but not a list of log entries.
	ErrUnrecognizedResponse = errors.New("render: unrecognized response")
)

// TransportError wraps failures to reach the API at all: DNS, refused
// connections, TLS, timeouts and cancelled contexts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("render: %s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthenticationError is returned when the API answers 401 or 403.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("render: authentication failed (%d %s)", e.StatusCode, http.StatusText(e.StatusCode))
}

// RemoteError is returned for any other non-2xx answer.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("render: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("render: request failed (%d): %s", e.StatusCode, truncate(e.Body, 200))
}

// DecodingError is returned when a structured body was expected but could not
// be parsed. Body holds the raw payload so callers can show it.
type DecodingError struct {
	Op   string
	Body string
	Err  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("render: %s: decode response: %v", e.Op, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// IsPermanent reports whether repeating the same call cannot succeed without
// a change on the caller's side.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrInvalidArgument) {
		return true
	}
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return true
	}
	var decErr *DecodingError
	if errors.As(err, &decErr) {
		return true
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		// 408 and 429 are worth another try, other 4xx are not
		switch remoteErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return false
		}
		return remoteErr.StatusCode >= 400 && remoteErr.StatusCode < 500
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
