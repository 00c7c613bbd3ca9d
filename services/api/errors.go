package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUnauthorized is returned for a 401 when there is no refresh token
	// to recover with. The session is left untouched.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrSessionInvalid means the refresh protocol failed and the session
	// has been cleared. Callers should send the user back to the entry view.
	ErrSessionInvalid = errors.New("api: session is no longer valid")
	// ErrMalformedResponse is returned when a response body does not have
	// the expected shape.
	ErrMalformedResponse = errors.New("api: malformed response")
)

// APIError is a non-2xx response other than a handled 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// RejectedError is a 2xx response whose envelope says result:false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "api: request rejected"
	}
	return "api: request rejected: " + e.Message
}

// TransportError wraps network failures and timeouts.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "api: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// UserError carries the text shown to the guest alongside its cause.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Fail wraps err in a UserError whose message comes from UserMessage.
func Fail(err error, fallback string) error {
	return &UserError{Message: UserMessage(err, fallback), Err: err}
}

// UserMessage turns err into text fit for the guest. Server supplied
// messages are shown verbatim; anything else falls back to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) && userErr.Message != "" {
		return userErr.Message
	}
	if errors.Is(err, ErrSessionInvalid) {
		return "Your session has expired. Please sign in again."
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
