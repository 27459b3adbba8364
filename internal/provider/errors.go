package provider

import (
	"errors"
	"fmt"
)

var (
	// Validation errors, rejected before any network call
	ErrEmptyQuery   = errors.New("empty search query")
	ErrQueryTooLong = errors.New("query too long")

	// Registry errors
	ErrProviderNotFound  = errors.New("provider not found")
	ErrOperationNotFound = errors.New("operation not found")

	// Configuration errors
	ErrMissingCredentials = errors.New("missing credentials")
)

// Error wraps a provider-specific failure with its origin and, when the
// failure came from an upstream HTTP response, the status code.
type Error struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// upstreamError formats a non-2xx upstream response, keeping at most
// 200 bytes of the body for diagnostics.
func upstreamError(name string, status int, body string) *Error {
	msg := fmt.Sprintf("%s returned %d", name, status)
	if body = truncate(body, 200); body != "" {
		msg += " " + body
	}
	return &Error{
		Provider: name,
		Status:   status,
		Message:  msg,
	}
}

// transportError formats a network or timeout failure.
func transportError(name string, err error) *Error {
	return &Error{
		Provider: name,
		Message:  fmt.Sprintf("%s request failed", name),
		Err:      err,
	}
}

// parseError formats a malformed upstream response.
func parseError(name string, err error) *Error {
	return &Error{
		Provider: name,
		Message:  fmt.Sprintf("%s response parsing failed", name),
		Err:      err,
	}
}

// resultMessage flattens an error into the short diagnostic string
// carried across the provider boundary by a Result.
func resultMessage(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		if pe.Err != nil {
			return fmt.Sprintf("%s: %v", pe.Message, pe.Err)
		}
		return pe.Message
	}
	return err.Error()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
