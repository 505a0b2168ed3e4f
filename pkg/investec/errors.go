package investec

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation is returned before any network call when a required argument is missing
	ErrValidation = errors.New("missing required parameters")

	// ErrNotFound is returned for any 404 from a data endpoint
	ErrNotFound = errors.New("resource not found")
)

// AuthenticationError is returned when the identity endpoint rejects the client credentials
type AuthenticationError struct {
	StatusCode int
	Status     string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, e.Status)
}

// HTTPError is returned for a non-200, non-404 response to a data request
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API request failed (status %d): %s", e.StatusCode, e.Status)
}

// TimeoutError is returned when a request runs past the client timeout
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out after %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a 200 response body is not valid JSON for the result type
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to unmarshal response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func validationError(op string) error {
	return fmt.Errorf("%s: %w", op, ErrValidation)
}
