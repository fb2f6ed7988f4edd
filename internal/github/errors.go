package github

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the closed error taxonomy for GitHub operations.
// Raw transport failures are mapped onto this set before they leave the
// package.
var (
	// ErrNotAuthenticated is returned before any request when no access
	// token is available.
	ErrNotAuthenticated = errors.New("github: not authenticated")

	// ErrInvalidConfiguration is returned before any request when the
	// repository owner or name is missing.
	ErrInvalidConfiguration = errors.New("github: repository owner and name are required")

	// ErrInvalidResponse is returned when a success response cannot be
	// decoded.
	ErrInvalidResponse = errors.New("github: invalid response")

	// ErrUnauthorized maps HTTP 401.
	ErrUnauthorized = errors.New("github: unauthorized")

	// ErrForbidden maps HTTP 403.
	ErrForbidden = errors.New("github: forbidden")

	// ErrNotFound maps HTTP 404.
	ErrNotFound = errors.New("github: repository or issue not found")

	// ErrNotSupported is returned by NoopClient for every issue operation.
	ErrNotSupported = errors.New("github: issue operations not supported")
)

// ValidationError maps HTTP 400/422 rejections, carrying the API's message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("github: validation failed: %s", e.Message)
}

// StatusError is the catch-all for status codes outside the mapped set.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("github: unexpected status %d: %s", e.Status, e.Message)
}
