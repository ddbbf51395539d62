package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetByID when no row matches.
var ErrNotFound = errors.New("gateway: not found")

// APIError represents a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an APIError with
// the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}
