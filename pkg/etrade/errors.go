package etrade

import (
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an error reported by the E*TRADE API, either as
// a non-2xx status or as an Error body inside a 200 response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("API error (%d): %s: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
}

// IsNotFound returns true if the error is a 404 Not Found.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 Unauthorized.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true if the error is a 403 Forbidden.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// MissingParameterError reports order fields that failed client-side
// validation. Nothing was sent to the server.
type MissingParameterError struct {
	Missing []string
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	return "missing required order parameters: " + strings.Join(e.Missing, ", ")
}
