// Package apierr defines the JSON error surface shared by every handler.
// Errors are reported as {"error": code, "error_description": description}.
package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes used across the API.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeLoginRequired  = "login_required"
	CodeNotFound       = "not_found"
	CodeServerError    = "server_error"
)

// APIError is a structured API error. It implements the error interface and
// can be written directly to an HTTP response.
type APIError struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// New constructs an APIError with an explicit status code, code, and description.
func New(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// ErrorResponse mirrors the JSON error body for decoding on the client side
// and for swagger documentation.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter or is otherwise malformed.
	ErrInvalidRequest = New(http.StatusBadRequest, CodeInvalidRequest,
		"the request is malformed or missing required parameters")

	// ErrUnauthorized is returned when the authenticated user is not allowed
	// to act on the target resource.
	ErrUnauthorized = New(http.StatusForbidden, CodeUnauthorized,
		"you are not a member of the target agency")

	// ErrLoginRequired is returned on JSON endpoints that need a session.
	// Browser flows redirect to the login page instead of surfacing this.
	ErrLoginRequired = New(http.StatusUnauthorized, CodeLoginRequired,
		"user authentication required")

	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = New(http.StatusNotFound, CodeNotFound,
		"the requested resource does not exist")

	// ErrServerError is returned for persistence and downstream failures.
	// Details are logged server-side, never echoed to the caller.
	ErrServerError = New(http.StatusInternalServerError, CodeServerError,
		"an internal error occurred")
)
