package schemas

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a normalized failure so UI-facing code never has to
// inspect raw transport errors.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuthFailed ErrorKind = "auth_failed"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindServer     ErrorKind = "server"
	KindNetwork    ErrorKind = "network"
)

// APIError is the single error shape every transport or server failure is
// normalized into before it reaches UI-facing code.
// It implements the standard Go error interface.
type APIError struct {
	Kind   ErrorKind `json:"kind"`
	Status int       `json:"status,omitempty"` // HTTP status code, 0 for network failures
	Detail string    `json:"detail"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// --- Helper Constructors ---

// NewValidationError creates an error for malformed local input.
// It never corresponds to a network round-trip.
func NewValidationError(detail string) *APIError {
	return &APIError{Kind: KindValidation, Detail: detail}
}

// NewAuthFailedError creates an invalid-credentials error. The detail must
// not leak which of email/password was wrong.
func NewAuthFailedError() *APIError {
	return &APIError{Kind: KindAuthFailed, Status: http.StatusUnauthorized, Detail: "invalid email or password"}
}

// NewConflictError creates a duplicate-resource error.
func NewConflictError(detail string, status int) *APIError {
	return &APIError{Kind: KindConflict, Status: status, Detail: detail}
}

// NewNotFoundError creates an absent-entity error.
func NewNotFoundError(detail string) *APIError {
	return &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Detail: detail}
}

// NewServerError creates a generic server-fault error.
func NewServerError(detail string, status int) *APIError {
	return &APIError{Kind: KindServer, Status: status, Detail: detail}
}

// NewNetworkError creates an error for a request that never produced a
// response. Shown with a retry-oriented message, never silently swallowed.
func NewNetworkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Detail: fmt.Sprintf("cannot reach server: %v", err)}
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == kind
}

// duplicateMarkers are the server-supplied fragments that signal a
// uniqueness-constraint violation rather than a genuine fault. The backend
// leaks its SQLite constraint error verbatim on duplicates.
var duplicateMarkers = []string{
	"SQLITE_CONSTRAINT",
	"already exists",
	"already enrolled",
}

// HasDuplicateMarker reports whether a server-supplied detail string carries
// a known duplicate-resource marker.
func HasDuplicateMarker(detail string) bool {
	lower := strings.ToLower(detail)
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
