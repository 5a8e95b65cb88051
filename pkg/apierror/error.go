package apierror

import (
	"encoding/json"
	"net/http"
)

// Error is a structured API error response.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ToJSON converts the error to the wire envelope.
func (e *Error) ToJSON() []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    e.Code,
			"message": e.Message,
		},
	})
	return data
}

func newError(status int, code, message string) *Error {
	return &Error{StatusCode: status, Code: code, Message: message}
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *Error {
	return newError(http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message string) *Error {
	if message == "" {
		message = "access denied"
	}
	return newError(http.StatusForbidden, "FORBIDDEN", message)
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	if message == "" {
		message = "resource not found"
	}
	return newError(http.StatusNotFound, "NOT_FOUND", message)
}

// InternalError creates a 500 Internal Server Error.
func InternalError(message string) *Error {
	if message == "" {
		message = "an unexpected error occurred"
	}
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// ServiceUnavailable creates a 503 Service Unavailable error.
func ServiceUnavailable(message string) *Error {
	if message == "" {
		message = "service temporarily unavailable"
	}
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
}
