package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"

	// Authorization errors
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotTeamMember = "NOT_TEAM_MEMBER"

	// Validation errors
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeReasonRequired  = "REJECTION_REASON_REQUIRED"
	ErrCodeInvalidManager  = "INVALID_MANAGER"
	ErrCodeInvalidMonth    = "INVALID_MONTH"
	ErrCodeUnsupportedType = "UNSUPPORTED_FORMAT"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	// Workflow errors
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeBusy              = "TIMESHEET_BUSY"
	ErrCodeActionFailed      = "ACTION_FAILED"

	// Service errors
	ErrCodeFetchFailed   = "FETCH_FAILED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RowDetails ties an error to the timesheet or user it was raised for
type RowDetails struct {
	ID uint64 `json:"id"`
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// FetchFailed sends a 500 response for a page-level load failure
func FetchFailed(c *gin.Context, message string) {
	if message == "" {
		message = "Failed to load data"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeFetchFailed, message))
}

// RowError sends an error raised by an action on a single row
func RowError(c *gin.Context, statusCode int, code, message string, id uint64) {
	RespondWithError(c, statusCode, NewAPIErrorWithDetails(code, message, RowDetails{ID: id}))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}
