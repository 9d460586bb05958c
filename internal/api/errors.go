// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/session"
	"github.com/siege-game/backend/internal/storage"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for level build failures
const (
	CodeUnknownTileID   = "UNKNOWN_TILE_ID"
	CodeUnknownTileType = "UNKNOWN_TILE_TYPE"
	CodeMalformedGrid   = "MALFORMED_GRID"
	CodeLevelNotFound   = "LEVEL_NOT_FOUND"
)

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewBuildError maps a level load or build failure to an API error.
// Errors outside the build taxonomy become 500s.
func NewBuildError(err error) *APIError {
	apiErr := &APIError{
		Status:  http.StatusUnprocessableEntity,
		Message: err.Error(),
	}
	switch {
	case errors.Is(err, models.ErrUnknownTileID):
		apiErr.Code = CodeUnknownTileID
	case errors.Is(err, models.ErrUnknownTileType):
		apiErr.Code = CodeUnknownTileType
	case errors.Is(err, models.ErrMalformedGrid):
		apiErr.Code = CodeMalformedGrid
	case errors.Is(err, storage.ErrLevelNotFound):
		apiErr.Status = http.StatusNotFound
		apiErr.Code = CodeLevelNotFound
	default:
		return NewInternalError("failed to build level", err)
	}
	return apiErr
}

// NewSessionError maps session manager errors.
func NewSessionError(err error, id string) *APIError {
	if errors.Is(err, session.ErrSessionNotFound) {
		return NewNotFoundError("session", id)
	}
	return NewInternalError("session operation failed", err)
}

// showErrorDetails controls whether unexpected errors expose their message.
var showErrorDetails = true

// SetShowErrorDetails toggles detail output for unexpected errors.
func SetShowErrorDetails(show bool) {
	showErrorDetails = show
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if showErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.Status)
		return
	}
	_ = c.JSON(apiErr.Status, apiErr)
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
