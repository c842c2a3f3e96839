package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/repository"
	"campusride/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// actingUser returns the authenticated user's ID. Authentication itself is
// terminated upstream; the gateway forwards the identity in a header.
func actingUser(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrMissingCoordinates),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrMissingRequiredFields),
		errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrInvalidSeatCount),
		errors.Is(err, service.ErrInvalidAction):
		return http.StatusBadRequest

	// Conflict errors - caller should refresh state before retrying
	case errors.Is(err, service.ErrAlreadyRequested),
		errors.Is(err, service.ErrNoSeatsAvailable),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrInvalidOTP):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrNotRideOwner),
		errors.Is(err, service.ErrOwnRide),
		errors.Is(err, service.ErrDriverNotVerified):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
