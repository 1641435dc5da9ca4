package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"viajes/internal/repository"
	"viajes/internal/service"
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

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidClientID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidItinerary),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidProfile):
		return http.StatusBadRequest

	// Authorization errors - the caller is not the trip's party
	case errors.Is(err, service.ErrNotTripClient),
		errors.Is(err, service.ErrNotTripDriver):
		return http.StatusForbidden

	// Conflict errors - a state-transition precondition failed
	case errors.Is(err, service.ErrTripNotAvailable),
		errors.Is(err, service.ErrDriverNotAvailable),
		errors.Is(err, service.ErrDriverOnTrip),
		errors.Is(err, service.ErrTripNotAccepted),
		errors.Is(err, service.ErrTripStarted),
		errors.Is(err, service.ErrTripNotInProgress),
		errors.Is(err, service.ErrTripCompleted),
		errors.Is(err, service.ErrTripCancelled),
		errors.Is(err, service.ErrTripNotCompleted),
		errors.Is(err, service.ErrTripAlreadyRated):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
