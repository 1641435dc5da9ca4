package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viajes/internal/domain"
	"viajes/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// LocationPayload is a trip endpoint in requests and responses.
type LocationPayload struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID          string          `json:"trip_id"`
	ClientID        string          `json:"client_id"`
	DriverID        string          `json:"driver_id,omitempty"`
	Origin          LocationPayload `json:"origin"`
	Destination     LocationPayload `json:"destination"`
	Fare            float64         `json:"fare"`
	Status          string          `json:"status"`
	DriverStarted   bool            `json:"driver_started"`
	ClientStarted   bool            `json:"client_started"`
	DriverCompleted bool            `json:"driver_completed"`
	ClientCompleted bool            `json:"client_completed"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	Rating          int             `json:"rating,omitempty"`
	Comment         string          `json:"comment,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		TripID:          trip.ID,
		ClientID:        trip.ClientID,
		DriverID:        trip.DriverID,
		Origin:          LocationPayload{Address: trip.Origin.Address, Lat: trip.Origin.Lat, Lng: trip.Origin.Lng},
		Destination:     LocationPayload{Address: trip.Destination.Address, Lat: trip.Destination.Lat, Lng: trip.Destination.Lng},
		Fare:            trip.Fare,
		Status:          string(trip.Status),
		DriverStarted:   trip.DriverStarted,
		ClientStarted:   trip.ClientStarted,
		DriverCompleted: trip.DriverCompleted,
		ClientCompleted: trip.ClientCompleted,
		CancelReason:    trip.CancelReason,
		Rating:          trip.Rating,
		Comment:         trip.Comment,
		CreatedAt:       trip.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       trip.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toTripResponses(trips []*domain.Trip) []TripResponse {
	responses := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		responses = append(responses, toTripResponse(trip))
	}
	return responses
}

// RequestTripRequest is the HTTP request for requesting a trip.
type RequestTripRequest struct {
	ClientID    string          `json:"client_id" binding:"required"`
	Origin      LocationPayload `json:"origin" binding:"required"`
	Destination LocationPayload `json:"destination" binding:"required"`
}

// RequestTrip handles POST /v1/trips
func (h *TripHandler) RequestTrip(c *gin.Context) {
	var req RequestTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.RequestTrip(c.Request.Context(), service.RequestTripRequest{
		ClientID:    req.ClientID,
		Origin:      domain.Location{Address: req.Origin.Address, Lat: req.Origin.Lat, Lng: req.Origin.Lng},
		Destination: domain.Location{Address: req.Destination.Address, Lat: req.Destination.Lat, Lng: req.Destination.Lng},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// DriverActionRequest identifies the driver performing a trip action.
type DriverActionRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

// ClientActionRequest identifies the client performing a trip action.
type ClientActionRequest struct {
	ClientID string `json:"client_id" binding:"required"`
}

// AcceptTrip handles POST /v1/trips/:id/accept
func (h *TripHandler) AcceptTrip(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.AcceptTrip(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// RejectTrip handles POST /v1/trips/:id/reject
func (h *TripHandler) RejectTrip(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.RejectTrip(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// NotifyArrival handles POST /v1/trips/:id/arrival
func (h *TripHandler) NotifyArrival(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.tripService.NotifyArrival(c.Request.Context(), c.Param("id"), req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "arrival notified"})
}

// NotifyDropoff handles POST /v1/trips/:id/dropoff
func (h *TripHandler) NotifyDropoff(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.tripService.NotifyDropoff(c.Request.Context(), c.Param("id"), req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "dropoff notified"})
}

// StartTripByDriver handles POST /v1/trips/:id/start/driver
func (h *TripHandler) StartTripByDriver(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.StartTripByDriver(c.Request.Context(), req.DriverID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// StartTripByClient handles POST /v1/trips/:id/start/client
func (h *TripHandler) StartTripByClient(c *gin.Context) {
	var req ClientActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.StartTripByClient(c.Request.Context(), req.ClientID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CompleteTripByDriver handles POST /v1/trips/:id/complete/driver
func (h *TripHandler) CompleteTripByDriver(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.CompleteTripByDriver(c.Request.Context(), req.DriverID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CompleteTripByClient handles POST /v1/trips/:id/complete/client
func (h *TripHandler) CompleteTripByClient(c *gin.Context) {
	var req ClientActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.CompleteTripByClient(c.Request.Context(), req.ClientID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// CancelTripRequest is the HTTP request for cancelling a trip.
type CancelTripRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Reason   string `json:"reason"`
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	var req CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	trip, err := h.tripService.CancelTrip(c.Request.Context(), c.Param("id"), req.ClientID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// RateTripRequest is the HTTP request for rating a trip.
type RateTripRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
}

// RateTrip handles POST /v1/trips/:id/rating
func (h *TripHandler) RateTrip(c *gin.Context) {
	var req RateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := h.tripService.RateTrip(c.Request.Context(), service.RateTripRequest{
		TripID:   c.Param("id"),
		ClientID: req.ClientID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "trip rated"})
}

// GetTrip handles GET /v1/trips/:id?client_id=...
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTripDetails(c.Request.Context(), c.Param("id"), c.Query("client_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetAvailableTrips handles GET /v1/trips/available
func (h *TripHandler) GetAvailableTrips(c *gin.Context) {
	trips, err := h.tripService.GetAvailableTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponses(trips))
}
