package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viajes/internal/domain"
	"viajes/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
	tripService   *service.TripService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, tripService *service.TripService) *DriverHandler {
	return &DriverHandler{driverService: driverService, tripService: tripService}
}

// DriverResponse is the HTTP response for driver operations.
type DriverResponse struct {
	DriverID      string `json:"driver_id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number,omitempty"`
	Availability  string `json:"availability"`
}

func toDriverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		DriverID:      driver.ID,
		Name:          driver.Name,
		Phone:         driver.Phone,
		LicenseNumber: driver.LicenseNumber,
		Availability:  string(driver.Availability),
	}
}

// RegisterDriverRequest is the HTTP request for registering a driver.
type RegisterDriverRequest struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	LicenseNumber string `json:"license_number"`
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), service.RegisterDriverRequest{
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.GetAllDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		response = append(response, toDriverResponse(driver))
	}
	respondJSON(c, http.StatusOK, response)
}

// SetOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) SetOffline(c *gin.Context) {
	if err := h.driverService.SetOffline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"message": "driver is offline"})
}

// SetAvailable handles POST /v1/drivers/:id/available
func (h *DriverHandler) SetAvailable(c *gin.Context) {
	if err := h.driverService.SetAvailable(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"message": "driver is available"})
}

// GetAssignedTrips handles GET /v1/drivers/:id/trips
func (h *DriverHandler) GetAssignedTrips(c *gin.Context) {
	trips, err := h.tripService.GetAssignedTrips(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponses(trips))
}

// DriverHistoryResponse is the HTTP response for a driver's trip history.
type DriverHistoryResponse struct {
	Trips       []TripResponse `json:"trips"`
	TotalIncome float64        `json:"total_income"`
}

// GetHistory handles GET /v1/drivers/:id/history
func (h *DriverHandler) GetHistory(c *gin.Context) {
	history, err := h.tripService.GetDriverHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DriverHistoryResponse{
		Trips:       toTripResponses(history.Trips),
		TotalIncome: history.TotalIncome,
	})
}
