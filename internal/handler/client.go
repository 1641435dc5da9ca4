package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viajes/internal/domain"
	"viajes/internal/service"
)

// ClientHandler handles HTTP requests for clients.
type ClientHandler struct {
	clientService *service.ClientService
	tripService   *service.TripService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService *service.ClientService, tripService *service.TripService) *ClientHandler {
	return &ClientHandler{clientService: clientService, tripService: tripService}
}

// ClientResponse is the HTTP response for client operations.
type ClientResponse struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func toClientResponse(client *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID: client.ID,
		Name:     client.Name,
		Phone:    client.Phone,
	}
}

// RegisterClientRequest is the HTTP request for registering a client.
type RegisterClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// Register handles POST /v1/clients
func (h *ClientHandler) Register(c *gin.Context) {
	var req RegisterClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	client, err := h.clientService.RegisterClient(c.Request.Context(), service.RegisterClientRequest{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toClientResponse(client))
}

// Get handles GET /v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toClientResponse(client))
}

// GetAll handles GET /v1/clients
func (h *ClientHandler) GetAll(c *gin.Context) {
	clients, err := h.clientService.GetAllClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		response = append(response, toClientResponse(client))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetHistory handles GET /v1/clients/:id/trips
func (h *ClientHandler) GetHistory(c *gin.Context) {
	trips, err := h.tripService.GetClientHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponses(trips))
}
