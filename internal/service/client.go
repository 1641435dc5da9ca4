package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"viajes/internal/domain"
	"viajes/internal/repository"
)

// ClientService manages client registration and lookup.
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new ClientService.
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// RegisterClientRequest contains the parameters for registering a client.
type RegisterClientRequest struct {
	Name  string
	Phone string
}

// RegisterClient creates a new client.
func (s *ClientService) RegisterClient(ctx context.Context, req RegisterClientRequest) (*domain.Client, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, ErrInvalidProfile
	}

	client := &domain.Client{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetClient retrieves a client by ID.
func (s *ClientService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	return s.clientRepo.GetByID(ctx, clientID)
}

// GetAllClients retrieves all registered clients.
func (s *ClientService) GetAllClients(ctx context.Context) ([]*domain.Client, error) {
	return s.clientRepo.GetAll(ctx)
}
