package repository

import (
	"context"

	"viajes/internal/domain"
)

// ClientRepository defines the read/write surface of the client directory.
// The trip engine only reads from it.
type ClientRepository interface {
	// Create adds a new client.
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by ID.
	GetByID(ctx context.Context, id string) (*domain.Client, error)

	// GetByPhone retrieves a client by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)

	// GetAll retrieves all clients.
	GetAll(ctx context.Context) ([]*domain.Client, error)
}
