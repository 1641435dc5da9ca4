package repository

import (
	"context"

	"viajes/internal/domain"
)

// TripRepository defines the persistence operations for trips.
// Implementations must hand out snapshots: a returned *domain.Trip is a
// copy the caller may mutate freely until it is passed back to Update.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// Update replaces an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// ClaimForDriver binds trip.DriverID to a trip that is still REQUESTED
	// and unclaimed in the store, writing status and timestamp from trip.
	// Returns ErrConflict when another writer claimed the trip first, so
	// the precondition holds even against writers this process never saw.
	ClaimForDriver(ctx context.Context, trip *domain.Trip) error

	// GetByStatus retrieves all trips currently in the given status,
	// newest first.
	GetByStatus(ctx context.Context, status domain.TripStatus) ([]*domain.Trip, error)

	// GetByClientID retrieves all trips requested by a client, newest first.
	GetByClientID(ctx context.Context, clientID string) ([]*domain.Trip, error)

	// GetByDriverID retrieves all trips that ever referenced a driver,
	// newest first.
	GetByDriverID(ctx context.Context, driverID string) ([]*domain.Trip, error)
}
