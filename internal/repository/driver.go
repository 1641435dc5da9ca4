package repository

import (
	"context"

	"viajes/internal/domain"
)

// DriverRepository is the driver registry: the single source of truth for
// whether a driver may be claimed. The trip engine must never allocate a
// driver without going through TryClaim.
type DriverRepository interface {
	// Create adds a new driver profile, AVAILABLE by default.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// TryClaim atomically moves the driver AVAILABLE -> ON_TRIP.
	// It returns false, without error, if the driver is not currently
	// AVAILABLE, and ErrNotFound if the driver does not exist.
	TryClaim(ctx context.Context, id string) (bool, error)

	// Release returns the driver to AVAILABLE. Idempotent: releasing an
	// already-available driver is a no-op.
	Release(ctx context.Context, id string) error

	// SetAvailability moves the driver between AVAILABLE and OFFLINE.
	// Returns ErrDriverOnTrip if the driver is currently ON_TRIP; the
	// allocation is owned by the trip holding the driver.
	SetAvailability(ctx context.Context, id string, availability domain.DriverAvailability) error
}
