package repository

import "context"

// Atomic runs a mutation against trip and driver repositories bound to one
// atomic unit: either every write inside fn commits, or none do. The trip
// engine uses it for every transition that touches both a trip and the
// driver registry, so a claim can never outlive a failed trip write (or
// the reverse).
type Atomic interface {
	Run(ctx context.Context, fn func(trips TripRepository, drivers DriverRepository) error) error
}
