package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDriverOnTrip is returned when an availability change is refused
	// because the driver is currently allocated to a trip.
	ErrDriverOnTrip = errors.New("driver is on a trip")

	// ErrConflict is returned when a guarded write loses to a concurrent
	// writer: the row no longer satisfies the write's precondition.
	ErrConflict = errors.New("concurrent update conflict")
)
