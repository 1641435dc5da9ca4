package service

import "errors"

// Validation errors (bad input, mapped to 400).
var (
	// ErrInvalidClientID is returned when a client ID is empty.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidDriverID is returned when a driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidItinerary is returned when origin or destination is missing.
	ErrInvalidItinerary = errors.New("origin and destination are required")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidProfile is returned when registration fields are missing.
	ErrInvalidProfile = errors.New("name and phone are required")
)

// Authorization errors (caller is not the entitled party, mapped to 403).
var (
	// ErrNotTripClient is returned when the caller is not the trip's client.
	ErrNotTripClient = errors.New("trip does not belong to this client")

	// ErrNotTripDriver is returned when the caller is not the trip's
	// assigned driver.
	ErrNotTripDriver = errors.New("trip is not assigned to this driver")
)

// Conflict errors (state-transition precondition violated, mapped to 409).
var (
	// ErrTripNotAvailable is returned when a trip cannot be claimed:
	// wrong status, or another driver already holds it.
	ErrTripNotAvailable = errors.New("trip is not available to be accepted")

	// ErrDriverNotAvailable is returned when the driver cannot take a trip.
	ErrDriverNotAvailable = errors.New("driver is not available to accept trips")

	// ErrDriverOnTrip is returned when an availability change is refused
	// because the driver is allocated to an active trip.
	ErrDriverOnTrip = errors.New("driver is currently on a trip")

	// ErrTripNotAccepted is returned when an operation needs an ACCEPTED trip.
	ErrTripNotAccepted = errors.New("trip has not been accepted")

	// ErrTripStarted is returned when rejecting a trip that already started.
	ErrTripStarted = errors.New("trip has already started")

	// ErrTripNotInProgress is returned when completion is confirmed before
	// the trip started.
	ErrTripNotInProgress = errors.New("trip is not in progress")

	// ErrTripCompleted is returned when mutating an already-completed trip.
	ErrTripCompleted = errors.New("trip is already completed")

	// ErrTripCancelled is returned when mutating an already-cancelled trip.
	ErrTripCancelled = errors.New("trip is already cancelled")

	// ErrTripNotCompleted is returned when rating a trip that has not
	// completed.
	ErrTripNotCompleted = errors.New("only completed trips can be rated")

	// ErrTripAlreadyRated is returned on a second rating attempt.
	ErrTripAlreadyRated = errors.New("trip has already been rated")
)
