package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusRequested  TripStatus = "REQUESTED"
	TripStatusAccepted   TripStatus = "ACCEPTED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Location is a point on the itinerary. Coordinates are optional;
// an address alone is enough to request a trip.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// Trip represents one transportation request from creation to terminal state.
//
// DriverID is empty until a driver claims the trip, then immutable for the
// trip's remaining lifetime unless the trip is cancelled or rejected, in
// which case it is cleared. The four confirmation flags are monotonic: once
// set they are never reset.
type Trip struct {
	ID          string
	ClientID    string
	DriverID    string
	Origin      Location
	Destination Location
	Fare        float64
	Status      TripStatus

	// Dual-confirmation flags. Both *Started flags must be true to enter
	// IN_PROGRESS; both *Completed flags to enter COMPLETED.
	DriverStarted   bool
	ClientStarted   bool
	DriverCompleted bool
	ClientCompleted bool

	CancelReason string

	// Rating is attached after completion. Zero means not yet rated.
	Rating  int
	Comment string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the trip currently holds its driver
// (ACCEPTED or IN_PROGRESS).
func (t *Trip) Active() bool {
	return t.Status == TripStatusAccepted || t.Status == TripStatusInProgress
}
