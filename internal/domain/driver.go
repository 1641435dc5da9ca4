package domain

// DriverAvailability represents whether a driver can be claimed for a trip.
type DriverAvailability string

const (
	DriverAvailable DriverAvailability = "AVAILABLE"
	DriverOnTrip    DriverAvailability = "ON_TRIP"
	DriverOffline   DriverAvailability = "OFFLINE"
)

// Driver represents a driver profile in the system.
// Availability is mutated only through the driver registry operations,
// never written directly by callers.
type Driver struct {
	ID            string
	Name          string
	Phone         string
	LicenseNumber string
	Availability  DriverAvailability
}
