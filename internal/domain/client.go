package domain

import "time"

// Client represents a rider who requests trips.
type Client struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}
