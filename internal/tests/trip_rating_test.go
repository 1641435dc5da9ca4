package tests

import (
	"context"
	"errors"
	"testing"

	"viajes/internal/service"
)

// ──────────────────────────────────────────────
// 5. RATING
// ──────────────────────────────────────────────

// completedTrip runs the full happy path through completion.
func completedTrip(t *testing.T) *service.TripService {
	t.Helper()

	engine, _, _, _ := inProgressTrip(t)
	ctx := context.Background()
	if _, err := engine.CompleteTripByDriver(ctx, "driver-1", "trip-1"); err != nil {
		t.Fatalf("driver complete failed: %v", err)
	}
	if _, err := engine.CompleteTripByClient(ctx, "client-1", "trip-1"); err != nil {
		t.Fatalf("client complete failed: %v", err)
	}
	return engine
}

func TestRateTrip_CompletedTripOnce(t *testing.T) {
	t.Parallel()

	engine := completedTrip(t)
	ctx := context.Background()

	err := engine.RateTrip(ctx, service.RateTripRequest{
		TripID:   "trip-1",
		ClientID: "client-1",
		Rating:   5,
		Comment:  "great ride",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trip, err := engine.GetTripDetails(ctx, "trip-1", "client-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if trip.Rating != 5 || trip.Comment != "great ride" {
		t.Errorf("rating not persisted: %d %q", trip.Rating, trip.Comment)
	}

	// Second rating attempt conflicts.
	err = engine.RateTrip(ctx, service.RateTripRequest{TripID: "trip-1", ClientID: "client-1", Rating: 1})
	if !errors.Is(err, service.ErrTripAlreadyRated) {
		t.Errorf("expected ErrTripAlreadyRated, got %v", err)
	}
	if trip, _ := engine.GetTripDetails(ctx, "trip-1", "client-1"); trip.Rating != 5 {
		t.Errorf("second attempt overwrote the rating: %d", trip.Rating)
	}
}

func TestRateTrip_OnlyCompletedTrips(t *testing.T) {
	t.Parallel()

	engine, _, _, _ := inProgressTrip(t)

	err := engine.RateTrip(context.Background(), service.RateTripRequest{
		TripID:   "trip-1",
		ClientID: "client-1",
		Rating:   4,
	})
	if !errors.Is(err, service.ErrTripNotCompleted) {
		t.Errorf("expected ErrTripNotCompleted, got %v", err)
	}
}

func TestRateTrip_BoundsAndOwnership(t *testing.T) {
	t.Parallel()

	engine := completedTrip(t)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		err := engine.RateTrip(ctx, service.RateTripRequest{TripID: "trip-1", ClientID: "client-1", Rating: rating})
		if !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}

	err := engine.RateTrip(ctx, service.RateTripRequest{TripID: "trip-1", ClientID: "client-9", Rating: 3})
	if !errors.Is(err, service.ErrNotTripClient) {
		t.Errorf("expected ErrNotTripClient, got %v", err)
	}
}
