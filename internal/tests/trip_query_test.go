package tests

import (
	"context"
	"errors"
	"testing"

	"viajes/internal/domain"
	"viajes/internal/service"
)

// ──────────────────────────────────────────────
// 6. QUERIES AND HISTORY
// ──────────────────────────────────────────────

func TestGetAvailableTrips_OnlyRequested(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	addRequestedTrip(tripRepo, "trip-2", "client-1")
	tripRepo.AddTrip(&domain.Trip{ID: "trip-3", ClientID: "client-1", Status: domain.TripStatusCancelled})

	engine := newEngine(tripRepo, NewMockDriverRepository(), clientRepo, NewRecordingSink())

	trips, err := engine.GetAvailableTrips(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("expected 2 available trips, got %d", len(trips))
	}
	for _, trip := range trips {
		if trip.Status != domain.TripStatusRequested {
			t.Errorf("non-requested trip %s in the board", trip.ID)
		}
	}
	// Newest first.
	if trips[0].ID != "trip-2" {
		t.Errorf("expected newest trip first, got %s", trips[0].ID)
	}
}

func TestGetAssignedTrips_ExcludesTerminal(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{ID: "trip-1", ClientID: "client-1", DriverID: "driver-1", Status: domain.TripStatusAccepted})
	tripRepo.AddTrip(&domain.Trip{ID: "trip-2", ClientID: "client-1", DriverID: "driver-1", Status: domain.TripStatusCompleted, Fare: 50})

	engine := newEngine(tripRepo, NewMockDriverRepository(), NewMockClientRepository(), NewRecordingSink())

	trips, err := engine.GetAssignedTrips(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != "trip-1" {
		t.Fatalf("expected only the active trip, got %d trips", len(trips))
	}
}

func TestGetDriverHistory_SumsCompletedFares(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{ID: "trip-1", DriverID: "driver-1", Status: domain.TripStatusCompleted, Fare: 50})
	tripRepo.AddTrip(&domain.Trip{ID: "trip-2", DriverID: "driver-1", Status: domain.TripStatusCompleted, Fare: 72.5})
	tripRepo.AddTrip(&domain.Trip{ID: "trip-3", DriverID: "driver-1", Status: domain.TripStatusAccepted, Fare: 50})
	tripRepo.AddTrip(&domain.Trip{ID: "trip-4", DriverID: "driver-2", Status: domain.TripStatusCompleted, Fare: 100})

	engine := newEngine(tripRepo, NewMockDriverRepository(), NewMockClientRepository(), NewRecordingSink())

	history, err := engine.GetDriverHistory(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history.Trips) != 3 {
		t.Errorf("expected 3 trips in history, got %d", len(history.Trips))
	}
	if history.TotalIncome != 122.5 {
		t.Errorf("expected income 122.5, got %v", history.TotalIncome)
	}
}

func TestGetClientHistory_NewestFirst(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{ID: "trip-1", ClientID: "client-1", Status: domain.TripStatusCompleted})
	tripRepo.AddTrip(&domain.Trip{ID: "trip-2", ClientID: "client-2", Status: domain.TripStatusRequested})
	tripRepo.AddTrip(&domain.Trip{ID: "trip-3", ClientID: "client-1", Status: domain.TripStatusRequested})

	engine := newEngine(tripRepo, NewMockDriverRepository(), NewMockClientRepository(), NewRecordingSink())

	trips, err := engine.GetClientHistory(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(trips))
	}
	if trips[0].ID != "trip-3" || trips[1].ID != "trip-1" {
		t.Errorf("wrong order: %s, %s", trips[0].ID, trips[1].ID)
	}
}

func TestGetTripDetails_ClientScoped(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	addRequestedTrip(tripRepo, "trip-1", "client-1")

	engine := newEngine(tripRepo, NewMockDriverRepository(), NewMockClientRepository(), NewRecordingSink())
	ctx := context.Background()

	if _, err := engine.GetTripDetails(ctx, "trip-1", "client-1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := engine.GetTripDetails(ctx, "trip-1", "client-2"); !errors.Is(err, service.ErrNotTripClient) {
		t.Errorf("expected ErrNotTripClient, got %v", err)
	}
}
