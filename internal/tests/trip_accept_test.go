package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"viajes/internal/domain"
	"viajes/internal/repository"
	"viajes/internal/service"
)

// ──────────────────────────────────────────────
// 2. DRIVER ALLOCATION (ACCEPT / REJECT)
// ──────────────────────────────────────────────

func addRequestedTrip(repo *MockTripRepository, id, clientID string) {
	origin, destination := itinerary()
	repo.AddTrip(&domain.Trip{
		ID:          id,
		ClientID:    clientID,
		Origin:      origin,
		Destination: destination,
		Fare:        50.0,
		Status:      domain.TripStatusRequested,
	})
}

func TestAcceptTrip_ClaimsTripAndDriverAtomically(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	trip, err := engine.AcceptTrip(context.Background(), "trip-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusAccepted {
		t.Errorf("expected status %s, got %s", domain.TripStatusAccepted, trip.Status)
	}
	if trip.DriverID != "driver-1" {
		t.Errorf("expected driver-1 bound, got %q", trip.DriverID)
	}
	if got := driverRepo.GetDriver("driver-1").Availability; got != domain.DriverOnTrip {
		t.Errorf("expected driver ON_TRIP, got %s", got)
	}
}

func TestAcceptTrip_AlreadyClaimed(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)
	addDriver(driverRepo, "driver-2", domain.DriverAvailable)

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	if _, err := engine.AcceptTrip(context.Background(), "trip-1", "driver-1"); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	_, err := engine.AcceptTrip(context.Background(), "trip-1", "driver-2")
	if !errors.Is(err, service.ErrTripNotAvailable) {
		t.Errorf("expected ErrTripNotAvailable for the loser, got %v", err)
	}
	// The loser's driver must remain untouched.
	if got := driverRepo.GetDriver("driver-2").Availability; got != domain.DriverAvailable {
		t.Errorf("losing driver mutated to %s", got)
	}
}

func TestAcceptTrip_DriverNotAvailable(t *testing.T) {
	t.Parallel()

	for _, availability := range []domain.DriverAvailability{domain.DriverOnTrip, domain.DriverOffline} {
		tripRepo := NewMockTripRepository()
		driverRepo := NewMockDriverRepository()
		clientRepo := NewMockClientRepository()
		addClient(clientRepo, "client-1")
		addRequestedTrip(tripRepo, "trip-1", "client-1")
		addDriver(driverRepo, "driver-1", availability)

		engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

		_, err := engine.AcceptTrip(context.Background(), "trip-1", "driver-1")
		if !errors.Is(err, service.ErrDriverNotAvailable) {
			t.Errorf("availability %s: expected ErrDriverNotAvailable, got %v", availability, err)
		}
		// The trip must stay claimable.
		if got := tripRepo.GetTrip("trip-1").Status; got != domain.TripStatusRequested {
			t.Errorf("availability %s: trip mutated to %s", availability, got)
		}
	}
}

func TestAcceptTrip_UnknownTripOrDriver(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	if _, err := engine.AcceptTrip(context.Background(), "ghost", "driver-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown trip: expected ErrNotFound, got %v", err)
	}
	if _, err := engine.AcceptTrip(context.Background(), "trip-1", "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown driver: expected ErrNotFound, got %v", err)
	}
}

func TestAcceptTrip_ConcurrentDrivers_ExactlyOneWins(t *testing.T) {
	t.Parallel()

	const drivers = 16

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	for i := 0; i < drivers; i++ {
		addDriver(driverRepo, driverID(i), domain.DriverAvailable)
	}

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := engine.AcceptTrip(context.Background(), "trip-1", id)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, service.ErrTripNotAvailable):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(driverID(i))
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}
	if conflicts != drivers-1 {
		t.Errorf("expected %d conflicts, got %d", drivers-1, conflicts)
	}

	// Exactly one driver may be ON_TRIP, and it must be the trip's driver.
	trip := tripRepo.GetTrip("trip-1")
	onTrip := 0
	for i := 0; i < drivers; i++ {
		if driverRepo.GetDriver(driverID(i)).Availability == domain.DriverOnTrip {
			onTrip++
			if trip.DriverID != driverID(i) {
				t.Errorf("driver %s claimed but trip bound to %s", driverID(i), trip.DriverID)
			}
		}
	}
	if onTrip != 1 {
		t.Errorf("expected exactly 1 driver ON_TRIP, got %d", onTrip)
	}
}

func TestAcceptTrip_ConcurrentTrips_OneDriverClaimedOnce(t *testing.T) {
	t.Parallel()

	const trips = 16

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)
	for i := 0; i < trips; i++ {
		addRequestedTrip(tripRepo, tripID(i), "client-1")
	}

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < trips; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := engine.AcceptTrip(context.Background(), id, "driver-1")
			if err == nil {
				atomic.AddInt32(&wins, 1)
			} else if !errors.Is(err, service.ErrDriverNotAvailable) {
				t.Errorf("unexpected error: %v", err)
			}
		}(tripID(i))
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected the driver to win exactly 1 trip, got %d", wins)
	}
}

func TestRejectTrip_UnclaimedTripIsCancelled(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	trip, err := engine.RejectTrip(context.Background(), "trip-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Status != domain.TripStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", trip.Status)
	}
	// No claim was ever made, so the registry must be untouched.
	if got := atomic.LoadInt32(&driverRepo.TryClaimCallCount); got != 0 {
		t.Errorf("registry claimed %d times for an unclaimed reject", got)
	}
	if got := atomic.LoadInt32(&driverRepo.ReleaseCallCount); got != 0 {
		t.Errorf("registry released %d times for an unclaimed reject", got)
	}
}

func TestRejectTrip_AcceptedTripReleasesDriver(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	if _, err := engine.AcceptTrip(context.Background(), "trip-1", "driver-1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	trip, err := engine.RejectTrip(context.Background(), "trip-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Status != domain.TripStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", trip.Status)
	}
	if trip.DriverID != "" {
		t.Errorf("expected driver cleared, got %q", trip.DriverID)
	}
	if got := driverRepo.GetDriver("driver-1").Availability; got != domain.DriverAvailable {
		t.Errorf("expected driver AVAILABLE again, got %s", got)
	}
	if got := atomic.LoadInt32(&driverRepo.ReleaseCallCount); got != 1 {
		t.Errorf("expected exactly 1 release, got %d", got)
	}
}

func TestRejectTrip_NotTheAssignedDriver(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	addClient(clientRepo, "client-1")
	addRequestedTrip(tripRepo, "trip-1", "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)
	addDriver(driverRepo, "driver-2", domain.DriverAvailable)

	engine := newEngine(tripRepo, driverRepo, clientRepo, NewRecordingSink())

	if _, err := engine.AcceptTrip(context.Background(), "trip-1", "driver-1"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err := engine.RejectTrip(context.Background(), "trip-1", "driver-2")
	if !errors.Is(err, service.ErrNotTripDriver) {
		t.Errorf("expected ErrNotTripDriver, got %v", err)
	}
}

func driverID(i int) string { return "driver-" + string(rune('a'+i)) }
func tripID(i int) string   { return "trip-" + string(rune('a'+i)) }
