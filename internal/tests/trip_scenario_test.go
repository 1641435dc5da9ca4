package tests

import (
	"context"
	"errors"
	"testing"

	"viajes/internal/domain"
	"viajes/internal/notify"
	"viajes/internal/service"
)

// ──────────────────────────────────────────────
// 7. FULL LIFECYCLE SCENARIO
// ──────────────────────────────────────────────

// The canonical happy path: request, accept, arrival, dual start, dropoff,
// dual complete, rating. Asserts the state and the registry at every step.
func TestScenario_FullLifecycle(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	clientRepo := NewMockClientRepository()
	sink := NewRecordingSink()
	addClient(clientRepo, "client-1")
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)

	engine := newEngine(tripRepo, driverRepo, clientRepo, sink)
	ctx := context.Background()
	origin, destination := itinerary()

	trip, err := engine.RequestTrip(ctx, service.RequestTripRequest{
		ClientID:    "client-1",
		Origin:      origin,
		Destination: destination,
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	tripID := trip.ID

	if trip, err = engine.AcceptTrip(ctx, tripID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if trip.Status != domain.TripStatusAccepted {
		t.Fatalf("after accept: %s", trip.Status)
	}

	if err = engine.NotifyArrival(ctx, tripID, "driver-1"); err != nil {
		t.Fatalf("arrival: %v", err)
	}
	// Arrival is a side channel: no state change.
	if got := tripRepo.GetTrip(tripID).Status; got != domain.TripStatusAccepted {
		t.Errorf("arrival mutated status to %s", got)
	}

	if _, err = engine.StartTripByDriver(ctx, "driver-1", tripID); err != nil {
		t.Fatalf("driver start: %v", err)
	}
	if _, err = engine.StartTripByClient(ctx, "client-1", tripID); err != nil {
		t.Fatalf("client start: %v", err)
	}
	if got := tripRepo.GetTrip(tripID).Status; got != domain.TripStatusInProgress {
		t.Fatalf("after dual start: %s", got)
	}

	if err = engine.NotifyDropoff(ctx, tripID, "driver-1"); err != nil {
		t.Fatalf("dropoff: %v", err)
	}

	if _, err = engine.CompleteTripByClient(ctx, "client-1", tripID); err != nil {
		t.Fatalf("client complete: %v", err)
	}
	if _, err = engine.CompleteTripByDriver(ctx, "driver-1", tripID); err != nil {
		t.Fatalf("driver complete: %v", err)
	}

	final := tripRepo.GetTrip(tripID)
	if final.Status != domain.TripStatusCompleted {
		t.Fatalf("final status %s", final.Status)
	}
	if got := driverRepo.GetDriver("driver-1").Availability; got != domain.DriverAvailable {
		t.Errorf("driver not back in the pool: %s", got)
	}

	if err = engine.RateTrip(ctx, service.RateTripRequest{
		TripID: tripID, ClientID: "client-1", Rating: 5, Comment: "smooth",
	}); err != nil {
		t.Fatalf("rate: %v", err)
	}

	history, err := engine.GetDriverHistory(ctx, "driver-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.TotalIncome != 50.0 {
		t.Errorf("income %v after one completed trip", history.TotalIncome)
	}

	// The client heard about every milestone: request, accept, arrival,
	// waiting, started, dropoff, waiting, completed.
	clientEvents := sink.EventsFor(notify.AudienceClient, "client-1")
	if len(clientEvents) < 6 {
		t.Errorf("expected a full event trail for the client, got %d events", len(clientEvents))
	}
}

// A released driver is immediately claimable for the next trip.
func TestScenario_DriverReusableAfterCompletion(t *testing.T) {
	t.Parallel()

	engine := completedTrip(t)
	ctx := context.Background()

	// completedTrip leaves driver-1 available again; a second trip can
	// claim it straight away.
	trip, err := engine.RequestTrip(ctx, service.RequestTripRequest{
		ClientID:    "client-1",
		Origin:      domain.Location{Address: "Plaza Italia"},
		Destination: domain.Location{Address: "Retiro"},
	})
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if _, err := engine.AcceptTrip(ctx, trip.ID, "driver-1"); err != nil {
		t.Fatalf("second accept: %v", err)
	}
}

// ──────────────────────────────────────────────
// 8. DRIVER AVAILABILITY
// ──────────────────────────────────────────────

func TestDriverService_AvailabilityToggles(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	addDriver(driverRepo, "driver-1", domain.DriverAvailable)

	drivers := service.NewDriverService(driverRepo)
	ctx := context.Background()

	if err := drivers.SetOffline(ctx, "driver-1"); err != nil {
		t.Fatalf("offline: %v", err)
	}
	if got := driverRepo.GetDriver("driver-1").Availability; got != domain.DriverOffline {
		t.Errorf("expected OFFLINE, got %s", got)
	}

	if err := drivers.SetAvailable(ctx, "driver-1"); err != nil {
		t.Fatalf("available: %v", err)
	}
	if got := driverRepo.GetDriver("driver-1").Availability; got != domain.DriverAvailable {
		t.Errorf("expected AVAILABLE, got %s", got)
	}
}

func TestDriverService_CannotGoOfflineWhileOnTrip(t *testing.T) {
	t.Parallel()

	_, _, driverRepo, _ := acceptedTrip(t)
	drivers := service.NewDriverService(driverRepo)

	err := drivers.SetOffline(context.Background(), "driver-1")
	if !errors.Is(err, service.ErrDriverOnTrip) {
		t.Errorf("expected ErrDriverOnTrip, got %v", err)
	}
	if got := driverRepo.GetDriver("driver-1").Availability; got != domain.DriverOnTrip {
		t.Errorf("allocation lost: %s", got)
	}
}

func TestNotifyArrival_OnlyAssignedDriver(t *testing.T) {
	t.Parallel()

	engine, _, _, sink := acceptedTrip(t)
	ctx := context.Background()

	if err := engine.NotifyArrival(ctx, "trip-1", "driver-9"); !errors.Is(err, service.ErrNotTripDriver) {
		t.Errorf("expected ErrNotTripDriver, got %v", err)
	}

	if err := engine.NotifyArrival(ctx, "trip-1", "driver-1"); err != nil {
		t.Fatalf("arrival: %v", err)
	}
	events := sink.EventsFor(notify.AudienceClient, "client-1")
	found := false
	for _, e := range events {
		if e.Event.Title == "Driver Arrived" {
			found = true
		}
	}
	if !found {
		t.Error("client never received the arrival event")
	}
}
