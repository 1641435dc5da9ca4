package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"viajes/internal/domain"
	"viajes/internal/notify"
	"viajes/internal/redis"
	"viajes/internal/repository"
)

const claimLockTTL = 10 * time.Second

// TripService is the trip lifecycle and driver allocation engine. It owns
// every status transition, the dual-confirmation protocols for starting and
// completing a trip, and the claim/release of driver availability.
//
// Every mutating operation runs as one atomic unit scoped to its trip:
// the engine locks "trip:<id>" for the whole read-validate-write sequence
// and, when the driver registry is touched, "driver:<id>" second. A trip
// write and its paired registry claim or release commit through units as a
// single transaction, so neither half can survive the other failing.
// Losing a claim race is terminal for the caller (Conflict), never retried
// here. Notifications are published to the sink only after the mutation
// commits and can neither block nor fail a transition.
type TripService struct {
	tripRepo   repository.TripRepository
	driverRepo repository.DriverRepository
	clientRepo repository.ClientRepository
	units      repository.Atomic
	fares      FareEstimator
	events     notify.Sink
	lockStore  redis.LockStoreInterface
	cacheStore *redis.CacheStore

	locks *keyedMutex
}

// NewTripService creates a new TripService. The events sink, lock store and
// cache store are optional; a nil lock store skips the cross-instance claim
// guard and a nil cache store disables snapshot caching.
func NewTripService(
	tripRepo repository.TripRepository,
	driverRepo repository.DriverRepository,
	clientRepo repository.ClientRepository,
	units repository.Atomic,
	fares FareEstimator,
	events notify.Sink,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
) *TripService {
	return &TripService{
		tripRepo:   tripRepo,
		driverRepo: driverRepo,
		clientRepo: clientRepo,
		units:      units,
		fares:      fares,
		events:     events,
		lockStore:  lockStore,
		cacheStore: cacheStore,
		locks:      newKeyedMutex(),
	}
}

// RequestTripRequest contains the parameters for requesting a trip.
type RequestTripRequest struct {
	ClientID    string
	Origin      domain.Location
	Destination domain.Location
}

// RequestTrip creates a new trip in REQUESTED state. No driver is allocated
// here; the new trip is broadcast to the driver pool instead.
func (s *TripService) RequestTrip(ctx context.Context, req RequestTripRequest) (*domain.Trip, error) {
	if req.ClientID == "" {
		return nil, ErrInvalidClientID
	}
	if req.Origin.Address == "" || req.Destination.Address == "" {
		return nil, ErrInvalidItinerary
	}

	client, err := s.clientRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	// Fare is computed once, before the trip exists, and is immutable after.
	fare, err := s.fares.Estimate(ctx, req.Origin, req.Destination)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	trip := &domain.Trip{
		ID:          uuid.New().String(),
		ClientID:    client.ID,
		Origin:      req.Origin,
		Destination: req.Destination,
		Fare:        fare,
		Status:      domain.TripStatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}
	s.invalidateTrip(ctx, trip.ID)

	s.publish(allDrivers(), notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    notify.SeverityInfo,
		Title:   "New Trip Available",
		Message: fmt.Sprintf("New trip from %s to %s", trip.Origin.Address, trip.Destination.Address),
	})
	s.publish(clientRcpt(client.ID), notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    notify.SeverityOK,
		Title:   "Trip Requested",
		Message: fmt.Sprintf("Your trip from %s to %s has been requested successfully.", trip.Origin.Address, trip.Destination.Address),
	})

	return trip, nil
}

// AcceptTrip atomically claims a REQUESTED, unclaimed trip for an AVAILABLE
// driver. The trip claim and the driver allocation commit as one unit; if
// either half fails, neither is applied. Only the first caller to observe
// an unclaimed trip under the lock succeeds; racing callers get a conflict.
func (s *TripService) AcceptTrip(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	unlockTrip := s.locks.Lock(tripKey(tripID))
	defer unlockTrip()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusRequested || trip.DriverID != "" {
		return nil, ErrTripNotAvailable
	}

	unlockDriver := s.locks.Lock(driverKey(driverID))
	defer unlockDriver()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Availability != domain.DriverAvailable {
		return nil, ErrDriverNotAvailable
	}

	// Cross-instance guard: another process may be claiming this driver.
	if s.lockStore != nil {
		ok, err := s.lockStore.AcquireClaimLock(ctx, driverID, claimLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDriverNotAvailable
		}
		defer func() { _ = s.lockStore.ReleaseClaimLock(ctx, driverID) }()
	}

	trip.DriverID = driverID
	trip.Status = domain.TripStatusAccepted
	trip.UpdatedAt = time.Now()

	err = s.units.Run(ctx, func(trips repository.TripRepository, drivers repository.DriverRepository) error {
		claimed, err := drivers.TryClaim(ctx, driverID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrDriverNotAvailable
		}
		return trips.ClaimForDriver(ctx, trip)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrTripNotAvailable
		}
		return nil, err
	}
	s.invalidateTrip(ctx, tripID)

	s.publish(clientRcpt(trip.ClientID), notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    notify.SeverityOK,
		Title:   "Trip Accepted",
		Message: "A driver has accepted your trip request!",
	})
	s.publish(driverRcpt(driverID), notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    notify.SeverityInfo,
		Title:   "Trip Assigned",
		Message: fmt.Sprintf("You accepted the trip to %s.", trip.Destination.Address),
	})

	return trip, nil
}

// RejectTrip handles a driver declining a trip. A REQUESTED, unclaimed trip
// is cancelled outright ("no driver wants it"); an ACCEPTED trip owned by
// the caller is cancelled and the driver released.
func (s *TripService) RejectTrip(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	unlockTrip := s.locks.Lock(tripKey(tripID))
	defer unlockTrip()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Status == domain.TripStatusRequested && trip.DriverID == "" {
		trip.Status = domain.TripStatusCancelled
		trip.CancelReason = "rejected by driver"
		trip.UpdatedAt = time.Now()
		if err := s.tripRepo.Update(ctx, trip); err != nil {
			return nil, err
		}
		s.invalidateTrip(ctx, tripID)

		s.publish(clientRcpt(trip.ClientID), notify.Event{
			TripID:  trip.ID,
			Status:  trip.Status,
			Type:    notify.SeverityWarn,
			Title:   "Trip Cancelled",
			Message: "No driver accepted your trip request.",
		})
		return trip, nil
	}

	if trip.DriverID != driverID {
		return nil, ErrNotTripDriver
	}
	if trip.Status.Terminal() {
		return nil, terminalErr(trip.Status)
	}
	if trip.Status != domain.TripStatusAccepted {
		return nil, ErrTripStarted
	}

	unlockDriver := s.locks.Lock(driverKey(driverID))
	defer unlockDriver()

	trip.Status = domain.TripStatusCancelled
	trip.DriverID = ""
	trip.CancelReason = "rejected by driver"
	trip.UpdatedAt = time.Now()

	if err := s.releaseAndUpdate(ctx, driverID, trip); err != nil {
		return nil, err
	}
	s.invalidateTrip(ctx, tripID)

	s.publish(clientRcpt(trip.ClientID), notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    notify.SeverityWarn,
		Title:   "Trip Cancelled",
		Message: "The driver has cancelled your trip request.",
	})

	return trip, nil
}

// NotifyArrival signals the client that the assigned driver reached the
// pickup point. It never changes the trip's status.
func (s *TripService) NotifyArrival(ctx context.Context, tripID, driverID string) error {
	return s.driverSignal(ctx, tripID, driverID,
		"Driver Arrived", "Your driver has arrived at the pickup point.")
}

// NotifyDropoff signals the client that the assigned driver reached the
// destination. It never changes the trip's status.
func (s *TripService) NotifyDropoff(ctx context.Context, tripID, driverID string) error {
	return s.driverSignal(ctx, tripID, driverID,
		"Arrived at Destination", "Your driver has arrived at the destination.")
}

func (s *TripService) driverSignal(ctx context.Context, tripID, driverID, title, message string) error {
	if tripID == "" {
		return ErrInvalidTripID
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != driverID {
		return ErrNotTripDriver
	}
	if trip.Status.Terminal() {
		return terminalErr(trip.Status)
	}

	s.publish(clientRcpt(trip.ClientID), notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    notify.SeverityInfo,
		Title:   title,
		Message: message,
	})
	return nil
}

// StartTripByDriver records the driver's start confirmation. The trip
// enters IN_PROGRESS only once both parties have confirmed; confirmations
// are idempotent and order-independent.
func (s *TripService) StartTripByDriver(ctx context.Context, driverID, tripID string) (*domain.Trip, error) {
	return s.confirmStart(ctx, tripID, confirmation{
		partyID:   driverID,
		byDriver:  true,
		confirmed: func(t *domain.Trip) bool { return t.DriverStarted },
		set:       func(t *domain.Trip) { t.DriverStarted = true },
	})
}

// StartTripByClient records the client's start confirmation.
func (s *TripService) StartTripByClient(ctx context.Context, clientID, tripID string) (*domain.Trip, error) {
	return s.confirmStart(ctx, tripID, confirmation{
		partyID:   clientID,
		byDriver:  false,
		confirmed: func(t *domain.Trip) bool { return t.ClientStarted },
		set:       func(t *domain.Trip) { t.ClientStarted = true },
	})
}

// CompleteTripByDriver records the driver's completion confirmation. The
// trip enters COMPLETED — and the driver is released — only once both
// parties have confirmed.
func (s *TripService) CompleteTripByDriver(ctx context.Context, driverID, tripID string) (*domain.Trip, error) {
	return s.confirmComplete(ctx, tripID, confirmation{
		partyID:   driverID,
		byDriver:  true,
		confirmed: func(t *domain.Trip) bool { return t.DriverCompleted },
		set:       func(t *domain.Trip) { t.DriverCompleted = true },
	})
}

// CompleteTripByClient records the client's completion confirmation.
func (s *TripService) CompleteTripByClient(ctx context.Context, clientID, tripID string) (*domain.Trip, error) {
	return s.confirmComplete(ctx, tripID, confirmation{
		partyID:   clientID,
		byDriver:  false,
		confirmed: func(t *domain.Trip) bool { return t.ClientCompleted },
		set:       func(t *domain.Trip) { t.ClientCompleted = true },
	})
}

// confirmation describes one party's side of a dual-confirmation protocol.
type confirmation struct {
	partyID   string
	byDriver  bool
	confirmed func(*domain.Trip) bool
	set       func(*domain.Trip)
}

func (c confirmation) authorize(trip *domain.Trip) error {
	if c.byDriver {
		if c.partyID == "" {
			return ErrInvalidDriverID
		}
		if trip.DriverID != c.partyID {
			return ErrNotTripDriver
		}
		return nil
	}
	if c.partyID == "" {
		return ErrInvalidClientID
	}
	if trip.ClientID != c.partyID {
		return ErrNotTripClient
	}
	return nil
}

func (c confirmation) party() string {
	if c.byDriver {
		return "driver"
	}
	return "client"
}

func (c confirmation) counterpart() string {
	if c.byDriver {
		return "client"
	}
	return "driver"
}

func (s *TripService) confirmStart(ctx context.Context, tripID string, c confirmation) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	unlock := s.locks.Lock(tripKey(tripID))
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(trip); err != nil {
		return nil, err
	}
	if c.confirmed(trip) {
		// Flags are monotonic; a repeated confirmation is a no-op.
		return trip, nil
	}
	if trip.Status.Terminal() {
		return nil, terminalErr(trip.Status)
	}
	if trip.Status != domain.TripStatusAccepted {
		return nil, ErrTripNotAccepted
	}

	c.set(trip)
	started := trip.DriverStarted && trip.ClientStarted
	if started {
		trip.Status = domain.TripStatusInProgress
	}
	trip.UpdatedAt = time.Now()

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}
	s.invalidateTrip(ctx, tripID)

	if started {
		s.publishToBoth(trip, notify.SeverityOK, "Trip Started", "Your trip has started.")
	} else {
		s.publishToBoth(trip, notify.SeverityInfo, "Waiting for Confirmation",
			fmt.Sprintf("The %s confirmed the trip start. Waiting for the %s.", c.party(), c.counterpart()))
	}

	return trip, nil
}

func (s *TripService) confirmComplete(ctx context.Context, tripID string, c confirmation) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	unlock := s.locks.Lock(tripKey(tripID))
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(trip); err != nil {
		return nil, err
	}
	if c.confirmed(trip) {
		return trip, nil
	}
	if trip.Status.Terminal() {
		return nil, terminalErr(trip.Status)
	}
	if trip.Status != domain.TripStatusInProgress {
		return nil, ErrTripNotInProgress
	}

	c.set(trip)
	completed := trip.DriverCompleted && trip.ClientCompleted
	trip.UpdatedAt = time.Now()

	if completed {
		// Completion is the only path that returns an allocated driver to
		// the pool besides cancellation/rejection. Release and trip update
		// commit as one unit.
		unlockDriver := s.locks.Lock(driverKey(trip.DriverID))
		defer unlockDriver()

		trip.Status = domain.TripStatusCompleted
		if err := s.releaseAndUpdate(ctx, trip.DriverID, trip); err != nil {
			return nil, err
		}
	} else if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}
	s.invalidateTrip(ctx, tripID)

	if completed {
		s.publishToBoth(trip, notify.SeverityOK, "Trip Completed", "Your trip has been completed successfully!")
	} else {
		s.publishToBoth(trip, notify.SeverityInfo, "Waiting for Confirmation",
			fmt.Sprintf("The %s marked the trip as completed. Waiting for the %s to confirm.", c.party(), c.counterpart()))
	}

	return trip, nil
}

// CancelTrip cancels a non-terminal trip on behalf of its client, releasing
// the driver if one was attached.
func (s *TripService) CancelTrip(ctx context.Context, tripID, clientID, reason string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if clientID == "" {
		return nil, ErrInvalidClientID
	}

	unlockTrip := s.locks.Lock(tripKey(tripID))
	defer unlockTrip()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.ClientID != clientID {
		return nil, ErrNotTripClient
	}
	if trip.Status.Terminal() {
		return nil, terminalErr(trip.Status)
	}

	driverID := trip.DriverID

	trip.Status = domain.TripStatusCancelled
	trip.DriverID = ""
	trip.CancelReason = reason
	trip.UpdatedAt = time.Now()

	if driverID != "" {
		unlockDriver := s.locks.Lock(driverKey(driverID))
		defer unlockDriver()

		if err := s.releaseAndUpdate(ctx, driverID, trip); err != nil {
			return nil, err
		}
	} else if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}
	s.invalidateTrip(ctx, tripID)

	s.publish(clientRcpt(clientID), notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    notify.SeverityOK,
		Title:   "Trip Cancelled",
		Message: "Your trip has been cancelled.",
	})
	if driverID != "" {
		s.publish(driverRcpt(driverID), notify.Event{
			TripID:  trip.ID,
			Status:  trip.Status,
			Type:    notify.SeverityWarn,
			Title:   "Trip Cancelled",
			Message: "The client has cancelled the trip.",
		})
	}

	return trip, nil
}

// RateTripRequest contains the parameters for rating a completed trip.
type RateTripRequest struct {
	TripID   string
	ClientID string
	Rating   int
	Comment  string
}

// RateTrip attaches the client's rating to a completed trip. A trip can be
// rated exactly once.
func (s *TripService) RateTrip(ctx context.Context, req RateTripRequest) error {
	if req.TripID == "" {
		return ErrInvalidTripID
	}
	if req.ClientID == "" {
		return ErrInvalidClientID
	}
	if req.Rating < 1 || req.Rating > 5 {
		return ErrInvalidRating
	}

	unlock := s.locks.Lock(tripKey(req.TripID))
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return err
	}
	if trip.ClientID != req.ClientID {
		return ErrNotTripClient
	}
	if trip.Status != domain.TripStatusCompleted {
		return ErrTripNotCompleted
	}
	if trip.Rating != 0 {
		return ErrTripAlreadyRated
	}

	trip.Rating = req.Rating
	trip.Comment = req.Comment
	trip.UpdatedAt = time.Now()

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return err
	}
	s.invalidateTrip(ctx, req.TripID)

	return nil
}

// GetTripDetails retrieves one trip scoped to its client.
func (s *TripService) GetTripDetails(ctx context.Context, tripID, clientID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.getTripCached(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.ClientID != clientID {
		return nil, ErrNotTripClient
	}
	return trip, nil
}

// GetAvailableTrips lists trips waiting for a driver, newest first.
func (s *TripService) GetAvailableTrips(ctx context.Context) ([]*domain.Trip, error) {
	if s.cacheStore != nil {
		if trips, err := s.cacheStore.GetAvailableTrips(ctx); err == nil && trips != nil {
			return trips, nil
		}
	}

	trips, err := s.tripRepo.GetByStatus(ctx, domain.TripStatusRequested)
	if err != nil {
		return nil, err
	}
	if s.cacheStore != nil {
		_ = s.cacheStore.SetAvailableTrips(ctx, trips)
	}
	return trips, nil
}

// GetAssignedTrips lists the non-terminal trips assigned to a driver.
func (s *TripService) GetAssignedTrips(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	trips, err := s.tripRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	assigned := make([]*domain.Trip, 0, len(trips))
	for _, t := range trips {
		if !t.Status.Terminal() {
			assigned = append(assigned, t)
		}
	}
	return assigned, nil
}

// GetClientHistory lists every trip a client has requested, newest first.
func (s *TripService) GetClientHistory(ctx context.Context, clientID string) ([]*domain.Trip, error) {
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	return s.tripRepo.GetByClientID(ctx, clientID)
}

// DriverHistory is a driver's trip history plus income over completed trips.
type DriverHistory struct {
	Trips       []*domain.Trip
	TotalIncome float64
}

// GetDriverHistory lists every trip that referenced a driver and sums the
// fares of the completed ones.
func (s *TripService) GetDriverHistory(ctx context.Context, driverID string) (*DriverHistory, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	trips, err := s.tripRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	history := &DriverHistory{Trips: trips}
	for _, t := range trips {
		if t.Status == domain.TripStatusCompleted {
			history.TotalIncome += t.Fare
		}
	}
	return history, nil
}

func (s *TripService) getTripCached(ctx context.Context, tripID string) (*domain.Trip, error) {
	if s.cacheStore != nil {
		if trip, err := s.cacheStore.GetTrip(ctx, tripID); err == nil && trip != nil {
			return trip, nil
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if s.cacheStore != nil {
		_ = s.cacheStore.SetTrip(ctx, trip)
	}
	return trip, nil
}

// releaseAndUpdate returns a driver to the pool and writes the trip's final
// state in one atomic unit. Used by every transition that detaches a driver
// from a trip: completion, cancellation and rejection of an accepted trip.
func (s *TripService) releaseAndUpdate(ctx context.Context, driverID string, trip *domain.Trip) error {
	return s.units.Run(ctx, func(trips repository.TripRepository, drivers repository.DriverRepository) error {
		if err := drivers.Release(ctx, driverID); err != nil {
			return err
		}
		return trips.Update(ctx, trip)
	})
}

func (s *TripService) invalidateTrip(ctx context.Context, tripID string) {
	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateTrip(ctx, tripID)
	}
}

func (s *TripService) publish(rcpt notify.Recipient, event notify.Event) {
	if s.events == nil {
		return
	}
	event.CreatedAt = time.Now()
	s.events.Publish(rcpt, event)
}

func (s *TripService) publishToBoth(trip *domain.Trip, severity notify.Severity, title, message string) {
	event := notify.Event{
		TripID:  trip.ID,
		Status:  trip.Status,
		Type:    severity,
		Title:   title,
		Message: message,
	}
	s.publish(clientRcpt(trip.ClientID), event)
	if trip.DriverID != "" {
		s.publish(driverRcpt(trip.DriverID), event)
	}
}

func terminalErr(status domain.TripStatus) error {
	if status == domain.TripStatusCompleted {
		return ErrTripCompleted
	}
	return ErrTripCancelled
}

func tripKey(id string) string   { return "trip:" + id }
func driverKey(id string) string { return "driver:" + id }

func clientRcpt(id string) notify.Recipient {
	return notify.Recipient{Audience: notify.AudienceClient, ID: id}
}

func driverRcpt(id string) notify.Recipient {
	return notify.Recipient{Audience: notify.AudienceDriver, ID: id}
}

func allDrivers() notify.Recipient {
	return notify.Recipient{Audience: notify.AudienceAllDrivers}
}
