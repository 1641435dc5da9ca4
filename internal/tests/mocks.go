package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"viajes/internal/domain"
	"viajes/internal/notify"
	"viajes/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip
	order []string

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	ClaimError  error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	m.order = append(m.order, trip.ID)
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	m.order = append(m.order, trip.ID)
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

// ClaimForDriver is a real compare-and-set, like the SQL guarded UPDATE:
// the bind only lands while the stored trip is still REQUESTED and unclaimed.
func (m *MockTripRepository) ClaimForDriver(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.ClaimError != nil {
		return m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != domain.TripStatusRequested || stored.DriverID != "" {
		return repository.ErrConflict
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByStatus(ctx context.Context, status domain.TripStatus) ([]*domain.Trip, error) {
	return m.filter(func(t *domain.Trip) bool { return t.Status == status }), nil
}

func (m *MockTripRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.Trip, error) {
	return m.filter(func(t *domain.Trip) bool { return t.ClientID == clientID }), nil
}

func (m *MockTripRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	return m.filter(func(t *domain.Trip) bool { return t.DriverID == driverID }), nil
}

func (m *MockTripRepository) filter(keep func(*domain.Trip) bool) []*domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	// Newest first, like the postgres implementation.
	ids := make([]string, len(m.order))
	for i, id := range m.order {
		ids[len(m.order)-1-i] = id
	}
	for _, id := range ids {
		t := m.trips[id]
		if keep(t) {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result
}

func (m *MockTripRepository) snapshot() map[string]*domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	saved := make(map[string]*domain.Trip, len(m.trips))
	for id, t := range m.trips {
		c := *t
		saved[id] = &c
	}
	return saved
}

func (m *MockTripRepository) restore(saved map[string]*domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips = saved
}

// GetTrip returns a trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil
	}
	copy := *trip
	return &copy
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY (REGISTRY)
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
// TryClaim is a real compare-and-set under the mutex, so concurrency tests
// exercise the same at-most-one-winner semantics as the SQL implementation.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	TryClaimCallCount int32
	ReleaseCallCount  int32

	// Error injection
	TryClaimError error
	ReleaseError  error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockDriverRepository) TryClaim(ctx context.Context, id string) (bool, error) {
	atomic.AddInt32(&m.TryClaimCallCount, 1)
	if m.TryClaimError != nil {
		return false, m.TryClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if driver.Availability != domain.DriverAvailable {
		return false, nil
	}
	driver.Availability = domain.DriverOnTrip
	return true, nil
}

func (m *MockDriverRepository) Release(ctx context.Context, id string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	if m.ReleaseError != nil {
		return m.ReleaseError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Availability = domain.DriverAvailable
	return nil
}

func (m *MockDriverRepository) SetAvailability(ctx context.Context, id string, availability domain.DriverAvailability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	if driver.Availability == domain.DriverOnTrip {
		return repository.ErrDriverOnTrip
	}
	driver.Availability = availability
	return nil
}

func (m *MockDriverRepository) snapshot() map[string]*domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	saved := make(map[string]*domain.Driver, len(m.drivers))
	for id, d := range m.drivers {
		c := *d
		saved[id] = &c
	}
	return saved
}

func (m *MockDriverRepository) restore(saved map[string]*domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = saved
}

// GetDriver returns a driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil
	}
	copy := *driver
	return &copy
}

// ──────────────────────────────────────────────
// MOCK CLIENT REPOSITORY
// ──────────────────────────────────────────────

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client
}

// NewMockClientRepository creates a new mock client repository.
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

// AddClient adds a client to the mock repository.
func (m *MockClientRepository) AddClient(client *domain.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *client
	m.clients[client.ID] = &copy
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *client
	m.clients[client.ID] = &copy
	return nil
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *client
	return &copy, nil
}

func (m *MockClientRepository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.Phone == phone {
			copy := *c
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockClientRepository) GetAll(ctx context.Context) ([]*domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Client, 0, len(m.clients))
	for _, c := range m.clients {
		copy := *c
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK ATOMIC UNIT
// ──────────────────────────────────────────────

// MockAtomic implements repository.Atomic over the mock repositories. It
// snapshots both stores before running fn and restores them when fn fails,
// giving tests the same all-or-nothing behavior as a database transaction.
// Units are serialized under one mutex, so a restore can never clobber a
// concurrent unit's writes.
type MockAtomic struct {
	mu      sync.Mutex
	trips   *MockTripRepository
	drivers *MockDriverRepository
}

// NewMockAtomic creates an atomic unit runner over the given mocks.
func NewMockAtomic(trips *MockTripRepository, drivers *MockDriverRepository) *MockAtomic {
	return &MockAtomic{trips: trips, drivers: drivers}
}

// Run implements repository.Atomic.
func (a *MockAtomic) Run(ctx context.Context, fn func(trips repository.TripRepository, drivers repository.DriverRepository) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	savedTrips := a.trips.snapshot()
	savedDrivers := a.drivers.snapshot()

	if err := fn(a.trips, a.drivers); err != nil {
		a.trips.restore(savedTrips)
		a.drivers.restore(savedDrivers)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// RECORDING SINK
// ──────────────────────────────────────────────

// RecordedEvent is one published notification.
type RecordedEvent struct {
	Recipient notify.Recipient
	Event     notify.Event
}

// RecordingSink captures published events synchronously for assertions.
type RecordingSink struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// NewRecordingSink creates a new RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Publish implements notify.Sink.
func (s *RecordingSink) Publish(rcpt notify.Recipient, event notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, RecordedEvent{Recipient: rcpt, Event: event})
}

// Events returns a copy of everything published so far.
func (s *RecordingSink) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// EventsFor returns the events addressed to one recipient audience+id.
func (s *RecordingSink) EventsFor(audience notify.Audience, id string) []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []RecordedEvent
	for _, e := range s.events {
		if e.Recipient.Audience == audience && e.Recipient.ID == id {
			out = append(out, e)
		}
	}
	return out
}
