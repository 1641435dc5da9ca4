package postgres

import (
	"context"
	"database/sql"
	"errors"

	"viajes/internal/domain"
	"viajes/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, client_id, COALESCE(driver_id, ''),
	origin_address, origin_lat, origin_lng,
	destination_address, destination_lat, destination_lng,
	fare, status,
	driver_started, client_started, driver_completed, client_completed,
	COALESCE(cancel_reason, ''), COALESCE(rating, 0), COALESCE(comment, ''),
	created_at, updated_at
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (
			id, client_id, driver_id,
			origin_address, origin_lat, origin_lng,
			destination_address, destination_lat, destination_lng,
			fare, status,
			driver_started, client_started, driver_completed, client_completed,
			cancel_reason, rating, comment,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.ClientID,
		nullString(trip.DriverID),
		trip.Origin.Address,
		trip.Origin.Lat,
		trip.Origin.Lng,
		trip.Destination.Address,
		trip.Destination.Lat,
		trip.Destination.Lng,
		trip.Fare,
		trip.Status,
		trip.DriverStarted,
		trip.ClientStarted,
		trip.DriverCompleted,
		trip.ClientCompleted,
		nullString(trip.CancelReason),
		nullInt(trip.Rating),
		nullString(trip.Comment),
		trip.CreatedAt,
		trip.UpdatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// Update replaces an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET driver_id = $1, fare = $2, status = $3,
			driver_started = $4, client_started = $5,
			driver_completed = $6, client_completed = $7,
			cancel_reason = $8, rating = $9, comment = $10,
			updated_at = $11
		WHERE id = $12
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		trip.Fare,
		trip.Status,
		trip.DriverStarted,
		trip.ClientStarted,
		trip.DriverCompleted,
		trip.ClientCompleted,
		nullString(trip.CancelReason),
		nullInt(trip.Rating),
		nullString(trip.Comment),
		trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ClaimForDriver binds a driver to a trip that is still REQUESTED and
// unclaimed. The guard makes the bind safe across instances: a writer that
// lost the race finds no row to update and gets ErrConflict.
func (r *TripRepository) ClaimForDriver(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET driver_id = $1, status = $2, updated_at = $3
		WHERE id = $4 AND status = $5 AND driver_id IS NULL
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		trip.Status,
		trip.UpdatedAt,
		trip.ID,
		domain.TripStatusRequested,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 1 {
		return nil
	}

	// Distinguish "claimed by someone else" from "no such trip".
	if _, err := r.GetByID(ctx, trip.ID); err != nil {
		return err
	}
	return repository.ErrConflict
}

// GetByStatus retrieves all trips currently in the given status, newest first.
func (r *TripRepository) GetByStatus(ctx context.Context, status domain.TripStatus) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE status = $1 ORDER BY created_at DESC`
	return r.queryTrips(ctx, query, status)
}

// GetByClientID retrieves all trips requested by a client, newest first.
func (r *TripRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE client_id = $1 ORDER BY created_at DESC`
	return r.queryTrips(ctx, query, clientID)
}

// GetByDriverID retrieves all trips that ever referenced a driver, newest first.
func (r *TripRepository) GetByDriverID(ctx context.Context, driverID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.queryTrips(ctx, query, driverID)
}

func (r *TripRepository) queryTrips(ctx context.Context, query string, args ...any) ([]*domain.Trip, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	err := row.Scan(
		&trip.ID,
		&trip.ClientID,
		&trip.DriverID,
		&trip.Origin.Address,
		&trip.Origin.Lat,
		&trip.Origin.Lng,
		&trip.Destination.Address,
		&trip.Destination.Lat,
		&trip.Destination.Lng,
		&trip.Fare,
		&trip.Status,
		&trip.DriverStarted,
		&trip.ClientStarted,
		&trip.DriverCompleted,
		&trip.ClientCompleted,
		&trip.CancelReason,
		&trip.Rating,
		&trip.Comment,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
