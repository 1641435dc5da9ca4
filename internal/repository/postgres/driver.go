package postgres

import (
	"context"
	"database/sql"
	"errors"

	"viajes/internal/domain"
	"viajes/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
// The claim/release operations rely on conditional UPDATEs so the
// AVAILABLE -> ON_TRIP compare-and-set holds across processes.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver profile, AVAILABLE by default.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	if driver.Availability == "" {
		driver.Availability = domain.DriverAvailable
	}
	query := `INSERT INTO drivers (id, name, phone, license_number, availability) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.Phone, driver.LicenseNumber, driver.Availability)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), COALESCE(license_number, ''), availability
		FROM drivers WHERE id = $1
	`

	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.LicenseNumber,
		&driver.Availability,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), COALESCE(license_number, ''), availability
		FROM drivers ORDER BY id
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		if err := rows.Scan(&driver.ID, &driver.Name, &driver.Phone, &driver.LicenseNumber, &driver.Availability); err != nil {
			return nil, err
		}
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

// TryClaim atomically moves the driver AVAILABLE -> ON_TRIP.
func (r *DriverRepository) TryClaim(ctx context.Context, id string) (bool, error) {
	query := `UPDATE drivers SET availability = $1 WHERE id = $2 AND availability = $3`

	result, err := r.q.ExecContext(ctx, query, domain.DriverOnTrip, id, domain.DriverAvailable)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rowsAffected == 1 {
		return true, nil
	}

	// Distinguish "not available" from "no such driver".
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Release returns the driver to AVAILABLE. Idempotent.
func (r *DriverRepository) Release(ctx context.Context, id string) error {
	query := `UPDATE drivers SET availability = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, domain.DriverAvailable, id)
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

// SetAvailability moves the driver between AVAILABLE and OFFLINE. Refused
// while the driver is ON_TRIP: that allocation belongs to the active trip.
func (r *DriverRepository) SetAvailability(ctx context.Context, id string, availability domain.DriverAvailability) error {
	query := `UPDATE drivers SET availability = $1 WHERE id = $2 AND availability <> $3`

	result, err := r.q.ExecContext(ctx, query, availability, id, domain.DriverOnTrip)
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

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return repository.ErrDriverOnTrip
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
