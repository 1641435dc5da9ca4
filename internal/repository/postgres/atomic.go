package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"viajes/internal/repository"
)

// Atomic runs mutation pairs inside one database transaction, handing fn
// transaction-scoped repositories.
type Atomic struct {
	db *sql.DB
}

// NewAtomic creates a transactional unit runner.
func NewAtomic(db *sql.DB) *Atomic {
	return &Atomic{db: db}
}

// Run implements repository.Atomic.
func (a *Atomic) Run(ctx context.Context, fn func(trips repository.TripRepository, drivers repository.DriverRepository) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(NewTripRepositoryWithTx(tx), NewDriverRepositoryWithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ensure Atomic implements repository.Atomic.
var _ repository.Atomic = (*Atomic)(nil)
