package postgres

import (
	"context"
	"database/sql"
	"errors"

	"viajes/internal/domain"
	"viajes/internal/repository"
)

// ClientRepository is a PostgreSQL implementation of repository.ClientRepository.
type ClientRepository struct {
	q Querier
}

// NewClientRepository creates a new PostgreSQL client repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{q: db}
}

// Create adds a new client.
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `INSERT INTO clients (id, name, phone, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.ExecContext(ctx, query, client.ID, client.Name, client.Phone, client.CreatedAt)
	return err
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM clients WHERE id = $1`
	return r.scanClient(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a client by phone number.
func (r *ClientRepository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM clients WHERE phone = $1`
	return r.scanClient(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all clients.
func (r *ClientRepository) GetAll(ctx context.Context) ([]*domain.Client, error) {
	query := `SELECT id, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM clients ORDER BY created_at`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		var client domain.Client
		if err := rows.Scan(&client.ID, &client.Name, &client.Phone, &client.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, &client)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) scanClient(row *sql.Row) (*domain.Client, error) {
	var client domain.Client
	err := row.Scan(&client.ID, &client.Name, &client.Phone, &client.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// Ensure ClientRepository implements repository.ClientRepository.
var _ repository.ClientRepository = (*ClientRepository)(nil)
