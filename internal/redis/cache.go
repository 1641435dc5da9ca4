package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"viajes/internal/domain"
)

// CacheStore caches trip snapshots in Redis so hot read paths (trip detail
// polling, the available-trips board) skip the database. Snapshots are
// written and invalidated only after a mutation commits, so a hit can be
// stale by at most one TTL, never torn.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

const (
	tripCacheTTL      = 30 * time.Second
	availableCacheTTL = 5 * time.Second

	tripCachePrefix   = "cache:trip:"
	availableCacheKey = "cache:trips:available"
)

// GetTrip retrieves a trip snapshot. A cache miss returns nil, nil.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	data, err := s.client.Get(ctx, tripCachePrefix+tripID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trip domain.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip snapshot.
func (s *CacheStore) SetTrip(ctx context.Context, trip *domain.Trip) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tripCachePrefix+trip.ID, data, tripCacheTTL).Err()
}

// InvalidateTrip removes a trip snapshot and the available-trips listing.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	return s.client.Del(ctx, tripCachePrefix+tripID, availableCacheKey).Err()
}

// GetAvailableTrips retrieves the cached available-trips listing.
// A cache miss returns nil, nil.
func (s *CacheStore) GetAvailableTrips(ctx context.Context) ([]*domain.Trip, error) {
	data, err := s.client.Get(ctx, availableCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trips []*domain.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// SetAvailableTrips stores the available-trips listing with a short TTL.
func (s *CacheStore) SetAvailableTrips(ctx context.Context, trips []*domain.Trip) error {
	data, err := json.Marshal(trips)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, availableCacheKey, data, availableCacheTTL).Err()
}
