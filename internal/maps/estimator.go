package maps

import (
	"context"
	"fmt"
	"log"

	gmaps "googlemaps.github.io/maps"

	"viajes/internal/domain"
	"viajes/internal/service"
)

// Estimator computes fares from Google Directions driving distance. When
// the Directions API fails or returns no route it falls back to the wrapped
// estimator, so a trip request never fails on a maps outage.
type Estimator struct {
	client   *gmaps.Client
	base     float64
	perKm    float64
	fallback service.FareEstimator
}

// NewEstimator creates a Directions-backed estimator.
func NewEstimator(apiKey string, base, perKm float64, fallback service.FareEstimator) (*Estimator, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &Estimator{
		client:   client,
		base:     base,
		perKm:    perKm,
		fallback: fallback,
	}, nil
}

// Estimate implements service.FareEstimator.
func (e *Estimator) Estimate(ctx context.Context, origin, destination domain.Location) (float64, error) {
	routes, _, err := e.client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      locationQuery(origin),
		Destination: locationQuery(destination),
		Mode:        gmaps.TravelModeDriving,
	})
	if err != nil || len(routes) == 0 {
		log.Printf("maps: directions lookup failed (%v), using fallback fare", err)
		return e.fallback.Estimate(ctx, origin, destination)
	}

	var meters int
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return e.base + e.perKm*float64(meters)/1000, nil
}

func locationQuery(loc domain.Location) string {
	if loc.Lat != 0 || loc.Lng != 0 {
		return fmt.Sprintf("%f,%f", loc.Lat, loc.Lng)
	}
	return loc.Address
}

// Ensure Estimator implements the fare contract.
var _ service.FareEstimator = (*Estimator)(nil)
