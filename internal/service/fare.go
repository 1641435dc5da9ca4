package service

import (
	"context"
	"math"

	"viajes/internal/domain"
)

// FareEstimator computes the fare for an itinerary at request time.
// The fare is immutable once the trip is created.
type FareEstimator interface {
	Estimate(ctx context.Context, origin, destination domain.Location) (float64, error)
}

// FixedFare charges the same amount for every itinerary. The reference
// tariff is 50.0.
type FixedFare float64

// Estimate implements FareEstimator.
func (f FixedFare) Estimate(context.Context, domain.Location, domain.Location) (float64, error) {
	return float64(f), nil
}

// DistanceFare charges a base amount plus a per-kilometer rate over the
// haversine distance between the endpoints. It needs coordinates on both
// locations; without them it falls back to the base amount.
type DistanceFare struct {
	Base    float64
	PerKm   float64
	Minimum float64
}

// Estimate implements FareEstimator.
func (f DistanceFare) Estimate(_ context.Context, origin, destination domain.Location) (float64, error) {
	fare := f.Base + f.PerKm*haversineKm(origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	if fare < f.Minimum {
		fare = f.Minimum
	}
	return fare, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
