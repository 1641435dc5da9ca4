package service

import (
	"context"
	"math"
	"testing"

	"viajes/internal/domain"
)

func TestFixedFare(t *testing.T) {
	t.Parallel()

	fare, err := FixedFare(50.0).Estimate(context.Background(), domain.Location{}, domain.Location{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare != 50.0 {
		t.Errorf("expected 50.0, got %v", fare)
	}
}

func TestDistanceFare(t *testing.T) {
	t.Parallel()

	estimator := DistanceFare{Base: 20, PerKm: 6, Minimum: 35}

	// Obelisco to Plaza de Mayo, roughly 1 km.
	origin := domain.Location{Lat: -34.6037, Lng: -58.3816}
	destination := domain.Location{Lat: -34.6083, Lng: -58.3712}

	fare, err := estimator.Estimate(context.Background(), origin, destination)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare <= estimator.Minimum {
		t.Errorf("expected fare above the minimum for a real distance, got %v", fare)
	}
	if fare > 40 {
		t.Errorf("fare %v implausibly high for ~1km", fare)
	}
}

func TestDistanceFare_MinimumApplies(t *testing.T) {
	t.Parallel()

	estimator := DistanceFare{Base: 1, PerKm: 6, Minimum: 35}
	same := domain.Location{Lat: -34.6, Lng: -58.4}

	fare, err := estimator.Estimate(context.Background(), same, same)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare != 35 {
		t.Errorf("expected the minimum fare, got %v", fare)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	t.Parallel()

	// Buenos Aires to Rosario is about 280 km as the crow flies.
	got := haversineKm(-34.6037, -58.3816, -32.9442, -60.6505)
	if math.Abs(got-280) > 15 {
		t.Errorf("expected ~280km, got %v", got)
	}
}
