package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"viajes/internal/domain"
	"viajes/internal/repository"
)

// DriverService manages driver registration and availability outside the
// trip lifecycle. Allocation itself (AVAILABLE to ON_TRIP and back) is the
// trip engine's job; drivers only toggle between AVAILABLE and OFFLINE here.
type DriverService struct {
	driverRepo repository.DriverRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo repository.DriverRepository) *DriverService {
	return &DriverService{driverRepo: driverRepo}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name          string
	Phone         string
	LicenseNumber string
}

// RegisterDriver creates a new driver, AVAILABLE by default.
func (s *DriverService) RegisterDriver(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, ErrInvalidProfile
	}

	driver := &domain.Driver{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Availability:  domain.DriverAvailable,
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// GetAllDrivers retrieves all registered drivers.
func (s *DriverService) GetAllDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// SetOffline takes a driver off duty. Refused while the driver is on a trip.
func (s *DriverService) SetOffline(ctx context.Context, driverID string) error {
	return s.setAvailability(ctx, driverID, domain.DriverOffline)
}

// SetAvailable puts a driver back on duty. Refused while the driver is on
// a trip; only trip completion or cancellation releases an allocation.
func (s *DriverService) SetAvailable(ctx context.Context, driverID string) error {
	return s.setAvailability(ctx, driverID, domain.DriverAvailable)
}

func (s *DriverService) setAvailability(ctx context.Context, driverID string, availability domain.DriverAvailability) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if err := s.driverRepo.SetAvailability(ctx, driverID, availability); err != nil {
		if errors.Is(err, repository.ErrDriverOnTrip) {
			return ErrDriverOnTrip
		}
		return err
	}
	return nil
}
