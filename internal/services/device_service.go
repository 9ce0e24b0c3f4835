package services

import (
	"context"
	"fmt"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
	"github.com/prudhvinik1/locationtracker/internal/repositories"
	"github.com/prudhvinik1/locationtracker/internal/validation"
	"github.com/rs/zerolog"
)

type DeviceService struct {
	deviceRepo repositories.DeviceRepository
	cache      repositories.LastLocationCache
	logger     zerolog.Logger
}

// NewDeviceService builds the service. cache may be nil.
func NewDeviceService(
	deviceRepo repositories.DeviceRepository,
	cache repositories.LastLocationCache,
	logger zerolog.Logger,
) *DeviceService {
	return &DeviceService{
		deviceRepo: deviceRepo,
		cache:      cache,
		logger:     logger.With().Str("component", "device_service").Logger(),
	}
}

func (s *DeviceService) Create(ctx context.Context, in validation.DeviceInput) (*models.Device, error) {
	name, owner, err := validation.ValidateDevice(in, "", "", false)
	if err != nil {
		return nil, err
	}

	device := &models.Device{Name: name, Owner: owner}
	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	s.logger.Info().Int64("device_id", device.ID).Msg("device created")
	return device, nil
}

func (s *DeviceService) Get(ctx context.Context, id int64) (*models.Device, error) {
	return s.deviceRepo.GetByID(ctx, id)
}

// List returns the requested page and the total match count, or
// query.ErrInvalidPage when the page lies past the end.
func (s *DeviceService) List(ctx context.Context, q query.DeviceQuery) ([]*models.Device, int64, error) {
	devices, count, err := s.deviceRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if err := q.Page.Check(count); err != nil {
		return nil, 0, err
	}
	return devices, count, nil
}

// Update applies a full (PUT) or partial (PATCH) update.
func (s *DeviceService) Update(ctx context.Context, id int64, in validation.DeviceInput, partial bool) (*models.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, owner, err := validation.ValidateDevice(in, device.Name, device.Owner, partial)
	if err != nil {
		return nil, err
	}

	device.Name = name
	device.Owner = owner
	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// Delete removes the device together with its logs and cached last location.
func (s *DeviceService) Delete(ctx context.Context, id int64) error {
	if err := s.deviceRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int64("device_id", id).Msg("failed to clear cached last location")
		}
	}

	s.logger.Info().Int64("device_id", id).Msg("device deleted")
	return nil
}
