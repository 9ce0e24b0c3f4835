package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
	"github.com/prudhvinik1/locationtracker/internal/repositories"
	"github.com/prudhvinik1/locationtracker/internal/validation"
	"github.com/rs/zerolog"
)

type LocationService struct {
	deviceRepo   repositories.DeviceRepository
	locationRepo repositories.LocationLogRepository
	cache        repositories.LastLocationCache
	rules        validation.LocationRules
	logger       zerolog.Logger
}

// NewLocationService builds the service. cache may be nil; tolerance bounds
// how far in the future captured_at may be.
func NewLocationService(
	deviceRepo repositories.DeviceRepository,
	locationRepo repositories.LocationLogRepository,
	cache repositories.LastLocationCache,
	tolerance time.Duration,
	logger zerolog.Logger,
) *LocationService {
	return &LocationService{
		deviceRepo:   deviceRepo,
		locationRepo: locationRepo,
		cache:        cache,
		rules:        validation.LocationRules{CapturedAtTolerance: tolerance, Now: time.Now},
		logger:       logger.With().Str("component", "location_service").Logger(),
	}
}

func (s *LocationService) Create(ctx context.Context, in validation.LocationLogInput) (*models.LocationLog, error) {
	log, err := s.rules.Validate(ctx, in, s.deviceRepo.Exists)
	if err != nil {
		return nil, err
	}

	err = s.locationRepo.Create(ctx, &log)
	if errors.Is(err, repositories.ErrDeviceReference) {
		// The device was deleted between validation and insert.
		errs := validation.NewErrors()
		errs.Add("device", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", log.DeviceID))
		return nil, errs
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create location log: %w", err)
	}

	s.refreshLastLocation(ctx, &log)
	return &log, nil
}

func (s *LocationService) Get(ctx context.Context, id int64) (*models.LocationLog, error) {
	return s.locationRepo.GetByID(ctx, id)
}

// List returns the requested page and the total match count. A filter that
// can never match yields an empty result without touching the store.
func (s *LocationService) List(ctx context.Context, q query.LocationQuery) ([]*models.LocationLog, int64, error) {
	if q.Filter.NoMatch {
		if err := q.Page.Check(0); err != nil {
			return nil, 0, err
		}
		return []*models.LocationLog{}, 0, nil
	}

	logs, count, err := s.locationRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if err := q.Page.Check(count); err != nil {
		return nil, 0, err
	}
	return logs, count, nil
}

// LastLocation returns the newest captured reading of a device, preferring
// the cache and re-populating it on a miss.
func (s *LocationService) LastLocation(ctx context.Context, deviceID int64) (*models.LocationLog, error) {
	exists, err := s.deviceRepo.Exists(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repositories.ErrNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, deviceID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn().Err(err).Int64("device_id", deviceID).Msg("last location cache read failed")
		}
	}

	log, err := s.locationRepo.GetLatestForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, log); err != nil {
			s.logger.Warn().Err(err).Int64("device_id", deviceID).Msg("last location cache write failed")
		}
	}
	return log, nil
}

// refreshLastLocation caches log when it is at least as new as the cached one.
// Cache failures never fail the request.
func (s *LocationService) refreshLastLocation(ctx context.Context, log *models.LocationLog) {
	if s.cache == nil {
		return
	}

	cached, err := s.cache.Get(ctx, log.DeviceID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		s.logger.Warn().Err(err).Int64("device_id", log.DeviceID).Msg("last location cache read failed")
		return
	case log.CapturedAt.Before(cached.CapturedAt):
		return
	}

	if err := s.cache.Set(ctx, log); err != nil {
		s.logger.Warn().Err(err).Int64("device_id", log.DeviceID).Msg("last location cache write failed")
	}
}
