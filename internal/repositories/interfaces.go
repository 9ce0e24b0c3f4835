package repositories

import (
	"context"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetByID(ctx context.Context, id int64) (*models.Device, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, q query.DeviceQuery) ([]*models.Device, int64, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, id int64) error
}

type LocationLogRepository interface {
	Create(ctx context.Context, log *models.LocationLog) error
	GetByID(ctx context.Context, id int64) (*models.LocationLog, error)
	List(ctx context.Context, q query.LocationQuery) ([]*models.LocationLog, int64, error)
	GetLatestForDevice(ctx context.Context, deviceID int64) (*models.LocationLog, error)
}

type LastLocationCache interface {
	Get(ctx context.Context, deviceID int64) (*models.LocationLog, error)
	Set(ctx context.Context, log *models.LocationLog) error
	Delete(ctx context.Context, deviceID int64) error
}
