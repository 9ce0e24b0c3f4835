package services

import (
	"context"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
	"github.com/stretchr/testify/mock"
)

type mockDeviceRepository struct {
	mock.Mock
}

func (m *mockDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *mockDeviceRepository) GetByID(ctx context.Context, id int64) (*models.Device, error) {
	args := m.Called(ctx, id)
	device, _ := args.Get(0).(*models.Device)
	return device, args.Error(1)
}

func (m *mockDeviceRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockDeviceRepository) List(ctx context.Context, q query.DeviceQuery) ([]*models.Device, int64, error) {
	args := m.Called(ctx, q)
	devices, _ := args.Get(0).([]*models.Device)
	return devices, args.Get(1).(int64), args.Error(2)
}

func (m *mockDeviceRepository) Update(ctx context.Context, device *models.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *mockDeviceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockLocationLogRepository struct {
	mock.Mock
}

func (m *mockLocationLogRepository) Create(ctx context.Context, log *models.LocationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *mockLocationLogRepository) GetByID(ctx context.Context, id int64) (*models.LocationLog, error) {
	args := m.Called(ctx, id)
	log, _ := args.Get(0).(*models.LocationLog)
	return log, args.Error(1)
}

func (m *mockLocationLogRepository) List(ctx context.Context, q query.LocationQuery) ([]*models.LocationLog, int64, error) {
	args := m.Called(ctx, q)
	logs, _ := args.Get(0).([]*models.LocationLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

func (m *mockLocationLogRepository) GetLatestForDevice(ctx context.Context, deviceID int64) (*models.LocationLog, error) {
	args := m.Called(ctx, deviceID)
	log, _ := args.Get(0).(*models.LocationLog)
	return log, args.Error(1)
}

type mockLastLocationCache struct {
	mock.Mock
}

func (m *mockLastLocationCache) Get(ctx context.Context, deviceID int64) (*models.LocationLog, error) {
	args := m.Called(ctx, deviceID)
	log, _ := args.Get(0).(*models.LocationLog)
	return log, args.Error(1)
}

func (m *mockLastLocationCache) Set(ctx context.Context, log *models.LocationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *mockLastLocationCache) Delete(ctx context.Context, deviceID int64) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}
