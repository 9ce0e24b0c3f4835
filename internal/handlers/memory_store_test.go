package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
	"github.com/prudhvinik1/locationtracker/internal/repositories"
)

// memoryStore is an in-memory stand-in for both Postgres repositories.
type memoryStore struct {
	mu      sync.Mutex
	nextID  int64
	devices map[int64]models.Device
	logs    map[int64]models.LocationLog
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		devices: make(map[int64]models.Device),
		logs:    make(map[int64]models.LocationLog),
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memoryDevices struct{ *memoryStore }

type memoryLogs struct{ *memoryStore }

func (m memoryDevices) Create(ctx context.Context, device *models.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	device.ID = m.id()
	device.CreatedAt = time.Now().UTC().Add(time.Duration(device.ID) * time.Millisecond)
	m.devices[device.ID] = *device
	return nil
}

func (m memoryDevices) GetByID(ctx context.Context, id int64) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	device, ok := m.devices[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &device, nil
}

func (m memoryDevices) Exists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.devices[id]
	return ok, nil
}

func (m memoryDevices) List(ctx context.Context, q query.DeviceQuery) ([]*models.Device, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Device
	for _, d := range m.devices {
		d := d
		if matchesAll(d, q.Search) {
			matched = append(matched, &d)
		}
	}
	// Newest first, which is what every test relies on.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return paginate(matched, q.Page), int64(len(matched)), nil
}

func matchesAll(d models.Device, terms []string) bool {
	for _, term := range terms {
		term = strings.ToLower(term)
		if !strings.Contains(strings.ToLower(d.Name), term) && !strings.Contains(strings.ToLower(d.Owner), term) {
			return false
		}
	}
	return true
}

func (m memoryDevices) Update(ctx context.Context, device *models.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.devices[device.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	current.Name = device.Name
	current.Owner = device.Owner
	m.devices[device.ID] = current
	device.CreatedAt = current.CreatedAt
	return nil
}

func (m memoryDevices) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.devices, id)
	for logID, log := range m.logs {
		if log.DeviceID == id {
			delete(m.logs, logID)
		}
	}
	return nil
}

func (m memoryLogs) Create(ctx context.Context, log *models.LocationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[log.DeviceID]; !ok {
		return repositories.ErrDeviceReference
	}
	log.ID = m.id()
	log.CreatedAt = time.Now().UTC()
	m.logs[log.ID] = *log
	return nil
}

func (m memoryLogs) GetByID(ctx context.Context, id int64) (*models.LocationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log, ok := m.logs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &log, nil
}

func (m memoryLogs) List(ctx context.Context, q query.LocationQuery) ([]*models.LocationLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.LocationLog
	for _, l := range m.logs {
		l := l
		if q.Filter.DeviceID == nil || *q.Filter.DeviceID == l.DeviceID {
			matched = append(matched, &l)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CapturedAt.After(matched[j].CapturedAt) })
	return paginate(matched, q.Page), int64(len(matched)), nil
}

func (m memoryLogs) GetLatestForDevice(ctx context.Context, deviceID int64) (*models.LocationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *models.LocationLog
	for _, l := range m.logs {
		l := l
		if l.DeviceID == deviceID && (latest == nil || l.CapturedAt.After(latest.CapturedAt)) {
			latest = &l
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

func paginate[T any](items []T, p query.Pagination) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
