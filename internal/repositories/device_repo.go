package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
)

type PostgresDeviceRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresDeviceRepository(pool *pgxpool.Pool) *PostgresDeviceRepository {
	return &PostgresDeviceRepository{pool: pool, now: time.Now}
}

func (r *PostgresDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	query := `INSERT INTO devices (name, owner, created_at)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		device.Name,
		device.Owner,
		r.now().UTC(),
	).Scan(&device.ID, &device.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *PostgresDeviceRepository) GetByID(ctx context.Context, id int64) (*models.Device, error) {
	query := `SELECT id, name, owner, created_at FROM devices WHERE id = $1`

	var device models.Device
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&device.ID,
		&device.Name,
		&device.Owner,
		&device.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &device, nil
}

func (r *PostgresDeviceRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM devices WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check device: %w", err)
	}
	return exists, nil
}

// List returns one page of devices and the total number of matches.
// Every search term must match name or owner.
func (r *PostgresDeviceRepository) List(ctx context.Context, q query.DeviceQuery) ([]*models.Device, int64, error) {
	var (
		conditions []string
		args       []any
	)
	for _, term := range q.Search {
		args = append(args, query.LikePattern(term))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR owner ILIKE $%d)", n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM devices`+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	ordering := q.Ordering
	if len(ordering) == 0 {
		ordering = query.DefaultDeviceOrdering
	}
	sql := fmt.Sprintf(`SELECT id, name, owner, created_at FROM devices%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		where, query.OrderBy(ordering), len(args)+1, len(args)+2)
	args = append(args, q.Page.Size, q.Page.Offset())

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := make([]*models.Device, 0)
	for rows.Next() {
		var device models.Device
		if err := rows.Scan(&device.ID, &device.Name, &device.Owner, &device.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, &device)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating devices: %w", err)
	}

	return devices, count, nil
}

func (r *PostgresDeviceRepository) Update(ctx context.Context, device *models.Device) error {
	query := `UPDATE devices
	          SET name = $1, owner = $2
	          WHERE id = $3
	          RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, device.Name, device.Owner, device.ID).Scan(&device.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	return nil
}

// Delete removes the device; its location logs go with it (ON DELETE CASCADE).
func (r *PostgresDeviceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
