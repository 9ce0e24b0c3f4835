package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/prudhvinik1/locationtracker/internal/query"
)

const foreignKeyViolation = "23503"

const locationColumns = `id, device_id, latitude, longitude, accuracy_meters, captured_at, created_at`

type PostgresLocationLogRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresLocationLogRepository(pool *pgxpool.Pool) *PostgresLocationLogRepository {
	return &PostgresLocationLogRepository{pool: pool, now: time.Now}
}

func (r *PostgresLocationLogRepository) Create(ctx context.Context, log *models.LocationLog) error {
	sql := `INSERT INTO location_logs (device_id, latitude, longitude, accuracy_meters, captured_at, created_at)
	        VALUES ($1, $2, $3, $4, $5, $6)
	        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, sql,
		log.DeviceID,
		toNumeric(log.Latitude),
		toNumeric(log.Longitude),
		log.AccuracyMeters,
		log.CapturedAt,
		r.now().UTC(),
	).Scan(&log.ID, &log.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return ErrDeviceReference
	}
	if err != nil {
		return fmt.Errorf("failed to create location log: %w", err)
	}
	return nil
}

func (r *PostgresLocationLogRepository) GetByID(ctx context.Context, id int64) (*models.LocationLog, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM location_logs WHERE id = $1`, id)

	log, err := scanLocationLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location log: %w", err)
	}
	return log, nil
}

// List returns one page of logs and the total number of matches.
func (r *PostgresLocationLogRepository) List(ctx context.Context, q query.LocationQuery) ([]*models.LocationLog, int64, error) {
	where := ""
	var args []any
	if q.Filter.DeviceID != nil {
		where = " WHERE device_id = $1"
		args = append(args, *q.Filter.DeviceID)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM location_logs`+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count location logs: %w", err)
	}

	ordering := q.Ordering
	if len(ordering) == 0 {
		ordering = query.DefaultLocationOrdering
	}
	sql := fmt.Sprintf(`SELECT %s FROM location_logs%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		locationColumns, where, query.OrderBy(ordering), len(args)+1, len(args)+2)
	args = append(args, q.Page.Size, q.Page.Offset())

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query location logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.LocationLog, 0)
	for rows.Next() {
		log, err := scanLocationLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan location log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating location logs: %w", err)
	}

	return logs, count, nil
}

// GetLatestForDevice returns the newest captured reading of a device.
func (r *PostgresLocationLogRepository) GetLatestForDevice(ctx context.Context, deviceID int64) (*models.LocationLog, error) {
	sql := `SELECT ` + locationColumns + ` FROM location_logs
	        WHERE device_id = $1
	        ORDER BY captured_at DESC, id DESC
	        LIMIT 1`

	log, err := scanLocationLog(r.pool.QueryRow(ctx, sql, deviceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest location log: %w", err)
	}
	return log, nil
}

func scanLocationLog(row pgx.Row) (*models.LocationLog, error) {
	var (
		log      models.LocationLog
		lat, lon pgtype.Numeric
	)
	err := row.Scan(
		&log.ID,
		&log.DeviceID,
		&lat,
		&lon,
		&log.AccuracyMeters,
		&log.CapturedAt,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if log.Latitude, err = fromNumeric(lat); err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	if log.Longitude, err = fromNumeric(lon); err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	return &log, nil
}
