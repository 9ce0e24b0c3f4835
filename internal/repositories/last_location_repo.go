package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prudhvinik1/locationtracker/internal/models"
	"github.com/redis/go-redis/v9"
)

const lastLocationKeyFormat = "device:%d:last_location"

// RedisLastLocationCache keeps the newest reading of each device.
type RedisLastLocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLastLocationCache(client *redis.Client, ttl time.Duration) *RedisLastLocationCache {
	return &RedisLastLocationCache{client: client, ttl: ttl}
}

// Get returns ErrNotFound on a cache miss.
func (c *RedisLastLocationCache) Get(ctx context.Context, deviceID int64) (*models.LocationLog, error) {
	data, err := c.client.Get(ctx, lastLocationKey(deviceID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last location: %w", err)
	}

	var log models.LocationLog
	if err := json.Unmarshal([]byte(data), &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal last location: %w", err)
	}
	return &log, nil
}

func (c *RedisLastLocationCache) Set(ctx context.Context, log *models.LocationLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal last location: %w", err)
	}

	if err := c.client.Set(ctx, lastLocationKey(log.DeviceID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set last location: %w", err)
	}
	return nil
}

func (c *RedisLastLocationCache) Delete(ctx context.Context, deviceID int64) error {
	if err := c.client.Del(ctx, lastLocationKey(deviceID)).Err(); err != nil {
		return fmt.Errorf("failed to delete last location: %w", err)
	}
	return nil
}

func lastLocationKey(deviceID int64) string {
	return fmt.Sprintf(lastLocationKeyFormat, deviceID)
}
