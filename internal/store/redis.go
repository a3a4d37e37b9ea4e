package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "nws_warnings:snapshot:"

// Redis is a Store backed by Redis. Snapshots expire after the configured
// TTL so that a sensor removed from configuration does not linger.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis connects to the Redis server at rawURL, e.g.
// redis://localhost:6379/0, and verifies the connection.
func OpenRedis(ctx context.Context, rawURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Save(ctx context.Context, s domain.Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(s.SensorID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", s.SensorID, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context, sensorID string) (domain.Snapshot, error) {
	payload, err := r.client.Get(ctx, redisKey(sensorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("loading snapshot %s: %w", sensorID, err)
	}

	var s domain.Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", sensorID, err)
	}
	return s, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func redisKey(sensorID string) string {
	return keyPrefix + sensorID
}
