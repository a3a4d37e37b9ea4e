// Package store persists the latest snapshot of each sensor so that state
// survives restarts.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/couchcryptid/nws-warnings/internal/domain"
)

// ErrNotFound is returned by Load when no snapshot exists for a sensor.
var ErrNotFound = errors.New("snapshot not found")

// Store saves and loads sensor snapshots keyed by sensor id.
type Store interface {
	Save(ctx context.Context, s domain.Snapshot) error
	Load(ctx context.Context, sensorID string) (domain.Snapshot, error)
	Close() error
}

// Memory is a Store that keeps snapshots in process memory.
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snapshots: make(map[string]domain.Snapshot)}
}

func (m *Memory) Save(_ context.Context, s domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.SensorID] = s
	return nil
}

func (m *Memory) Load(_ context.Context, sensorID string) (domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[sensorID]
	if !ok {
		return domain.Snapshot{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) Close() error { return nil }
