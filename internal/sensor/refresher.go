// Package sensor keeps every configured sensor's state current by polling
// NWS, filtering the alerts for the sensor's zone and publishing the result.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/adapter/nws"
	"github.com/couchcryptid/nws-warnings/internal/config"
	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/couchcryptid/nws-warnings/internal/observability"
	"github.com/couchcryptid/nws-warnings/internal/store"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

// ErrThrottled is returned by Refresh when the sensor was refreshed less
// than one interval ago.
var ErrThrottled = errors.New("refresh throttled")

const initialBackoff = 15 * time.Second

// ZoneResolver resolves the zone a sensor watches.
type ZoneResolver interface {
	Resolve(ctx context.Context, s config.Sensor) (domain.Zone, error)
}

// AlertSource fetches the alerts for a query.
type AlertSource interface {
	FetchAlerts(ctx context.Context, q nws.Query) ([]domain.Alert, error)
}

// Publisher delivers snapshots to a sink such as Home Assistant or Kafka.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, s domain.Snapshot) error
}

// Options wires a Refresher.
type Options struct {
	Sensors    []config.Sensor
	Zones      ZoneResolver
	Source     AlertSource
	Store      store.Store
	Publishers []Publisher
	Interval   time.Duration
	Clock      clockwork.Clock // defaults to the real clock
}

// Refresher runs the resolve-fetch-filter-publish cycle for each sensor.
type Refresher struct {
	sensors    []config.Sensor
	zones      ZoneResolver
	source     AlertSource
	store      store.Store
	publishers []Publisher
	interval   time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu          sync.RWMutex
	snapshots   map[string]domain.Snapshot
	lastSuccess map[string]time.Time
}

// New creates a Refresher.
func New(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemory()
	}
	return &Refresher{
		sensors:     opts.Sensors,
		zones:       opts.Zones,
		source:      opts.Source,
		store:       st,
		publishers:  opts.Publishers,
		interval:    opts.Interval,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		snapshots:   make(map[string]domain.Snapshot, len(opts.Sensors)),
		lastSuccess: make(map[string]time.Time, len(opts.Sensors)),
	}
}

// Restore loads the last stored snapshot of every sensor so that state is
// served before the first refresh completes.
func (r *Refresher) Restore(ctx context.Context) {
	for _, s := range r.sensors {
		snap, err := r.store.Load(ctx, s.ID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			r.logger.Warn("restore snapshot failed", "sensor", s.ID, "error", err)
			continue
		}
		r.mu.Lock()
		r.snapshots[s.ID] = snap
		r.mu.Unlock()
		r.logger.Info("restored snapshot", "sensor", s.ID, "state", snap.State, "updated_at", snap.UpdatedAt)
	}
}

// Run restores stored state, then refreshes each sensor immediately and every
// interval until the context is cancelled. A failed refresh is retried with
// exponential backoff, capped at the interval.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "sensors", len(r.sensors), "interval", r.interval)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	r.Restore(ctx)

	var wg sync.WaitGroup
	for _, s := range r.sensors {
		wg.Add(1)
		go func(s config.Sensor) {
			defer wg.Done()
			r.runSensor(ctx, s)
		}(s)
	}
	wg.Wait()

	r.logger.Info("refresher stopping", "reason", ctx.Err())
	return nil
}

func (r *Refresher) runSensor(ctx context.Context, s config.Sensor) {
	backoff := initialBackoff
	for {
		delay := r.interval
		err := r.Refresh(ctx, s)
		switch {
		case ctx.Err() != nil:
			return
		case err == nil, errors.Is(err, ErrThrottled):
			backoff = initialBackoff
		default:
			delay = min(backoff, r.interval)
			backoff = retry.NextBackoff(backoff, r.interval)
		}
		if !sleepWithContext(ctx, r.clock, delay) {
			return
		}
	}
}

// Refresh runs one cycle for a sensor. On failure the previous snapshot is
// kept. Publisher and store failures are logged and do not fail the refresh.
func (r *Refresher) Refresh(ctx context.Context, s config.Sensor) error {
	start := r.clock.Now()

	r.mu.RLock()
	last, ok := r.lastSuccess[s.ID]
	r.mu.RUnlock()
	if ok && start.Sub(last) < r.interval {
		return ErrThrottled
	}

	zone, err := r.zones.Resolve(ctx, s)
	if err != nil {
		return r.fail(s, "zone_error", fmt.Errorf("resolve zone: %w", err))
	}

	filter, err := domain.NewAlertFilter(s.FilterConfig(zone), r.clock)
	if err != nil {
		return r.fail(s, "config_error", err)
	}

	alerts, err := r.source.FetchAlerts(ctx, nws.NewQuery(filter.Config(), start))
	if err != nil {
		return r.fail(s, "fetch_error", fmt.Errorf("fetch alerts: %w", err))
	}

	matched := filter.Filter(alerts)
	snap := domain.Snapshot{
		SensorID:    s.ID,
		Name:        s.Name,
		Icon:        s.Icon,
		Zone:        zone.ID,
		SensorState: domain.Project(matched),
		UpdatedAt:   start,
	}

	r.mu.Lock()
	r.snapshots[s.ID] = snap
	r.lastSuccess[s.ID] = start
	r.mu.Unlock()

	if err := r.store.Save(ctx, snap); err != nil {
		r.logger.Warn("save snapshot failed", "sensor", s.ID, "error", err)
		r.metrics.Publishes.WithLabelValues("store", "error").Inc()
	} else {
		r.metrics.Publishes.WithLabelValues("store", "success").Inc()
	}
	r.publish(ctx, snap)

	r.metrics.Refreshes.WithLabelValues(s.ID, "success").Inc()
	r.metrics.FetchedAlerts.WithLabelValues(s.ID).Set(float64(len(alerts)))
	r.metrics.MatchedAlerts.WithLabelValues(s.ID).Set(float64(len(matched)))
	r.metrics.RefreshDuration.WithLabelValues(s.ID).Observe(r.clock.Since(start).Seconds())

	r.logger.Info("sensor refreshed",
		"sensor", s.ID,
		"zone", zone.ID,
		"state", snap.State,
		"highest_severity", snap.Attributes.HighestSeverity,
		"fetched", len(alerts),
	)
	return nil
}

func (r *Refresher) fail(s config.Sensor, outcome string, err error) error {
	r.metrics.Refreshes.WithLabelValues(s.ID, outcome).Inc()
	r.logger.Warn("refresh failed, keeping previous state", "sensor", s.ID, "outcome", outcome, "error", err)
	return err
}

func (r *Refresher) publish(ctx context.Context, snap domain.Snapshot) {
	for _, p := range r.publishers {
		if err := p.Publish(ctx, snap); err != nil {
			r.logger.Warn("publish failed", "sensor", snap.SensorID, "sink", p.Name(), "error", err)
			r.metrics.Publishes.WithLabelValues(p.Name(), "error").Inc()
			continue
		}
		r.metrics.Publishes.WithLabelValues(p.Name(), "success").Inc()
	}
}

// Snapshot returns the latest snapshot of a sensor.
func (r *Refresher) Snapshot(id string) (domain.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snapshots[id]
	return s, ok
}

// Snapshots returns the latest snapshot of every sensor that has one, in
// configuration order.
func (r *Refresher) Snapshots() []domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Snapshot, 0, len(r.snapshots))
	for _, s := range r.sensors {
		if snap, ok := r.snapshots[s.ID]; ok {
			out = append(out, snap)
		}
	}
	return out
}

// CheckReadiness returns nil once every sensor has refreshed successfully at
// least once, or an error naming the sensors still pending.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []string
	for _, s := range r.sensors {
		if _, ok := r.lastSuccess[s.ID]; !ok {
			pending = append(pending, s.ID)
		}
	}
	if len(pending) > 0 {
		return fmt.Errorf("sensors not yet refreshed: %s", strings.Join(pending, ", "))
	}
	return nil
}

// sleepWithContext is retry.SleepWithContext on an injectable clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
