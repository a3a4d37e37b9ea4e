package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nws_warnings"

// Metrics holds the Prometheus collectors for sensor refreshes and the
// upstream services they depend on.
type Metrics struct {
	RefresherRunning prometheus.Gauge
	Refreshes        *prometheus.CounterVec   // labels: sensor, outcome={success,zone_error,config_error,fetch_error}
	RefreshDuration  *prometheus.HistogramVec // labels: sensor
	MatchedAlerts    *prometheus.GaugeVec     // labels: sensor
	FetchedAlerts    *prometheus.GaugeVec     // labels: sensor

	// NWS API metrics.
	NWSRequests        *prometheus.CounterVec   // labels: endpoint={alerts,points}, outcome={success,error}
	NWSRequestDuration *prometheus.HistogramVec // labels: endpoint
	PointsCache        *prometheus.CounterVec   // labels: result={hit,miss}

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Sink metrics.
	Publishes *prometheus.CounterVec // labels: sink, outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the sensor refresher is active, 0 when shut down.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Sensor refresh cycles by sensor and outcome.",
		}, []string{"sensor", "outcome"}),
		RefreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete resolve-fetch-filter-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"sensor"}),
		MatchedAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matched_alerts",
			Help:      "Alerts matching the sensor filter after the last successful refresh.",
		}, []string{"sensor"}),
		FetchedAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetched_alerts",
			Help:      "Alerts returned by NWS for the sensor before filtering.",
		}, []string{"sensor"}),
		NWSRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nws_requests_total",
			Help:      "NWS API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		NWSRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nws_request_duration_seconds",
			Help:      "NWS API request duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		PointsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_cache_total",
			Help:      "NWS points lookups served by result.",
		}, []string{"result"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		Publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Sensor state publications by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RefresherRunning,
		m.Refreshes,
		m.RefreshDuration,
		m.MatchedAlerts,
		m.FetchedAlerts,
		m.NWSRequests,
		m.NWSRequestDuration,
		m.PointsCache,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.Publishes,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
