// Package nws is a client for the api.weather.gov alerts and points
// endpoints.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/cache"
	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/couchcryptid/nws-warnings/internal/observability"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	endpointAlerts = "alerts"
	endpointPoints = "points"

	geoJSON = "application/geo+json"

	maxRetryWait = 10 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL         string
	UserAgent       string
	Timeout         time.Duration // per attempt
	RetryMax        int
	PointsCacheSize int
}

// Client fetches alerts from the NWS API. Transient failures (connection
// errors, 429 and 5xx responses) are retried.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	points     *cache.LRU[[]string]
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NWS client.
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMax = maxRetryWait
	rc.HTTPClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: rc.StandardClient(),
		points:     cache.NewLRU[[]string](cfg.PointsCacheSize),
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchAlerts returns the alerts for a point. Cancel messages and features
// that cannot be decoded are skipped.
func (c *Client) FetchAlerts(ctx context.Context, q Query) ([]domain.Alert, error) {
	var body alertCollection
	if err := c.get(ctx, endpointAlerts, c.baseURL+q.path()+"?"+q.values().Encode(), &body); err != nil {
		return nil, err
	}

	alerts := make([]domain.Alert, 0, len(body.Features))
	for _, f := range body.Features {
		a, ok := c.toAlert(f)
		if ok {
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}

// ResolvePoint returns the UGC codes of the forecast zone, county and fire
// weather zone containing the point. Results are cached.
func (c *Client) ResolvePoint(ctx context.Context, lat, lon float64) ([]string, error) {
	key := formatPoint(lat, lon)
	if codes, ok := c.points.Get(key); ok {
		c.metrics.PointsCache.WithLabelValues("hit").Inc()
		return codes, nil
	}
	c.metrics.PointsCache.WithLabelValues("miss").Inc()

	var body pointResponse
	if err := c.get(ctx, endpointPoints, c.baseURL+"/points/"+key, &body); err != nil {
		return nil, err
	}

	codes := make([]string, 0, 3)
	for _, ref := range []string{body.Properties.ForecastZone, body.Properties.County, body.Properties.FireWeatherZone} {
		if code := zoneCode(ref); code != "" {
			codes = appendUnique(codes, code)
		}
	}
	c.points.Put(key, codes)
	return codes, nil
}

func (c *Client) get(ctx context.Context, endpoint, fullURL string, out any) error {
	start := time.Now()
	err := c.doGet(ctx, fullURL, out)
	c.metrics.NWSRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.NWSRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("nws %s: %w", endpoint, err)
	}
	c.metrics.NWSRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

func (c *Client) doGet(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", geoJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Query selects alerts for a point. Severity and message type are passed to
// the API as a coarse pre-filter; the sensor filter remains authoritative.
type Query struct {
	Latitude     float64
	Longitude    float64
	Severities   domain.SeveritySet
	MessageTypes domain.MessageTypeSet
	ActiveOnly   bool
	Start        time.Time
	End          time.Time
}

// NewQuery builds the query for a sensor filter at a zone. Forecast queries
// cover the window returned by QueryWindow.
func NewQuery(cfg domain.FilterConfig, now time.Time) Query {
	q := Query{
		Latitude:     cfg.Zone.Latitude,
		Longitude:    cfg.Zone.Longitude,
		Severities:   cfg.Severities,
		MessageTypes: cfg.MessageTypes,
		ActiveOnly:   cfg.ActiveOnly,
	}
	if !cfg.ActiveOnly {
		q.Start, q.End = QueryWindow(now, cfg.ForecastDays)
	}
	return q
}

// QueryWindow returns the fetch window for a forecast of days days: from
// local midnight of the previous day to days+1 days later. The window
// starts early so that alerts issued yesterday and still in effect are
// returned.
func QueryWindow(now time.Time, days int) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d-1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, days+1)
}

func (q Query) path() string {
	if q.ActiveOnly {
		return "/alerts/active"
	}
	return "/alerts"
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("point", formatPoint(q.Latitude, q.Longitude))
	if len(q.MessageTypes) > 0 {
		v.Set("message_type", strings.Join(q.MessageTypes.Strings(), ","))
	}
	if len(q.Severities) > 0 {
		v.Set("severity", strings.Join(q.Severities.Strings(), ","))
	}
	if !q.ActiveOnly {
		v.Set("start", q.Start.Format(time.RFC3339))
		v.Set("end", q.End.Format(time.RFC3339))
	}
	return v
}

func formatPoint(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 4, 64) + "," + strconv.FormatFloat(lon, 'f', 4, 64)
}
