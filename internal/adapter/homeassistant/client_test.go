package homeassistant

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, testToken, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetZone(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/states/zone.home", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"entity_id": "zone.home",
			"state": "0",
			"attributes": {"latitude": 42.36, "longitude": -71.06, "radius": 250, "friendly_name": "Home", "icon": "mdi:home"}
		}`))
	})

	z, err := c.GetZone(context.Background(), "zone.home")
	require.NoError(t, err)
	assert.Equal(t, domain.Zone{ID: "zone.home", Name: "Home", Latitude: 42.36, Longitude: -71.06, Radius: 250}, z)
}

func TestGetZone_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetZone(context.Background(), "zone.nowhere")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetZone_NoLocation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"entity_id":"zone.x","state":"0","attributes":{}}`))
	})

	_, err := c.GetZone(context.Background(), "zone.x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no latitude/longitude")
}

func TestGetZone_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "401: Unauthorized", http.StatusUnauthorized)
	})

	_, err := c.GetZone(context.Background(), "zone.home")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestPublish(t *testing.T) {
	var got stateUpdate
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/states/sensor.nws_warnings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})

	snap := domain.Snapshot{
		SensorID:    "sensor.nws_warnings",
		Name:        "NWS Warnings",
		Icon:        "mdi:alert",
		Zone:        "zone.home",
		SensorState: domain.Project(nil),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, c.Publish(context.Background(), snap))

	assert.Equal(t, "0", got.State)
	assert.Equal(t, "NWS Warnings", got.Attributes["friendly_name"])
	assert.Equal(t, "mdi:alert", got.Attributes["icon"])
	assert.Equal(t, domain.NoSeverityLabel, got.Attributes["highest_severity"])
	assert.Equal(t, domain.Attribution, got.Attributes["attribution"])
	assert.Equal(t, []any{}, got.Attributes["alerts"])
}

func TestPublish_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.Publish(context.Background(), domain.Snapshot{SensorID: "sensor.x", SensorState: domain.Project(nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish sensor.x")
}
