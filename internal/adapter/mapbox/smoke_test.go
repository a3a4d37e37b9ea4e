//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), "Stowe, VT")
	require.NoError(t, err)

	assert.InDelta(t, 44.46, result.Lat, 0.1, "lat should be near Stowe")
	assert.InDelta(t, -72.68, result.Lon, 0.1, "lon should be near Stowe")
	assert.Contains(t, result.FormattedAddress, "Stowe")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_CachedGeocoder(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedGeocoder(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.ForwardGeocode(context.Background(), "Burlington, VT")
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Burlington")

	r2, err := cached.ForwardGeocode(context.Background(), "Burlington, VT")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
