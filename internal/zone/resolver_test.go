package zone

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/nws-warnings/internal/config"
	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntities struct {
	zones map[string]domain.Zone
	calls int
}

func (f *fakeEntities) GetZone(_ context.Context, id string) (domain.Zone, error) {
	f.calls++
	z, ok := f.zones[id]
	if !ok {
		return domain.Zone{}, errors.New("entity not found")
	}
	return z, nil
}

type fakePoints struct {
	codes []string
	err   error
	calls int
}

func (f *fakePoints) ResolvePoint(_ context.Context, _, _ float64) ([]string, error) {
	f.calls++
	return f.codes, f.err
}

type fakeGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (f fakeGeocoder) ForwardGeocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	return f.result, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolve_StaticZoneWinsOverEntity(t *testing.T) {
	entities := &fakeEntities{zones: map[string]domain.Zone{
		"zone.home": {ID: "zone.home", Latitude: 1, Longitude: 1},
	}}
	r := NewResolver([]config.ZoneSpec{
		{ID: "zone.home", Name: "Home", Latitude: 42.36, Longitude: -71.06, Radius: 200, Codes: config.StringList{"maz015 "}},
	}, entities, nil, &fakePoints{codes: []string{"XXX"}}, discardLogger())

	z, err := r.Resolve(context.Background(), config.Sensor{ID: "sensor.a", Zone: "zone.home"})
	require.NoError(t, err)

	assert.Equal(t, domain.Zone{ID: "zone.home", Name: "Home", Latitude: 42.36, Longitude: -71.06, Radius: 200, Codes: []string{"MAZ015"}}, z)
	assert.Zero(t, entities.calls)
}

func TestResolve_EntityWithPointCodes(t *testing.T) {
	entities := &fakeEntities{zones: map[string]domain.Zone{
		"zone.work": {ID: "zone.work", Latitude: 42.35, Longitude: -71.1},
	}}
	points := &fakePoints{codes: []string{"MAZ015", "MAC025"}}
	r := NewResolver(nil, entities, nil, points, discardLogger())

	z, err := r.Resolve(context.Background(), config.Sensor{ID: "sensor.a", Zone: "zone.work"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MAZ015", "MAC025"}, z.Codes)
	assert.Equal(t, 1, points.calls)
}

func TestResolve_PointLookupFailureFails(t *testing.T) {
	nwsDown := errors.New("nws down")
	r := NewResolver(nil, nil, nil, &fakePoints{err: nwsDown}, discardLogger())

	_, err := r.Resolve(context.Background(), config.Sensor{
		ID:       "sensor.boat",
		Name:     "Boat",
		Location: &config.Location{Latitude: 41.5, Longitude: -70.6},
	})
	require.ErrorIs(t, err, nwsDown)
	assert.Contains(t, err.Error(), "location.boat")
}

func TestResolve_PointLookupSkippedWhenCodesDeclared(t *testing.T) {
	zones := []config.ZoneSpec{{ID: "zone.home", Latitude: 42.36, Longitude: -71.06, Codes: []string{"maz015"}}}
	r := NewResolver(zones, nil, nil, &fakePoints{err: errors.New("nws down")}, discardLogger())

	z, err := r.Resolve(context.Background(), config.Sensor{ID: "sensor.a", Zone: "zone.home"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MAZ015"}, z.Codes)
}

func TestResolve_UnknownZone(t *testing.T) {
	r := NewResolver(nil, nil, nil, nil, discardLogger())

	_, err := r.Resolve(context.Background(), config.Sensor{ID: "sensor.a", Zone: "zone.home"})
	require.ErrorIs(t, err, ErrUnknownZone)
}

func TestResolve_EntityError(t *testing.T) {
	r := NewResolver(nil, &fakeEntities{}, nil, nil, discardLogger())

	_, err := r.Resolve(context.Background(), config.Sensor{ID: "sensor.a", Zone: "zone.home"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve zone.home")
}

func TestResolve_GeocodesAddress(t *testing.T) {
	geocoder := fakeGeocoder{result: domain.GeocodingResult{
		Lat: 44.46, Lon: -72.68, PlaceName: "Stowe", FormattedAddress: "Stowe, Vermont, United States",
	}}
	r := NewResolver([]config.ZoneSpec{{ID: "zone.cabin", Address: "Stowe, VT"}}, nil, geocoder, nil, discardLogger())

	z, err := r.Resolve(context.Background(), config.Sensor{ID: "sensor.a", Zone: "zone.cabin"})
	require.NoError(t, err)
	assert.Equal(t, 44.46, z.Latitude)
	assert.Equal(t, -72.68, z.Longitude)
	assert.Equal(t, "Stowe", z.Name)
}

func TestResolve_AddressErrors(t *testing.T) {
	spec := []config.ZoneSpec{{ID: "zone.cabin", Address: "Stowe, VT"}}
	sensor := config.Sensor{ID: "sensor.a", Zone: "zone.cabin"}

	tests := []struct {
		name     string
		geocoder domain.Geocoder
		wantErr  string
	}{
		{"no geocoder", nil, "needs a geocoder"},
		{"geocoder error", fakeGeocoder{err: errors.New("timeout")}, "geocode zone.cabin"},
		{"not found", fakeGeocoder{}, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(spec, nil, tt.geocoder, nil, discardLogger())
			_, err := r.Resolve(context.Background(), sensor)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
