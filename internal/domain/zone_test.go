package domain

import (
	"testing"

	"github.com/couchcryptid/nws-warnings/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArea(t *testing.T) *geo.Area {
	t.Helper()
	area, err := geo.NewArea([][][2]float64{{
		{-71.20, 42.20}, {-70.90, 42.20}, {-70.90, 42.45}, {-71.20, 42.45}, {-71.20, 42.20},
	}})
	require.NoError(t, err)
	return area
}

func TestZone_Identifiers(t *testing.T) {
	assert.Equal(t, []string{testZoneID, "MAZ015", "MAC025"}, homeZone().Identifiers())
	assert.Equal(t, []string{"MAZ015"}, Zone{Codes: []string{"MAZ015"}}.Identifiers())
}

func TestZone_Intersects(t *testing.T) {
	zone := homeZone()
	area := testArea(t)

	tests := []struct {
		name  string
		alert Alert
		want  bool
	}{
		{"shared UGC code", Alert{AffectedZones: []string{"MAZ015"}}, true},
		{"case-insensitive", Alert{AffectedZones: []string{"maz015"}}, true},
		{"entity id", Alert{AffectedZones: []string{testZoneID}}, true},
		{"unrelated code", Alert{AffectedZones: []string{"CAZ006"}}, false},
		{"polygon covers zone", Alert{Area: area}, true},
		{"nothing to match", Alert{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, zone.Intersects(tt.alert))
		})
	}
}

func TestZone_IntersectsPolygonRadius(t *testing.T) {
	area := testArea(t)
	zone := Zone{ID: "zone.south", Latitude: 42.19, Longitude: -71.00}

	assert.False(t, zone.Intersects(Alert{Area: area}), "default radius too small")

	zone.Radius = 2000
	assert.True(t, zone.Intersects(Alert{Area: area}))
}

func TestZone_PolygonIgnoredWithoutLocation(t *testing.T) {
	zone := Zone{ID: "zone.nowhere"}
	assert.False(t, zone.Intersects(Alert{Area: testArea(t)}))
}
