package domain

import "strings"

// DefaultZoneRadius is used when a zone does not declare a radius, in meters.
const DefaultZoneRadius = 100.0

// Zone is a geographic area entity against which alerts are tested.
type Zone struct {
	ID        string  `json:"id"` // entity id, e.g. "zone.home"
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius,omitempty"` // meters

	// Codes are the NWS UGC codes covering the zone centre: forecast zone,
	// county, fire weather zone.
	Codes []string `json:"codes,omitempty"`
}

// HasLocation reports whether the zone has coordinates.
func (z Zone) HasLocation() bool {
	return z.Latitude != 0 || z.Longitude != 0
}

// Identifiers returns every identifier an alert may use to reference the zone.
func (z Zone) Identifiers() []string {
	ids := make([]string, 0, len(z.Codes)+1)
	if z.ID != "" {
		ids = append(ids, z.ID)
	}
	return append(ids, z.Codes...)
}

// Intersects reports whether the alert applies to the zone, either by a shared
// zone identifier or because the alert polygon covers the zone.
func (z Zone) Intersects(a Alert) bool {
	for _, affected := range a.AffectedZones {
		for _, id := range z.Identifiers() {
			if strings.EqualFold(affected, id) {
				return true
			}
		}
	}

	if a.Area == nil || !z.HasLocation() {
		return false
	}
	radius := z.Radius
	if radius <= 0 {
		radius = DefaultZoneRadius
	}
	return a.Area.Within(z.Latitude, z.Longitude, radius)
}
