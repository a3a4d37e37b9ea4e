// Package geo answers the one geometric question the sensors need: does an
// alert polygon touch a zone, given the zone's centre and radius.
package geo

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371010.0

// Area is the union of the outer rings of one or more polygons.
type Area struct {
	loops []*s2.Loop
}

// NewArea builds an Area from GeoJSON polygon rings ([lon, lat] pairs). Only
// the first ring of each polygon is used; holes are ignored.
func NewArea(polygons ...[][][2]float64) (*Area, error) {
	a := &Area{}
	for i, rings := range polygons {
		if len(rings) == 0 {
			continue
		}
		loop, err := loopFromRing(rings[0])
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		a.loops = append(a.loops, loop)
	}
	if len(a.loops) == 0 {
		return nil, errors.New("no polygon rings")
	}
	return a, nil
}

// Contains reports whether the point lies inside the area.
func (a *Area) Contains(lat, lon float64) bool {
	if a == nil {
		return false
	}
	pt := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	for _, l := range a.loops {
		if l.ContainsPoint(pt) {
			return true
		}
	}
	return false
}

// Within reports whether the area contains the point or passes within
// radiusMeters of it.
func (a *Area) Within(lat, lon, radiusMeters float64) bool {
	if a == nil {
		return false
	}
	if a.Contains(lat, lon) {
		return true
	}
	if radiusMeters <= 0 {
		return false
	}

	pt := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	limit := s1.Angle(radiusMeters / earthRadiusMeters)
	for _, l := range a.loops {
		n := l.NumVertices()
		for i := 0; i < n; i++ {
			if s2.DistanceFromSegment(pt, l.Vertex(i), l.Vertex(i+1)) <= limit {
				return true
			}
		}
	}
	return false
}

// NumLoops returns the number of outer rings in the area.
func (a *Area) NumLoops() int {
	if a == nil {
		return 0
	}
	return len(a.loops)
}

func loopFromRing(ring [][2]float64) (*s2.Loop, error) {
	// GeoJSON rings repeat the first vertex at the end; s2 loops are implicitly closed.
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("ring has %d vertices, need at least 3", len(ring))
	}

	points := make([]s2.Point, 0, len(ring))
	for _, v := range ring {
		lon, lat := v[0], v[1]
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("vertex out of range: %v", v)
		}
		points = append(points, s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
	}

	// Ring orientation is not reliable in NWS data. The globe is ~4*pi on the
	// unit sphere and the US is under 2% of it, so anything larger than 0.1 is
	// the complement of the intended ring.
	loop := s2.LoopFromPoints(points)
	if loop.Area() > 0.1 {
		loop.Invert()
	}
	return loop, nil
}
