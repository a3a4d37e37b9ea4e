// Package zone resolves the zone a sensor watches into coordinates and NWS
// zone codes.
package zone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/nws-warnings/internal/config"
	"github.com/couchcryptid/nws-warnings/internal/domain"
)

// LocationPrefix names the synthetic zone built for sensors configured with
// explicit coordinates.
const LocationPrefix = "location."

// ErrUnknownZone is returned when a zone is neither declared in the sensors
// file nor available from Home Assistant.
var ErrUnknownZone = errors.New("unknown zone")

// EntitySource reads zone entities, e.g. from Home Assistant.
type EntitySource interface {
	GetZone(ctx context.Context, entityID string) (domain.Zone, error)
}

// PointResolver maps coordinates to the NWS zone codes covering them.
type PointResolver interface {
	ResolvePoint(ctx context.Context, lat, lon float64) ([]string, error)
}

// Resolver turns a sensor's zone reference into a domain.Zone. Every
// dependency except the static zone list is optional.
type Resolver struct {
	static   map[string]config.ZoneSpec
	entities EntitySource
	geocoder domain.Geocoder
	points   PointResolver
	logger   *slog.Logger
}

// NewResolver creates a Resolver. Pass nil for sources that are not
// configured.
func NewResolver(zones []config.ZoneSpec, entities EntitySource, geocoder domain.Geocoder, points PointResolver, logger *slog.Logger) *Resolver {
	static := make(map[string]config.ZoneSpec, len(zones))
	for _, z := range zones {
		static[z.ID] = z
	}
	return &Resolver{
		static:   static,
		entities: entities,
		geocoder: geocoder,
		points:   points,
		logger:   logger,
	}
}

// Resolve returns the zone watched by a sensor. Zones declared in the sensors
// file take precedence over Home Assistant entities. Zone codes are looked up
// from NWS when the zone lists none. A failed lookup fails the resolution:
// without codes, zone-based alerts could never match.
func (r *Resolver) Resolve(ctx context.Context, s config.Sensor) (domain.Zone, error) {
	z, err := r.lookup(ctx, s)
	if err != nil {
		return domain.Zone{}, err
	}

	if len(z.Codes) == 0 && r.points != nil {
		codes, err := r.points.ResolvePoint(ctx, z.Latitude, z.Longitude)
		if err != nil {
			return domain.Zone{}, fmt.Errorf("zone codes for %s: %w", z.ID, err)
		}
		z.Codes = codes
		r.logger.Debug("resolved zone codes", "zone", z.ID, "codes", codes)
	}
	return z, nil
}

func (r *Resolver) lookup(ctx context.Context, s config.Sensor) (domain.Zone, error) {
	if s.Location != nil {
		return domain.Zone{
			ID:        LocationPrefix + strings.TrimPrefix(s.ID, "sensor."),
			Name:      s.Name,
			Latitude:  s.Location.Latitude,
			Longitude: s.Location.Longitude,
		}, nil
	}

	if spec, ok := r.static[s.Zone]; ok {
		return r.fromSpec(ctx, spec)
	}

	if r.entities == nil {
		return domain.Zone{}, fmt.Errorf("%w %s", ErrUnknownZone, s.Zone)
	}
	z, err := r.entities.GetZone(ctx, s.Zone)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("resolve %s: %w", s.Zone, err)
	}
	return z, nil
}

func (r *Resolver) fromSpec(ctx context.Context, spec config.ZoneSpec) (domain.Zone, error) {
	z := domain.Zone{
		ID:        spec.ID,
		Name:      spec.Name,
		Latitude:  spec.Latitude,
		Longitude: spec.Longitude,
		Radius:    spec.Radius,
		Codes:     normalizeCodes(spec.Codes),
	}
	if z.HasLocation() {
		return z, nil
	}

	if r.geocoder == nil {
		return domain.Zone{}, fmt.Errorf("resolve %s: address %q needs a geocoder", spec.ID, spec.Address)
	}
	result, err := r.geocoder.ForwardGeocode(ctx, spec.Address)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("geocode %s: %w", spec.ID, err)
	}
	if result.FormattedAddress == "" {
		return domain.Zone{}, fmt.Errorf("geocode %s: address %q not found", spec.ID, spec.Address)
	}
	z.Latitude, z.Longitude = result.Lat, result.Lon
	if z.Name == "" {
		z.Name = result.PlaceName
	}
	return z, nil
}

func normalizeCodes(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
