package nws

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/couchcryptid/nws-warnings/internal/geo"
)

// NWS API response types.

type alertCollection struct {
	Features []alertFeature `json:"features"`
}

type alertFeature struct {
	ID         string          `json:"id"`
	Geometry   *geometry       `json:"geometry"`
	Properties alertProperties `json:"properties"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type alertProperties struct {
	ID            string    `json:"id"`
	AreaDesc      string    `json:"areaDesc"`
	AffectedZones []string  `json:"affectedZones"`
	Geocode       geocode   `json:"geocode"`
	Sent          time.Time `json:"sent"`
	Effective     time.Time `json:"effective"`
	Onset         time.Time `json:"onset"`
	Expires       time.Time `json:"expires"`
	Ends          time.Time `json:"ends"`
	MessageType   string    `json:"messageType"`
	Severity      string    `json:"severity"`
	Event         string    `json:"event"`
	Headline      string    `json:"headline"`
	Description   string    `json:"description"`
	Instruction   string    `json:"instruction"`
}

type geocode struct {
	UGC []string `json:"UGC"`
}

type pointResponse struct {
	Properties struct {
		ForecastZone    string `json:"forecastZone"`
		County          string `json:"county"`
		FireWeatherZone string `json:"fireWeatherZone"`
	} `json:"properties"`
}

// DecodeAlerts parses an alerts GeoJSON document, e.g. a saved API response.
func DecodeAlerts(data []byte) ([]domain.Alert, error) {
	var body alertCollection
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	alerts := make([]domain.Alert, 0, len(body.Features))
	for _, f := range body.Features {
		if a, err := toAlert(f); err == nil {
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}

func (c *Client) toAlert(f alertFeature) (domain.Alert, bool) {
	a, err := toAlert(f)
	if err != nil {
		c.logger.Debug("skipping alert", "id", f.Properties.ID, "reason", err)
		return domain.Alert{}, false
	}
	return a, true
}

func toAlert(f alertFeature) (domain.Alert, error) {
	p := f.Properties

	messageType, err := domain.ParseMessageType(p.MessageType)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("message type %q", p.MessageType)
	}

	// NWS severities outside the CAP set collapse to unknown.
	severity, err := domain.ParseSeverity(p.Severity)
	if err != nil {
		severity = domain.SeverityUnknown
	}

	id := p.ID
	if id == "" {
		id = f.ID
	}

	zones := make([]string, 0, len(p.AffectedZones)+len(p.Geocode.UGC))
	for _, ref := range p.AffectedZones {
		if code := zoneCode(ref); code != "" {
			zones = appendUnique(zones, code)
		}
	}
	for _, code := range p.Geocode.UGC {
		zones = appendUnique(zones, strings.ToUpper(code))
	}

	a := domain.Alert{
		ID:            id,
		Event:         p.Event,
		Headline:      p.Headline,
		Description:   p.Description,
		Instruction:   p.Instruction,
		AreaDesc:      p.AreaDesc,
		Severity:      severity,
		MessageType:   messageType,
		AffectedZones: zones,
		Sent:          p.Sent,
		Effective:     p.Effective,
		Onset:         p.Onset,
		Expires:       p.Expires,
		Ends:          p.Ends,
	}

	// Zone codes still apply when the polygon is unusable.
	if f.Geometry != nil {
		if area, err := decodeArea(*f.Geometry); err == nil {
			a.Area = area
		}
	}
	return a, nil
}

func decodeArea(g geometry) (*geo.Area, error) {
	switch g.Type {
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, err
		}
		return geo.NewArea(rings)
	case "MultiPolygon":
		var polygons [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &polygons); err != nil {
			return nil, err
		}
		return geo.NewArea(polygons...)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported type %q", g.Type)
	}
}

// zoneCode reduces a zone URL such as
// https://api.weather.gov/zones/forecast/MAZ015 to its UGC code.
func zoneCode(ref string) string {
	ref = strings.TrimRight(strings.TrimSpace(ref), "/")
	if ref == "" {
		return ""
	}
	return strings.ToUpper(path.Base(ref))
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
