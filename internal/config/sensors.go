package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/couchcryptid/nws-warnings/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	Platform = "nws_warnings"

	DefaultSensorName = "NWS Warnings"
	DefaultIcon       = "mdi:alert"
	DefaultZone       = "zone.home"
)

var (
	DefaultSeverities   = []string{"moderate", "severe", "extreme"}
	DefaultMessageTypes = []string{"alert", "update"}

	entityIDRe = regexp.MustCompile(`^[a-z0-9_]+\.[a-z0-9_]+$`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// StringList accepts either a single YAML scalar or a sequence of scalars.
// A missing key leaves it nil; an explicit empty sequence yields an empty,
// non-nil list.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		if err := node.Decode(&out); err != nil {
			return err
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// Location is an explicit coordinate pair, used instead of a zone.
type Location struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ZoneSpec declares a zone entity in the sensors file.
type ZoneSpec struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Latitude  float64    `yaml:"latitude"`
	Longitude float64    `yaml:"longitude"`
	Radius    float64    `yaml:"radius"`
	Codes     StringList `yaml:"codes"`
	Address   string     `yaml:"address"`
}

// SensorSpec is one entry of the sensor platform list, as written in YAML.
type SensorSpec struct {
	Platform     string     `yaml:"platform"`
	Name         string     `yaml:"name"`
	Icon         string     `yaml:"icon"`
	Severity     StringList `yaml:"severity"`
	MessageType  StringList `yaml:"message_type"`
	Zone         string     `yaml:"zone"`
	Location     *Location  `yaml:"location"`
	ForecastDays *int       `yaml:"forecast_days"`
}

type sensorsFile struct {
	Zones   []ZoneSpec   `yaml:"zones"`
	Sensors []SensorSpec `yaml:"sensor"`
}

// Sensor is a validated sensor definition. The zone geography is resolved at
// refresh time, so the filter configuration is completed by FilterConfig.
type Sensor struct {
	ID           string
	Name         string
	Icon         string
	Zone         string    // zone entity id, empty when Location is set
	Location     *Location // explicit coordinates, exclusive with Zone
	Severities   domain.SeveritySet
	MessageTypes domain.MessageTypeSet
	ForecastDays int
	ActiveOnly   bool
}

// FilterConfig completes the sensor filter with a resolved zone.
func (s Sensor) FilterConfig(zone domain.Zone) domain.FilterConfig {
	return domain.FilterConfig{
		Severities:   s.Severities,
		MessageTypes: s.MessageTypes,
		Zone:         zone,
		ForecastDays: s.ForecastDays,
		ActiveOnly:   s.ActiveOnly,
	}
}

// Sensors is the validated content of a sensors file.
type Sensors struct {
	Zones   []ZoneSpec
	Sensors []Sensor
}

// LoadSensors reads and validates a sensors file.
func LoadSensors(path string) (*Sensors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sensors file: %w", err)
	}
	return ParseSensors(data)
}

// ParseSensors validates a sensors document. Entries for other platforms are
// ignored. Any invalid value is reported as a *domain.ConfigurationError.
func ParseSensors(data []byte) (*Sensors, error) {
	var doc sensorsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sensors file: %w", err)
	}

	out := &Sensors{}
	zoneIDs := make(map[string]bool)
	for i, z := range doc.Zones {
		if err := validateZone(z); err != nil {
			return nil, fmt.Errorf("zone %d: %w", i, err)
		}
		if zoneIDs[z.ID] {
			return nil, fmt.Errorf("zone %d: %w", i, &domain.ConfigurationError{Field: "id", Value: z.ID, Reason: "duplicate zone"})
		}
		zoneIDs[z.ID] = true
		out.Zones = append(out.Zones, z)
	}

	sensorIDs := make(map[string]bool)
	for i, spec := range doc.Sensors {
		if spec.Platform != "" && spec.Platform != Platform {
			continue
		}
		s, err := buildSensor(spec)
		if err != nil {
			return nil, fmt.Errorf("sensor %d: %w", i, err)
		}
		if sensorIDs[s.ID] {
			return nil, fmt.Errorf("sensor %d: %w", i, &domain.ConfigurationError{Field: "name", Value: s.Name, Reason: "duplicate sensor " + s.ID})
		}
		sensorIDs[s.ID] = true
		out.Sensors = append(out.Sensors, s)
	}

	if len(out.Sensors) == 0 {
		return nil, &domain.ConfigurationError{Field: "sensor", Value: 0, Reason: "no " + Platform + " sensors configured"}
	}
	return out, nil
}

func buildSensor(spec SensorSpec) (Sensor, error) {
	s := Sensor{
		Name: spec.Name,
		Icon: spec.Icon,
	}
	if s.Name == "" {
		s.Name = DefaultSensorName
	}
	if s.Icon == "" {
		s.Icon = DefaultIcon
	}
	if !strings.Contains(s.Icon, ":") {
		return Sensor{}, &domain.ConfigurationError{Field: "icon", Value: s.Icon, Reason: "must be of the form prefix:name"}
	}
	s.ID = "sensor." + Slugify(s.Name)

	severity := []string(spec.Severity)
	if severity == nil {
		severity = DefaultSeverities
	}
	if len(severity) == 0 {
		return Sensor{}, &domain.ConfigurationError{Field: "severity", Value: "[]", Reason: "must not be empty"}
	}
	severities, err := domain.ParseSeveritySet(severity)
	if err != nil {
		return Sensor{}, err
	}
	s.Severities = severities

	messageType := []string(spec.MessageType)
	if messageType == nil {
		messageType = DefaultMessageTypes
	}
	if len(messageType) == 0 {
		return Sensor{}, &domain.ConfigurationError{Field: "message_type", Value: "[]", Reason: "must not be empty"}
	}
	messageTypes, err := domain.ParseMessageTypeSet(messageType)
	if err != nil {
		return Sensor{}, err
	}
	s.MessageTypes = messageTypes

	if spec.ForecastDays == nil {
		s.ForecastDays = domain.MinForecastDays
		s.ActiveOnly = true
	} else {
		days := *spec.ForecastDays
		if days < domain.MinForecastDays || days > domain.MaxForecastDays {
			return Sensor{}, &domain.ConfigurationError{Field: "forecast_days", Value: days, Reason: "must be between 1 and 5"}
		}
		s.ForecastDays = days
	}

	switch {
	case spec.Zone != "" && spec.Location != nil:
		return Sensor{}, &domain.ConfigurationError{Field: "zone", Value: spec.Zone, Reason: "zone and location are mutually exclusive"}
	case spec.Location != nil:
		if err := validateCoordinates(spec.Location.Latitude, spec.Location.Longitude); err != nil {
			return Sensor{}, err
		}
		s.Location = spec.Location
	default:
		s.Zone = spec.Zone
		if s.Zone == "" {
			s.Zone = DefaultZone
		}
		if !entityIDRe.MatchString(s.Zone) {
			return Sensor{}, &domain.ConfigurationError{Field: "zone", Value: s.Zone, Reason: "must be an entity id such as zone.home"}
		}
	}

	return s, nil
}

func validateZone(z ZoneSpec) error {
	if !entityIDRe.MatchString(z.ID) {
		return &domain.ConfigurationError{Field: "id", Value: z.ID, Reason: "must be an entity id such as zone.home"}
	}
	hasCoords := z.Latitude != 0 || z.Longitude != 0
	if !hasCoords && z.Address == "" {
		return &domain.ConfigurationError{Field: "latitude", Value: z.ID, Reason: "zone needs coordinates or an address"}
	}
	if hasCoords {
		if err := validateCoordinates(z.Latitude, z.Longitude); err != nil {
			return err
		}
	}
	if z.Radius < 0 {
		return &domain.ConfigurationError{Field: "radius", Value: z.Radius, Reason: "must not be negative"}
	}
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return &domain.ConfigurationError{Field: "latitude", Value: lat, Reason: "must be between -90 and 90"}
	}
	if lon < -180 || lon > 180 {
		return &domain.ConfigurationError{Field: "longitude", Value: lon, Reason: "must be between -180 and 180"}
	}
	return nil
}

// Slugify lowercases a display name and joins its words with underscores,
// e.g. "NWS Warnings (Home)" -> "nws_warnings_home".
func Slugify(name string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "unnamed"
	}
	return slug
}
