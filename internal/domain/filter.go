package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	MinForecastDays = 1
	MaxForecastDays = 5
)

// FilterConfig selects the alerts a sensor reports on.
type FilterConfig struct {
	Severities   SeveritySet
	MessageTypes MessageTypeSet
	Zone         Zone
	ForecastDays int

	// ActiveOnly limits the sensor to messages in effect right now, whatever
	// the hazard's onset. It is set when a sensor is configured without a
	// forecast horizon.
	ActiveOnly bool
}

// Validate checks the forecast horizon and that every set member belongs to
// its enumeration.
func (c FilterConfig) Validate() error {
	if c.ForecastDays < MinForecastDays || c.ForecastDays > MaxForecastDays {
		return &ConfigurationError{Field: "forecast_days", Value: c.ForecastDays, Reason: "must be between 1 and 5"}
	}
	for _, s := range c.Severities {
		if !s.Valid() {
			return &ConfigurationError{Field: "severity", Value: int(s), Reason: "not a known severity"}
		}
	}
	for _, m := range c.MessageTypes {
		if !m.Valid() {
			return &ConfigurationError{Field: "message_type", Value: int(m), Reason: "not a known message type"}
		}
	}
	return nil
}

// Window returns the period alerts must overlap to be reported. For an
// active-only config it is the instant now, and matching checks the message's
// own effective period instead of the hazard's.
func (c FilterConfig) Window(now time.Time) (from, to time.Time) {
	if c.ActiveOnly {
		return now, now
	}
	return now, now.Add(time.Duration(c.ForecastDays) * 24 * time.Hour)
}

// Matches reports whether a single alert passes every predicate of the config.
func (c FilterConfig) Matches(a Alert, now time.Time) bool {
	if !c.Severities.Accepts(a.Severity) {
		return false
	}
	if !c.MessageTypes.Accepts(a.MessageType) {
		return false
	}
	if !c.Zone.Intersects(a) {
		return false
	}
	if c.ActiveOnly {
		return a.inEffect(now)
	}
	from, to := c.Window(now)
	return a.activeDuring(from, to)
}

// Filter returns, in their original order, the alerts that match cfg at the
// given instant. The input slice is not modified. The result is never nil.
func Filter(alerts []Alert, cfg FilterConfig, now time.Time) ([]Alert, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return filterValid(alerts, cfg, now), nil
}

func filterValid(alerts []Alert, cfg FilterConfig, now time.Time) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if cfg.Matches(a, now) {
			out = append(out, a)
		}
	}
	return out
}

// AlertFilter applies a validated FilterConfig using an injected clock.
type AlertFilter struct {
	cfg   FilterConfig
	clock clockwork.Clock
}

// NewAlertFilter validates cfg once. A nil clock means real time.
func NewAlertFilter(cfg FilterConfig, clock clockwork.Clock) (*AlertFilter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AlertFilter{cfg: cfg, clock: clock}, nil
}

// Config returns the filter configuration.
func (f *AlertFilter) Config() FilterConfig {
	return f.cfg
}

// Filter returns the alerts relevant now.
func (f *AlertFilter) Filter(alerts []Alert) []Alert {
	return filterValid(alerts, f.cfg, f.clock.Now())
}
