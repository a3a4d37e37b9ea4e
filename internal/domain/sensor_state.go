package domain

import (
	"strconv"
	"time"
)

const (
	Attribution     = "Data provided by NWS"
	NoSeverityLabel = "none"
)

// SensorState is what a sensor exposes to its host: a state value and a set
// of structured attributes.
type SensorState struct {
	State      string     `json:"state"`
	Attributes Attributes `json:"attributes"`
}

// Attributes carries per-alert detail alongside summary fields.
type Attributes struct {
	Alerts          []AlertDetail     `json:"alerts"`
	HighestSeverity string            `json:"highest_severity"`
	Headline        string            `json:"headline"`
	Updates         map[string]string `json:"updates"` // sent time (RFC 3339) -> headline
	Attribution     string            `json:"attribution"`
}

// AlertDetail is the per-alert entry in the sensor attributes.
type AlertDetail struct {
	ID          string     `json:"id"`
	Event       string     `json:"event,omitempty"`
	Headline    string     `json:"headline,omitempty"`
	Severity    string     `json:"severity"`
	MessageType string     `json:"message_type"`
	Zones       []string   `json:"zones,omitempty"`
	Onset       *time.Time `json:"onset,omitempty"`
	Expires     *time.Time `json:"expires,omitempty"`
}

// Project summarises filtered alerts into a sensor state. The state is the
// number of alerts; "0" when nothing matches.
func Project(filtered []Alert) SensorState {
	attrs := Attributes{
		Alerts:          make([]AlertDetail, 0, len(filtered)),
		HighestSeverity: NoSeverityLabel,
		Updates:         make(map[string]string),
		Attribution:     Attribution,
	}

	highest := -1
	for i, a := range filtered {
		start, end := a.Window()
		attrs.Alerts = append(attrs.Alerts, AlertDetail{
			ID:          a.ID,
			Event:       a.Event,
			Headline:    a.Headline,
			Severity:    a.Severity.String(),
			MessageType: a.MessageType.String(),
			Zones:       a.AffectedZones,
			Onset:       timePtr(start),
			Expires:     timePtr(end),
		})

		if a.Headline != "" && !a.Sent.IsZero() {
			attrs.Updates[a.Sent.UTC().Format(time.RFC3339)] = a.Headline
		}
		if highest < 0 || a.Severity > filtered[highest].Severity {
			highest = i
		}
	}

	if highest >= 0 {
		attrs.HighestSeverity = filtered[highest].Severity.String()
		attrs.Headline = filtered[highest].Headline
	}

	return SensorState{
		State:      strconv.Itoa(len(filtered)),
		Attributes: attrs,
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
