package domain

import "time"

// Snapshot is the most recent state computed for one sensor, as stored and
// published to sinks.
type Snapshot struct {
	SensorID string `json:"sensor_id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Zone     string `json:"zone"`
	SensorState
	UpdatedAt time.Time `json:"updated_at"`
}
