package domain

import "fmt"

// ConfigurationError reports a sensor configuration value that is out of range
// or outside its enumeration. It is raised at setup time and prevents the
// sensor from being registered.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}
