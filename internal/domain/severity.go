package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Severity is the NWS/CAP severity of an alert. Values are ordered so that
// comparisons rank alerts by importance.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityModerate
	SeveritySevere
	SeverityExtreme
)

var severityNames = [...]string{"unknown", "minor", "moderate", "severe", "extreme"}

// Severities lists every valid severity in ascending order.
func Severities() []Severity {
	return []Severity{SeverityUnknown, SeverityMinor, SeverityModerate, SeveritySevere, SeverityExtreme}
}

// ParseSeverity parses a severity name case-insensitively ("Extreme" as sent by
// NWS, "extreme" as written in configuration).
func ParseSeverity(s string) (Severity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return SeverityUnknown, &ConfigurationError{Field: "severity", Value: s, Reason: "must be one of " + strings.Join(SeveritySet(Severities()).Strings(), ", ")}
}

// Valid reports whether s is one of the enumerated severities.
func (s Severity) Valid() bool {
	return s >= SeverityUnknown && s <= SeverityExtreme
}

func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MessageType distinguishes a new alert from a revision of an existing one.
type MessageType int

const (
	MessageTypeAlert MessageType = iota
	MessageTypeUpdate
)

var messageTypeNames = [...]string{"alert", "update"}

// MessageTypes lists every valid message type.
func MessageTypes() []MessageType {
	return []MessageType{MessageTypeAlert, MessageTypeUpdate}
}

// ParseMessageType parses a message type name case-insensitively. NWS also
// sends "Cancel", which is not representable.
func ParseMessageType(s string) (MessageType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range messageTypeNames {
		if n == name {
			return MessageType(i), nil
		}
	}
	return MessageTypeAlert, &ConfigurationError{Field: "message_type", Value: s, Reason: "must be one of " + strings.Join(MessageTypeSet(MessageTypes()).Strings(), ", ")}
}

// Valid reports whether m is one of the enumerated message types.
func (m MessageType) Valid() bool {
	return m == MessageTypeAlert || m == MessageTypeUpdate
}

func (m MessageType) String() string {
	if !m.Valid() {
		return fmt.Sprintf("MessageType(%d)", int(m))
	}
	return messageTypeNames[m]
}

func (m MessageType) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid message type %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *MessageType) UnmarshalText(b []byte) error {
	v, err := ParseMessageType(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// SeveritySet is the set of severities a sensor accepts. An empty set accepts
// every severity.
type SeveritySet []Severity

// ParseSeveritySet parses a list of severity names, dropping duplicates.
func ParseSeveritySet(names []string) (SeveritySet, error) {
	set := make(SeveritySet, 0, len(names))
	for _, n := range names {
		s, err := ParseSeverity(n)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(set, s) {
			set = append(set, s)
		}
	}
	return set, nil
}

// Accepts reports whether s is in the set, or the set is empty.
func (set SeveritySet) Accepts(s Severity) bool {
	return len(set) == 0 || slices.Contains(set, s)
}

// Strings returns the lowercase names of the set members.
func (set SeveritySet) Strings() []string {
	out := make([]string, len(set))
	for i, s := range set {
		out[i] = s.String()
	}
	return out
}

// MessageTypeSet is the set of message types a sensor accepts. An empty set
// accepts every message type.
type MessageTypeSet []MessageType

// ParseMessageTypeSet parses a list of message type names, dropping duplicates.
func ParseMessageTypeSet(names []string) (MessageTypeSet, error) {
	set := make(MessageTypeSet, 0, len(names))
	for _, n := range names {
		m, err := ParseMessageType(n)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(set, m) {
			set = append(set, m)
		}
	}
	return set, nil
}

// Accepts reports whether m is in the set, or the set is empty.
func (set MessageTypeSet) Accepts(m MessageType) bool {
	return len(set) == 0 || slices.Contains(set, m)
}

// Strings returns the lowercase names of the set members.
func (set MessageTypeSet) Strings() []string {
	out := make([]string, len(set))
	for i, m := range set {
		out[i] = m.String()
	}
	return out
}
