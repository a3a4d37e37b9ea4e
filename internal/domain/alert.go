package domain

import (
	"time"

	"github.com/couchcryptid/nws-warnings/internal/geo"
)

// Alert is one NWS warning, watch, or advisory as returned by a single poll.
type Alert struct {
	ID          string
	Event       string // e.g. "Winter Storm Warning"
	Headline    string
	Description string
	Instruction string
	AreaDesc    string
	Severity    Severity
	MessageType MessageType

	// AffectedZones holds the UGC codes (e.g. "MAZ015", "MAC025") or zone
	// entity ids the alert applies to.
	AffectedZones []string
	// Area is the alert polygon when NWS supplies one. Zone-based alerts
	// usually have none.
	Area *geo.Area

	Sent      time.Time
	Effective time.Time
	Onset     time.Time
	Expires   time.Time
	Ends      time.Time
}

// Window returns the period during which the alert applies. The start is the
// onset, falling back to the effective and then the sent time. The end is the
// end of the hazard, falling back to the message expiry. A zero end means the
// alert is open-ended.
func (a Alert) Window() (start, end time.Time) {
	switch {
	case !a.Onset.IsZero():
		start = a.Onset
	case !a.Effective.IsZero():
		start = a.Effective
	default:
		start = a.Sent
	}

	end = a.Ends
	if end.IsZero() {
		end = a.Expires
	}
	return start, end
}

// activeDuring reports whether the alert window overlaps [from, to].
func (a Alert) activeDuring(from, to time.Time) bool {
	start, end := a.Window()
	if !start.IsZero() && start.After(to) {
		return false
	}
	if !end.IsZero() && end.Before(from) {
		return false
	}
	return true
}

// inEffect reports whether the message itself is in force at now: issued
// (effective, else sent) and not yet expired. The hazard may begin later.
func (a Alert) inEffect(now time.Time) bool {
	issued := a.Effective
	if issued.IsZero() {
		issued = a.Sent
	}
	if !issued.IsZero() && issued.After(now) {
		return false
	}
	return a.Expires.IsZero() || a.Expires.After(now)
}
