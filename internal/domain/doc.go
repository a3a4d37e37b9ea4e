// Package domain models National Weather Service (NWS) alerts and the
// filtering that turns them into a sensor state.
//
// # Data Source
//
// Alerts come from the NWS API at https://api.weather.gov/alerts as GeoJSON
// features whose properties follow the Common Alerting Protocol (CAP). The
// adapter in internal/adapter/nws converts them into [Alert] values.
//
// # NWS Data Conventions
//
// Severity:
//
//	CAP severities, ordered: Unknown < Minor < Moderate < Severe < Extreme.
//	NWS capitalises them; configuration uses lowercase. Both parse through
//	[ParseSeverity].
//
// Message type:
//
//	"Alert" is a new message, "Update" revises an earlier one. NWS also sends
//	"Cancel", which no sensor can select and which the adapter drops.
//
// Zones:
//
//	Alerts reference Universal Geographic Codes (UGC): "MAZ015" is public
//	forecast zone 015 in Massachusetts, "MAC025" is Suffolk County. Some
//	alerts (mostly convective warnings) also carry a polygon. A [Zone] is
//	matched by either route, see [Zone.Intersects].
//
// Time window:
//
//	onset/ends describe the hazard, effective/expires describe the message.
//	[Alert.Window] prefers the hazard times and falls back to the message
//	times; an alert with no end is treated as open-ended.
//
// # Filtering
//
// [Filter] keeps the alerts whose severity and message type are accepted by
// the [FilterConfig], whose zones intersect the configured zone, and whose
// window overlaps [now, now + forecast_days]. [Project] summarises the result
// as a [SensorState].
package domain
