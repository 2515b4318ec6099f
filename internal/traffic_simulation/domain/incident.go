package domain

import (
	"fmt"
	"math"
	"strings"
)

type IncidentType string

const (
	IncidentAccident     IncidentType = "accident"
	IncidentConstruction IncidentType = "construction"
	IncidentRoadblock    IncidentType = "roadblock"
	IncidentWeather      IncidentType = "weather"
	IncidentEvent        IncidentType = "event"
)

// IncidentTypes lists every type in a fixed order, used for uniform sampling.
var IncidentTypes = []IncidentType{
	IncidentAccident,
	IncidentConstruction,
	IncidentRoadblock,
	IncidentWeather,
	IncidentEvent,
}

// Incident bounds
const (
	MinIncidentDurationMs     int64   = 10_000
	MaxIncidentDurationMs     int64   = 3_600_000
	DefaultIncidentDurationMs int64   = 60_000
	DefaultIncidentSeverity   float64 = 0.5

	// minIncidentSeverity keeps an active incident's severity strictly positive.
	minIncidentSeverity = 0.01
)

// ParseIncidentType accepts the empty string as "pick one at random".
func ParseIncidentType(s string) (IncidentType, error) {
	t := IncidentType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return "", nil
	}
	for _, known := range IncidentTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidIncidentType, s)
}

// SeverityBand maps severity to minor (<0.4), moderate (<0.7) or severe.
func SeverityBand(severity float64) string {
	switch {
	case severity >= 0.7:
		return "severe"
	case severity >= 0.4:
		return "moderate"
	default:
		return "minor"
	}
}

// DescribeIncident builds the human-readable description for an incident.
func DescribeIncident(t IncidentType, severity float64) string {
	band := SeverityBand(severity)
	band = strings.ToUpper(band[:1]) + band[1:]

	switch t {
	case IncidentAccident:
		return band + " vehicle accident causing delays"
	case IncidentConstruction:
		return band + " road construction work"
	case IncidentRoadblock:
		return band + " road closure or blockage"
	case IncidentWeather:
		return band + " weather-related conditions"
	case IncidentEvent:
		return band + " special event causing congestion"
	default:
		return band + " traffic incident"
	}
}

// ClampSeverity bounds severity to [0,1]. A zero result is lifted to a small
// positive floor so that an active incident always reports a severity.
func ClampSeverity(severity float64) float64 {
	if severity != severity { // NaN
		return DefaultIncidentSeverity
	}
	if severity > 1 {
		return 1
	}
	if severity < minIncidentSeverity {
		return minIncidentSeverity
	}
	return severity
}

// ClampDuration bounds a duration in ms to [10s, 1h].
func ClampDuration(durationMs int64) int64 {
	if durationMs < MinIncidentDurationMs {
		return MinIncidentDurationMs
	}
	if durationMs > MaxIncidentDurationMs {
		return MaxIncidentDurationMs
	}
	return durationMs
}

// ClampDurationMs bounds a caller-supplied duration before it is converted to
// an integer, so values beyond the int64 range still land on the ceiling.
// NaN falls back to the default duration.
func ClampDurationMs(ms float64) int64 {
	if math.IsNaN(ms) {
		return DefaultIncidentDurationMs
	}
	return int64(math.Max(float64(MinIncidentDurationMs), math.Min(ms, float64(MaxIncidentDurationMs))))
}
