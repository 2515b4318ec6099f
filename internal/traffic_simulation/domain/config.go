package domain

import (
	"fmt"
	"time"
)

// Config holds the simulation tunables
type Config struct {
	NodeCount           int     `json:"node_count"`
	UpdateInterval      int64   `json:"update_interval"` // ms
	BaseTrafficLevel    float64 `json:"base_traffic_level"`
	TrafficVariability  float64 `json:"traffic_variability"`
	IncidentProbability float64 `json:"incident_probability"`
	RoadDensity         float64 `json:"road_density"`
}

// PartialConfig carries only the fields a caller wants to change; nil means keep.
type PartialConfig struct {
	NodeCount           *int     `json:"node_count,omitempty"`
	UpdateInterval      *int64   `json:"update_interval,omitempty"`
	BaseTrafficLevel    *float64 `json:"base_traffic_level,omitempty"`
	TrafficVariability  *float64 `json:"traffic_variability,omitempty"`
	IncidentProbability *float64 `json:"incident_probability,omitempty"`
	RoadDensity         *float64 `json:"road_density,omitempty"`
}

// ConfigChange records which side effects a merge requires
type ConfigChange struct {
	Rebuild      bool `json:"rebuilt"`         // node_count or road_density changed; destroys all edges and incidents
	RestartTimer bool `json:"timer_restarted"` // update_interval changed
}

// Allowed ranges for runtime tunables
const (
	MinNodeCount        = 1
	MaxNodeCount        = 100
	MinUpdateIntervalMs = 1_000
	MaxUpdateIntervalMs = 300_000
)

func DefaultConfig() Config {
	return Config{
		NodeCount:           20,
		UpdateInterval:      30_000,
		BaseTrafficLevel:    0.15,
		TrafficVariability:  0.35,
		IncidentProbability: 0.00001,
		RoadDensity:         0.3,
	}
}

// Interval returns UpdateInterval as a time.Duration
func (c Config) Interval() time.Duration {
	return time.Duration(c.UpdateInterval) * time.Millisecond
}

// Validate checks every field against the allowed ranges
func (c Config) Validate() error {
	if c.NodeCount < MinNodeCount || c.NodeCount > MaxNodeCount {
		return fmt.Errorf("%w: node_count must be in [%d,%d]", ErrInvalidConfig, MinNodeCount, MaxNodeCount)
	}
	if c.UpdateInterval < MinUpdateIntervalMs || c.UpdateInterval > MaxUpdateIntervalMs {
		return fmt.Errorf("%w: update_interval must be in [%d,%d]", ErrInvalidConfig, MinUpdateIntervalMs, MaxUpdateIntervalMs)
	}
	ratios := []struct {
		name  string
		value float64
	}{
		{"base_traffic_level", c.BaseTrafficLevel},
		{"traffic_variability", c.TrafficVariability},
		{"incident_probability", c.IncidentProbability},
		{"road_density", c.RoadDensity},
	}
	for _, r := range ratios {
		if !(r.value >= 0 && r.value <= 1) {
			return fmt.Errorf("%w: %s must be in [0,1]", ErrInvalidConfig, r.name)
		}
	}
	return nil
}

// IsEmpty reports whether no field is set
func (p PartialConfig) IsEmpty() bool {
	return p.NodeCount == nil && p.UpdateInterval == nil && p.BaseTrafficLevel == nil &&
		p.TrafficVariability == nil && p.IncidentProbability == nil && p.RoadDensity == nil
}

// MergeConfig applies the supplied fields of p on top of cfg. It has no side
// effects; the returned ConfigChange tells the caller whether the graph must be
// rebuilt or the timer restarted.
func MergeConfig(cfg Config, p PartialConfig) (Config, ConfigChange) {
	next := cfg
	var change ConfigChange

	if p.NodeCount != nil {
		next.NodeCount = *p.NodeCount
		change.Rebuild = change.Rebuild || next.NodeCount != cfg.NodeCount
	}
	if p.RoadDensity != nil {
		next.RoadDensity = *p.RoadDensity
		change.Rebuild = change.Rebuild || next.RoadDensity != cfg.RoadDensity
	}
	if p.UpdateInterval != nil {
		next.UpdateInterval = *p.UpdateInterval
		change.RestartTimer = next.UpdateInterval != cfg.UpdateInterval
	}
	if p.BaseTrafficLevel != nil {
		next.BaseTrafficLevel = *p.BaseTrafficLevel
	}
	if p.TrafficVariability != nil {
		next.TrafficVariability = *p.TrafficVariability
	}
	if p.IncidentProbability != nil {
		next.IncidentProbability = *p.IncidentProbability
	}

	return next, change
}
