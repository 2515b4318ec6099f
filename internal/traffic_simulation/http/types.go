package http

import (
	"time"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/service"
	"golang.org/x/time/rate"
)

const defaultKeepAlive = 15 * time.Second

// Handler handles HTTP requests for the traffic simulation
type Handler struct {
	svc       *service.TrafficService
	limiter   *rate.Limiter // guards mutating endpoints; nil disables limiting
	keepAlive time.Duration
}

// New creates a new Handler. limiter may be nil.
func New(svc *service.TrafficService, limiter *rate.Limiter) *Handler {
	return &Handler{
		svc:       svc,
		limiter:   limiter,
		keepAlive: defaultKeepAlive,
	}
}

// createIncidentBody mirrors the public incident request. Out-of-range
// severity and duration are clamped by the engine, not rejected.
type createIncidentBody struct {
	EdgeID   string   `json:"edgeId" binding:"required"`
	Severity *float64 `json:"severity,omitempty"`
	Duration *float64 `json:"duration,omitempty"` // ms
	Type     string   `json:"type,omitempty"`
}
