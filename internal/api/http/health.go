package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Service    string    `json:"service"`
	Version    string    `json:"version"`
	Redis      string    `json:"redis"`
	Simulation string    `json:"simulation"`
}

// Pinger is satisfied by the snapshot repository
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunState reports whether the update timer is active
type RunState interface {
	IsRunning(ctx context.Context) (bool, error)
}

type HealthHandler struct {
	serviceName string
	version     string
	redis       Pinger // nil when persistence is disabled
	sim         RunState
}

func NewHealthHandler(serviceName, version string, redis Pinger, sim RunState) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		redis:       redis,
		sim:         sim,
	}
}

// HealthCheck always answers 200 while the process is up; a closed engine
// marks the service unhealthy with 503.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "down"
		} else {
			redisStatus = "up"
		}
	}

	status, code := "healthy", http.StatusOK
	simStatus := "unknown"
	if h.sim != nil {
		running, err := h.sim.IsRunning(ctx)
		switch {
		case err != nil:
			simStatus = "closed"
			status, code = "unhealthy", http.StatusServiceUnavailable
		case running:
			simStatus = "running"
		default:
			simStatus = "stopped"
		}
	}

	c.JSON(code, HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Service:    h.serviceName,
		Version:    h.version,
		Redis:      redisStatus,
		Simulation: simStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
