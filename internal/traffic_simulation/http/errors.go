package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEdgeNotFound),
		errors.Is(err, domain.ErrVertexNotFound),
		errors.Is(err, domain.ErrIncidentNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIncidentConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidIncidentType),
		errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEngineClosed),
		errors.Is(err, domain.ErrHistoryUnavailable),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[traffic-http] method=%s path=%s error=%v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func writeData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
