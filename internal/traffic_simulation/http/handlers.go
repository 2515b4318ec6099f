package http

import (
	"net/http"
	"strconv"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/gin-gonic/gin"
)

// GetCurrentState returns the full snapshot
func (h *Handler) GetCurrentState(c *gin.Context) {
	state, err := h.svc.CurrentState(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, state)
}

// GetGraph returns vertices and edges only
func (h *Handler) GetGraph(c *gin.Context) {
	g, err := h.svc.Graph(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, g)
}

func (h *Handler) GetVertex(c *gin.Context) {
	v, err := h.svc.Vertex(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, v)
}

func (h *Handler) GetEdge(c *gin.Context) {
	e, err := h.svc.Edge(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, e)
}

func (h *Handler) GetAllEdges(c *gin.Context) {
	edges, err := h.svc.Edges(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, edges)
}

// GetAvailableEdges lists edges that can take a new incident
func (h *Handler) GetAvailableEdges(c *gin.Context) {
	edges, err := h.svc.AvailableEdges(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": edges, "count": len(edges)})
}

func (h *Handler) GetActiveIncidents(c *gin.Context) {
	incidents, err := h.svc.ActiveIncidents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": incidents, "count": len(incidents)})
}

// GetIncidentHistory returns recorded incident transitions, newest first
func (h *Handler) GetIncidentHistory(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.svc.IncidentHistory(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": records, "count": len(records)})
}

// CreateIncident opens an incident on an edge
func (h *Handler) CreateIncident(c *gin.Context) {
	var body createIncidentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body: edgeId is required"})
		return
	}

	typ, err := domain.ParseIncidentType(body.Type)
	if err != nil {
		writeError(c, err)
		return
	}

	req := domain.CreateIncidentRequest{
		EdgeID:     body.EdgeID,
		Severity:   domain.DefaultIncidentSeverity,
		DurationMs: domain.DefaultIncidentDurationMs,
		Type:       typ,
	}
	if body.Severity != nil {
		req.Severity = *body.Severity
	}
	if body.Duration != nil {
		req.DurationMs = domain.ClampDurationMs(*body.Duration)
	}

	inc, err := h.svc.CreateIncident(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Incident created successfully", "data": inc})
}

// ClearIncident ends an incident early
func (h *Handler) ClearIncident(c *gin.Context) {
	inc, err := h.svc.ClearIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Incident cleared successfully", "data": inc})
}

func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, st)
}

func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.svc.Config(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, cfg)
}

// UpdateConfig merges the supplied fields. A node_count or road_density change
// regenerates the whole network and drops every incident; the response
// reports this as "rebuilt": true.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var body domain.PartialConfig
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	if body.IsEmpty() {
		cfg, err := h.svc.Config(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cfg, "rebuilt": false, "timer_restarted": false})
		return
	}

	cfg, change, err := h.svc.UpdateConfig(c.Request.Context(), body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"data":            cfg,
		"rebuilt":         change.Rebuild,
		"timer_restarted": change.RestartTimer,
	})
}

func (h *Handler) Start(c *gin.Context) {
	if err := h.svc.Start(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "running": true})
}

func (h *Handler) Stop(c *gin.Context) {
	if err := h.svc.Stop(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "running": false})
}
