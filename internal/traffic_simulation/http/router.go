package http

import "github.com/gin-gonic/gin"

// Register registers the traffic routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/current", h.GetCurrentState)
	rg.GET("/graph", h.GetGraph)
	rg.GET("/vertex/:id", h.GetVertex)
	rg.GET("/edge/:id", h.GetEdge)
	rg.GET("/edges", h.GetAllEdges)
	rg.GET("/edges/available", h.GetAvailableEdges)
	rg.GET("/incidents", h.GetActiveIncidents)
	rg.GET("/incidents/history", h.GetIncidentHistory)
	rg.GET("/stats", h.GetStats)
	rg.GET("/config", h.GetConfig)
	rg.GET("/stream", h.StreamEvents)

	mutations := rg.Group("")
	mutations.Use(RateLimit(h.limiter))
	mutations.POST("/incident", h.CreateIncident)
	mutations.DELETE("/incident/:id", h.ClearIncident)
	mutations.POST("/config", h.UpdateConfig)
	mutations.POST("/start", h.Start)
	mutations.POST("/stop", h.Stop)
}
