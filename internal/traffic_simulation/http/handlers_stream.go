package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamEvents streams engine events to the client using Server-Sent Events.
// The first frame is the current state; after that every tick, incident
// creation/clearance and graph rebuild is pushed as it happens.
func (h *Handler) StreamEvents(c *gin.Context) {
	ctx := c.Request.Context()

	events, cancel, err := h.svc.Subscribe(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	defer cancel()

	state, err := h.svc.CurrentState(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "streaming unsupported"})
		return
	}

	if err := writeEvent(c.Writer, "initial", state); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case evt, ok := <-events:
			if !ok {
				// engine shut down
				fmt.Fprint(c.Writer, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			if err := writeEvent(c.Writer, evt.Type, evt); err != nil {
				continue
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes one SSE frame. Nothing is written when payload cannot be
// encoded.
func writeEvent(w io.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[traffic-http] stream event=%s encode failed: %v", name, err)
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
