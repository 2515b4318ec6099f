package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/graph"
	"github.com/google/uuid"
)

// Congestion added when an incident starts
const (
	incidentEdgeImpact     = 0.8
	incidentNeighborImpact = 0.5
)

// CreateIncident opens an incident on req.EdgeID. Severity and duration are
// clamped. It fails with ErrEdgeNotFound for an unknown edge and
// ErrIncidentConflict when the edge already has an active incident.
func (e *Engine) CreateIncident(ctx context.Context, req domain.CreateIncidentRequest) (domain.Incident, error) {
	var (
		inc  domain.Incident
		oerr error
	)
	err := e.do(ctx, func() {
		inc, oerr = e.createIncident(req)
		if oerr == nil {
			log.Printf("[traffic] incident=%s created edge=%s type=%s severity=%.2f", inc.ID, inc.EdgeID, inc.Type, inc.Severity)
			e.publish(domain.Event{Type: domain.EventIncidentCreated, Incident: &inc})
		}
	})
	if err != nil {
		return domain.Incident{}, err
	}
	return inc, oerr
}

// ClearIncident ends an incident early and returns the removed record. Weight
// increases applied at creation are not reverted.
func (e *Engine) ClearIncident(ctx context.Context, incidentID string) (domain.Incident, error) {
	var (
		inc  domain.Incident
		oerr error
	)
	err := e.do(ctx, func() {
		idx := e.incidentIndex(incidentID)
		if idx < 0 {
			oerr = fmt.Errorf("%w: %s", domain.ErrIncidentNotFound, incidentID)
			return
		}
		inc = e.removeIncident(idx)
		log.Printf("[traffic] incident=%s cleared edge=%s", inc.ID, inc.EdgeID)
		e.publish(domain.Event{Type: domain.EventIncidentCleared, Incident: &inc})
	})
	if err != nil {
		return domain.Incident{}, err
	}
	return inc, oerr
}

func (e *Engine) createIncident(req domain.CreateIncidentRequest) (domain.Incident, error) {
	idx, ok := e.edgeIndex[req.EdgeID]
	if !ok {
		return domain.Incident{}, fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, req.EdgeID)
	}
	edge := &e.edges[idx]
	if edge.IsIncident {
		return domain.Incident{}, fmt.Errorf("%w: %s", domain.ErrIncidentConflict, req.EdgeID)
	}

	typ, err := domain.ParseIncidentType(string(req.Type))
	if err != nil {
		return domain.Incident{}, err
	}
	if typ == "" {
		typ = domain.IncidentTypes[e.rng.IntN(len(domain.IncidentTypes))]
	}

	severity := domain.ClampSeverity(req.Severity)
	duration := domain.ClampDuration(req.DurationMs)
	start := e.now().UnixMilli()

	inc := domain.Incident{
		ID:          newIncidentID(start),
		EdgeID:      edge.ID,
		From:        edge.From,
		To:          edge.To,
		Severity:    severity,
		StartTime:   start,
		EndTime:     start + duration,
		Type:        typ,
		Description: domain.DescribeIncident(typ, severity),
	}

	e.incidents = append(e.incidents, inc)
	edge.IsIncident = true
	edge.IncidentSeverity = severity
	e.applyIncidentEffect(idx, severity)

	return inc, nil
}

// applyIncidentEffect raises congestion on the edge and spills over onto every
// edge sharing an endpoint with it. Speed follows the new weight immediately;
// vehicle counts are resampled on the next tick.
func (e *Engine) applyIncidentEffect(idx int, severity float64) {
	e.congest(idx, severity*incidentEdgeImpact)
	for _, j := range e.adjacency.Neighbors(idx) {
		e.congest(j, severity*incidentNeighborImpact)
	}
}

func (e *Engine) congest(idx int, delta float64) {
	edge := &e.edges[idx]
	edge.Weight = min(1, edge.Weight+delta)
	edge.Speed = graph.Speed(edge.Weight)
}

// expireIncidents removes every incident with nowMs >= EndTime.
func (e *Engine) expireIncidents(nowMs int64) {
	kept := e.incidents[:0]
	var expired []domain.Incident
	for _, inc := range e.incidents {
		if nowMs >= inc.EndTime {
			expired = append(expired, inc)
			continue
		}
		kept = append(kept, inc)
	}
	e.incidents = kept

	for i := range expired {
		inc := expired[i]
		e.resetEdge(inc.EdgeID)
		log.Printf("[traffic] incident=%s expired edge=%s", inc.ID, inc.EdgeID)
		e.publish(domain.Event{Type: domain.EventIncidentCleared, Incident: &inc, Expired: true})
	}
}

func (e *Engine) removeIncident(idx int) domain.Incident {
	inc := e.incidents[idx]
	e.incidents = append(e.incidents[:idx], e.incidents[idx+1:]...)
	e.resetEdge(inc.EdgeID)
	return inc
}

func (e *Engine) resetEdge(edgeID string) {
	if idx, ok := e.edgeIndex[edgeID]; ok {
		e.edges[idx].IsIncident = false
		e.edges[idx].IncidentSeverity = 0
	}
}

func (e *Engine) incidentIndex(id string) int {
	for i, inc := range e.incidents {
		if inc.ID == id {
			return i
		}
	}
	return -1
}

// newIncidentID combines the creation time with nine random hex digits.
func newIncidentID(startMs int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("incident_%d_%s", startMs, suffix)
}
