package engine

import (
	"fmt"
	"log"
	"math"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/graph"
)

// Update cycle coefficients
const (
	selfWeight          = 0.85
	neighborWeight      = 0.05
	randomChangeSpan    = 0.2 // randomChange ~ U(-0.1, 0.1)
	perturbationChance  = 0.05
	perturbationSpan    = 0.15 // extra ~ U(-0.075, 0.075)
	spontaneousSevMin   = 0.3
	spontaneousSevSpan  = 0.5
	spontaneousDurMinMs = 30_000
	spontaneousDurSpan  = 60_000
)

// TimeMultiplier scales traffic by hour of day. Both rush-hour windows are
// inclusive at each end.
func TimeMultiplier(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9:
		return 1.5
	case hour >= 17 && hour <= 19:
		return 1.6
	case hour >= 23 || hour <= 5:
		return 0.4
	default:
		return 1.0
	}
}

// step is one update cycle. New weights are computed from the weights as they
// stood at the start of the tick and written afterwards.
func (e *Engine) step() {
	e.updateCount++
	now := e.now()
	multiplier := TimeMultiplier(now.Hour())

	next := make([]float64, len(e.edges))
	valid := make([]bool, len(e.edges))
	for i := range e.edges {
		w, err := e.nextWeight(i, multiplier)
		if err != nil {
			log.Printf("[traffic] tick=%d edge=%s kept previous values: %v", e.updateCount, e.edges[i].ID, err)
			continue
		}
		next[i] = w
		valid[i] = true
	}

	for i := range e.edges {
		if !valid[i] {
			continue
		}
		edge := &e.edges[i]
		edge.Weight = next[i]
		edge.Speed = graph.Speed(next[i])
		edge.VehicleCount = graph.VehicleCount(e.rng, next[i])
	}

	e.spawnIncidents()
	e.expireIncidents(now.UnixMilli())

	snapshot := e.snapshot()
	e.publish(domain.Event{Type: domain.EventTrafficUpdate, Snapshot: &snapshot, Timestamp: snapshot.Timestamp})
}

func (e *Engine) nextWeight(i int, multiplier float64) (float64, error) {
	edge := e.edges[i]
	if math.IsNaN(edge.Weight) || math.IsInf(edge.Weight, 0) {
		return 0, fmt.Errorf("weight is not finite: %v", edge.Weight)
	}
	if _, ok := e.vertexIndex[edge.From]; !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrVertexNotFound, edge.From)
	}
	if _, ok := e.vertexIndex[edge.To]; !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrVertexNotFound, edge.To)
	}

	avg := e.adjacency.NeighborAverage(e.edges, i, e.cfg.BaseTrafficLevel)
	if math.IsNaN(avg) {
		return 0, fmt.Errorf("neighbor average is not finite")
	}

	w := edge.Weight*selfWeight + avg*neighborWeight + (e.rng.Float64()-0.5)*randomChangeSpan
	if e.rng.Float64() < perturbationChance {
		w += (e.rng.Float64() - 0.5) * perturbationSpan
	}
	return graph.Clamp01(w * multiplier), nil
}

// spawnIncidents samples every clear edge once. A failed creation is logged
// and skipped; it never aborts the tick.
func (e *Engine) spawnIncidents() {
	if e.cfg.IncidentProbability <= 0 {
		return
	}
	for i := range e.edges {
		if e.edges[i].IsIncident {
			continue
		}
		if e.rng.Float64() >= e.cfg.IncidentProbability {
			continue
		}

		req := domain.CreateIncidentRequest{
			EdgeID:     e.edges[i].ID,
			Severity:   e.rng.Float64()*spontaneousSevSpan + spontaneousSevMin,
			DurationMs: spontaneousDurMinMs + int64(e.rng.Float64()*spontaneousDurSpan),
		}
		inc, err := e.createIncident(req)
		if err != nil {
			log.Printf("[traffic] tick=%d spontaneous incident on edge=%s skipped: %v", e.updateCount, req.EdgeID, err)
			continue
		}
		log.Printf("[traffic] tick=%d spontaneous incident=%s edge=%s type=%s severity=%.2f", e.updateCount, inc.ID, inc.EdgeID, inc.Type, inc.Severity)
		e.publish(domain.Event{Type: domain.EventIncidentCreated, Incident: &inc})
	}
}
