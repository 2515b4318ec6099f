package engine

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/graph"
)

// rebuild replaces vertices and edges wholesale and drops all incidents.
func (e *Engine) rebuild() {
	g := graph.Build(e.rng, e.cfg)

	e.vertices = g.Vertices
	e.edges = g.Edges
	e.incidents = nil
	e.reindex()

	log.Printf("[traffic] graph built nodes=%d edges=%d density=%.2f max_degree=%d",
		len(e.vertices), len(e.edges), e.cfg.RoadDensity, e.maxDegree())
}

func (e *Engine) maxDegree() int {
	var best int
	for _, v := range e.vertices {
		best = max(best, e.adjacency.Degree(v.ID))
	}
	return best
}

func (e *Engine) reindex() {
	e.vertexIndex = make(map[string]int, len(e.vertices))
	for i, v := range e.vertices {
		e.vertexIndex[v.ID] = i
	}
	e.edgeIndex = make(map[string]int, len(e.edges))
	for i, edge := range e.edges {
		e.edgeIndex[edge.ID] = i
	}
	e.adjacency = graph.NewAdjacency(e.edges)
}

// UpdateConfig merges the supplied fields into the running configuration.
//
// Changing node_count or road_density REBUILDS THE GRAPH: every vertex, edge
// and incident is discarded and a new network is generated. Changing
// update_interval restarts a running timer with the new period and keeps all
// state.
func (e *Engine) UpdateConfig(ctx context.Context, p domain.PartialConfig) (domain.Config, domain.ConfigChange, error) {
	var (
		cfg    domain.Config
		change domain.ConfigChange
		oerr   error
	)
	err := e.do(ctx, func() {
		next, ch := domain.MergeConfig(e.cfg, p)
		if verr := next.Validate(); verr != nil {
			oerr = verr
			cfg = e.cfg
			return
		}

		e.cfg = next
		if ch.Rebuild {
			e.rebuild()
			snapshot := e.snapshot()
			e.publish(domain.Event{Type: domain.EventGraphRebuilt, Snapshot: &snapshot, Timestamp: snapshot.Timestamp})
		}
		if ch.RestartTimer && e.ticker != nil {
			e.ticker.Reset(next.Interval())
			log.Printf("[traffic] update interval changed to %s", next.Interval())
		}
		cfg, change = e.cfg, ch
	})
	if err != nil {
		return domain.Config{}, domain.ConfigChange{}, err
	}
	return cfg, change, oerr
}

func (e *Engine) GetConfig(ctx context.Context) (domain.Config, error) {
	var cfg domain.Config
	err := e.do(ctx, func() { cfg = e.cfg })
	return cfg, err
}

// GetCurrentState returns a deep copy of the whole simulation state
func (e *Engine) GetCurrentState(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot
	err := e.do(ctx, func() { s = e.snapshot() })
	return s, err
}

func (e *Engine) GetGraph(ctx context.Context) (domain.GraphView, error) {
	var g domain.GraphView
	err := e.do(ctx, func() {
		g = domain.GraphView{
			Vertices: append(make([]domain.Vertex, 0, len(e.vertices)), e.vertices...),
			Edges:    append(make([]domain.Edge, 0, len(e.edges)), e.edges...),
		}
	})
	return g, err
}

func (e *Engine) GetAllEdges(ctx context.Context) ([]domain.EdgeSummary, error) {
	var out []domain.EdgeSummary
	err := e.do(ctx, func() {
		out = make([]domain.EdgeSummary, 0, len(e.edges))
		for _, edge := range e.edges {
			out = append(out, domain.EdgeSummary{
				ID:            edge.ID,
				From:          edge.From,
				To:            edge.To,
				Distance:      edge.Distance,
				CurrentWeight: edge.Weight,
				HasIncident:   edge.IsIncident,
			})
		}
	})
	return out, err
}

// GetAvailableEdgesForIncident lists edges without an active incident
func (e *Engine) GetAvailableEdgesForIncident(ctx context.Context) ([]domain.AvailableEdge, error) {
	var out []domain.AvailableEdge
	err := e.do(ctx, func() {
		out = make([]domain.AvailableEdge, 0, len(e.edges))
		for _, edge := range e.edges {
			if edge.IsIncident {
				continue
			}
			out = append(out, domain.AvailableEdge{
				ID:             edge.ID,
				From:           edge.From,
				To:             edge.To,
				Distance:       edge.Distance,
				CurrentTraffic: edge.Weight,
			})
		}
	})
	return out, err
}

func (e *Engine) GetActiveIncidents(ctx context.Context) ([]domain.ActiveIncident, error) {
	var out []domain.ActiveIncident
	err := e.do(ctx, func() { out = e.activeIncidents(e.now().UnixMilli()) })
	return out, err
}

func (e *Engine) GetEdge(ctx context.Context, id string) (domain.Edge, error) {
	var (
		edge  domain.Edge
		found bool
	)
	err := e.do(ctx, func() {
		var idx int
		if idx, found = e.edgeIndex[id]; found {
			edge = e.edges[idx]
		}
	})
	if err != nil {
		return domain.Edge{}, err
	}
	if !found {
		return domain.Edge{}, fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, id)
	}
	return edge, nil
}

func (e *Engine) GetVertex(ctx context.Context, id string) (domain.Vertex, error) {
	var (
		v     domain.Vertex
		found bool
	)
	err := e.do(ctx, func() {
		var idx int
		if idx, found = e.vertexIndex[id]; found {
			v = e.vertices[idx]
		}
	})
	if err != nil {
		return domain.Vertex{}, err
	}
	if !found {
		return domain.Vertex{}, fmt.Errorf("%w: %s", domain.ErrVertexNotFound, id)
	}
	return v, nil
}

// GetStats aggregates network-wide figures
func (e *Engine) GetStats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	err := e.do(ctx, func() {
		st = domain.Stats{
			TotalVertices:   len(e.vertices),
			TotalEdges:      len(e.edges),
			ActiveIncidents: len(e.incidents),
			UpdateCount:     e.updateCount,
			Uptime:          e.now().Sub(e.createdAt).Milliseconds(),
		}
		if len(e.edges) == 0 {
			return
		}

		var traffic float64
		var speed int
		for _, edge := range e.edges {
			traffic += edge.Weight
			speed += edge.Speed
			st.TotalVehicles += edge.VehicleCount
		}
		n := float64(len(e.edges))
		st.AverageTrafficLevel = math.Round(traffic/n*1000) / 1000
		st.AverageSpeed = int(math.Round(float64(speed) / n))
	})
	return st, err
}

func (e *Engine) snapshot() domain.Snapshot {
	now := e.now().UnixMilli()
	return domain.Snapshot{
		Vertices:    append(make([]domain.Vertex, 0, len(e.vertices)), e.vertices...),
		Edges:       append(make([]domain.Edge, 0, len(e.edges)), e.edges...),
		Incidents:   e.activeIncidents(now),
		Config:      e.cfg,
		UpdateCount: e.updateCount,
		Timestamp:   now,
	}
}

func (e *Engine) activeIncidents(nowMs int64) []domain.ActiveIncident {
	out := make([]domain.ActiveIncident, 0, len(e.incidents))
	for _, inc := range e.incidents {
		out = append(out, inc.WithRemaining(nowMs))
	}
	return out
}
