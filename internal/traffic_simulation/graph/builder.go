package graph

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
)

// Layout bounding box and construction constants
const (
	layoutMinX   = 50.0
	layoutWidth  = 800.0
	layoutMinY   = 50.0
	layoutHeight = 500.0

	distanceScale     = 10.0
	minNeighbors      = 2
	maxNeighbors      = 4
	densityBias       = 0.5
	initialVehicleMax = 50
)

// Graph is a freshly built road network
type Graph struct {
	Vertices []domain.Vertex
	Edges    []domain.Edge
}

type candidate struct {
	index    int
	distance float64
}

// Build places cfg.NodeCount vertices at random positions and links each to
// 2-4 of its nearest neighbours, accepting each link with probability
// RoadDensity+0.5. A repair pass then attaches any vertex left without roads.
func Build(r *rand.Rand, cfg domain.Config) Graph {
	vertices := make([]domain.Vertex, cfg.NodeCount)
	for i := range vertices {
		vertices[i] = domain.Vertex{
			ID:   fmt.Sprintf("node_%d", i),
			Name: fmt.Sprintf("Intersection %d", i+1),
			X:    r.Float64()*layoutWidth + layoutMinX,
			Y:    r.Float64()*layoutHeight + layoutMinY,
		}
	}

	var edges []domain.Edge
	pairs := make(map[[2]int]struct{})

	for i := range vertices {
		candidates := make([]candidate, 0, len(vertices)-1)
		for j := range vertices {
			if i == j {
				continue
			}
			candidates = append(candidates, candidate{index: j, distance: distanceBetween(vertices[i], vertices[j])})
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].distance < candidates[b].distance
		})

		connect := minNeighbors + r.IntN(maxNeighbors-minNeighbors+1)
		for k := 0; k < connect && k < len(candidates); k++ {
			j := candidates[k].index
			key := [2]int{min(i, j), max(i, j)}
			if _, dup := pairs[key]; dup {
				continue
			}
			if r.Float64() >= cfg.RoadDensity+densityBias {
				continue
			}
			pairs[key] = struct{}{}
			edges = append(edges, newEdge(r, cfg, len(edges), vertices[i], vertices[j], candidates[k].distance))
		}
	}

	edges = EnsureConnectivity(r, cfg, vertices, edges)
	return Graph{Vertices: vertices, Edges: edges}
}

// EnsureConnectivity links every vertex that is not an endpoint of any edge to
// its nearest connected vertex. It adds at most one edge per isolated vertex
// and makes a single pass. When no vertex is connected yet, the nearest vertex
// of any kind is used so that graphs with two or more vertices always end up
// without isolated vertices.
func EnsureConnectivity(r *rand.Rand, cfg domain.Config, vertices []domain.Vertex, edges []domain.Edge) []domain.Edge {
	connected := make(map[string]struct{}, len(vertices))
	for _, e := range edges {
		connected[e.From] = struct{}{}
		connected[e.To] = struct{}{}
	}

	for _, v := range vertices {
		if _, ok := connected[v.ID]; ok {
			continue
		}

		nearest := -1
		best := math.Inf(1)
		for j, other := range vertices {
			if other.ID == v.ID {
				continue
			}
			if _, ok := connected[other.ID]; !ok && len(connected) > 0 {
				continue
			}
			if d := distanceBetween(v, other); d < best {
				best = d
				nearest = j
			}
		}
		if nearest < 0 {
			continue
		}

		edges = append(edges, newEdge(r, cfg, len(edges), v, vertices[nearest], best))
		connected[v.ID] = struct{}{}
		connected[vertices[nearest].ID] = struct{}{}
	}

	return edges
}

func newEdge(r *rand.Rand, cfg domain.Config, seq int, from, to domain.Vertex, distance float64) domain.Edge {
	weight := RandomTraffic(r, cfg.BaseTrafficLevel, cfg.TrafficVariability)
	return domain.Edge{
		ID:            fmt.Sprintf("edge_%d", seq),
		From:          from.ID,
		To:            to.ID,
		Weight:        weight,
		Distance:      int(math.Round(distance / distanceScale)),
		Speed:         Speed(weight),
		VehicleCount:  r.IntN(initialVehicleMax),
		Bidirectional: true,
	}
}

func distanceBetween(a, b domain.Vertex) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
