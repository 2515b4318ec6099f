package graph

import (
	"math/rand/v2"
	"testing"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func endpointSet(edges []domain.Edge) map[string]struct{} {
	set := make(map[string]struct{})
	for _, e := range edges {
		set[e.From] = struct{}{}
		set[e.To] = struct{}{}
	}
	return set
}

func TestBuild_NoIsolatedVertices(t *testing.T) {
	tests := []struct {
		name      string
		nodeCount int
		density   float64
	}{
		{"three nodes", 3, 0.3},
		{"two nodes sparse", 2, 0},
		{"default size", 20, 0.3},
		{"sparse large", 100, 0},
		{"dense", 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			cfg.NodeCount = tt.nodeCount
			cfg.RoadDensity = tt.density

			for seed := uint64(1); seed <= 25; seed++ {
				g := Build(newRand(seed), cfg)
				require.Len(t, g.Vertices, tt.nodeCount)

				connected := endpointSet(g.Edges)
				for _, v := range g.Vertices {
					_, ok := connected[v.ID]
					assert.True(t, ok, "seed %d: vertex %s is isolated", seed, v.ID)
				}
			}
		})
	}
}

func TestBuild_EdgeInvariants(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.NodeCount = 40

	g := Build(newRand(7), cfg)
	require.NotEmpty(t, g.Edges)

	ids := make(map[string]struct{})
	pairs := make(map[[2]string]struct{})
	vertexIDs := make(map[string]struct{})
	for _, v := range g.Vertices {
		vertexIDs[v.ID] = struct{}{}
		assert.GreaterOrEqual(t, v.X, 50.0)
		assert.LessOrEqual(t, v.X, 850.0)
		assert.GreaterOrEqual(t, v.Y, 50.0)
		assert.LessOrEqual(t, v.Y, 550.0)
	}

	for _, e := range g.Edges {
		_, dup := ids[e.ID]
		assert.False(t, dup, "duplicate edge id %s", e.ID)
		ids[e.ID] = struct{}{}

		assert.NotEqual(t, e.From, e.To, "self loop on %s", e.ID)
		_, okFrom := vertexIDs[e.From]
		_, okTo := vertexIDs[e.To]
		assert.True(t, okFrom && okTo)

		key := [2]string{min(e.From, e.To), max(e.From, e.To)}
		_, dupPair := pairs[key]
		assert.False(t, dupPair, "duplicate road between %s and %s", e.From, e.To)
		pairs[key] = struct{}{}

		assert.GreaterOrEqual(t, e.Weight, 0.0)
		assert.LessOrEqual(t, e.Weight, 1.0)
		assert.Equal(t, Speed(e.Weight), e.Speed)
		assert.GreaterOrEqual(t, e.VehicleCount, 0)
		assert.Less(t, e.VehicleCount, 50)
		assert.False(t, e.IsIncident)
		assert.Zero(t, e.IncidentSeverity)
		assert.True(t, e.Bidirectional)
	}
}

func TestBuild_SameSeedSameGraph(t *testing.T) {
	cfg := domain.DefaultConfig()
	a := Build(newRand(99), cfg)
	b := Build(newRand(99), cfg)
	assert.Equal(t, a, b)
}

func TestBuild_SingleVertex(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.NodeCount = 1

	g := Build(newRand(1), cfg)
	assert.Len(t, g.Vertices, 1)
	assert.Empty(t, g.Edges)
}

func TestEnsureConnectivity(t *testing.T) {
	cfg := domain.DefaultConfig()
	vertices := []domain.Vertex{
		{ID: "node_0", X: 0, Y: 0},
		{ID: "node_1", X: 10, Y: 0},
		{ID: "node_2", X: 100, Y: 0},
		{ID: "node_3", X: 105, Y: 0},
	}

	t.Run("attaches isolated vertices to nearest connected one", func(t *testing.T) {
		edges := []domain.Edge{{ID: "edge_0", From: "node_0", To: "node_1"}}
		got := EnsureConnectivity(newRand(1), cfg, vertices, edges)

		require.Len(t, got, 3)
		assert.Equal(t, "node_2", got[1].From)
		assert.Equal(t, "node_1", got[1].To)
		assert.Equal(t, 9, got[1].Distance)
		// node_2 is connected by then, so node_3 attaches to it
		assert.Equal(t, "node_3", got[2].From)
		assert.Equal(t, "node_2", got[2].To)
		assert.Equal(t, "edge_2", got[2].ID)
	})

	t.Run("bootstraps from an empty edge set", func(t *testing.T) {
		got := EnsureConnectivity(newRand(1), cfg, vertices, nil)

		assert.LessOrEqual(t, len(got), len(vertices))
		connected := endpointSet(got)
		assert.Len(t, connected, len(vertices))
	})

	t.Run("leaves a connected graph untouched", func(t *testing.T) {
		edges := []domain.Edge{
			{ID: "edge_0", From: "node_0", To: "node_1"},
			{ID: "edge_1", From: "node_2", To: "node_3"},
		}
		got := EnsureConnectivity(newRand(1), cfg, vertices, edges)
		assert.Equal(t, edges, got)
	})
}
