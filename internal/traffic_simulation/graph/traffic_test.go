package graph

import (
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/stretchr/testify/assert"
)

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.42, Clamp01(0.42))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
}

func TestRandomTraffic_Bounds(t *testing.T) {
	r := newRand(3)
	for i := 0; i < 1000; i++ {
		w := RandomTraffic(r, 0.15, 1)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}

	// no variability collapses to the base level
	assert.Equal(t, 0.3, RandomTraffic(r, 0.3, 0))
}

func TestSpeed(t *testing.T) {
	assert.Equal(t, 60, Speed(0))
	assert.Equal(t, 5, Speed(1))
	assert.Equal(t, 33, Speed(0.5))

	prev := Speed(0)
	for w := 0.0; w <= 1.0; w += 0.01 {
		s := Speed(w)
		assert.LessOrEqual(t, s, prev)
		prev = s
	}
}

func TestVehicleCount(t *testing.T) {
	r := newRand(5)
	for i := 0; i < 500; i++ {
		n := VehicleCount(r, 0.5)
		assert.GreaterOrEqual(t, n, 45)
		assert.LessOrEqual(t, n, 55)
		assert.GreaterOrEqual(t, VehicleCount(r, 0), 0)
	}
}

func TestAdjacency(t *testing.T) {
	edges := []domain.Edge{
		{ID: "edge_0", From: "a", To: "b", Weight: 0.2},
		{ID: "edge_1", From: "b", To: "c", Weight: 0.4},
		{ID: "edge_2", From: "c", To: "a", Weight: 0.6},
		{ID: "edge_3", From: "d", To: "e", Weight: 0.9},
	}
	adj := NewAdjacency(edges)

	assert.ElementsMatch(t, []int{1, 2}, adj.Neighbors(0))
	assert.ElementsMatch(t, []int{0, 2}, adj.Neighbors(1))
	assert.Empty(t, adj.Neighbors(3))
	assert.Nil(t, adj.Neighbors(10))

	assert.InDelta(t, 0.5, adj.NeighborAverage(edges, 0, 0.15), 1e-9)
	assert.Equal(t, 0.15, adj.NeighborAverage(edges, 3, 0.15))

	assert.Equal(t, 2, adj.Degree("a"))
	assert.Equal(t, 1, adj.Degree("d"))
	assert.Equal(t, 0, adj.Degree("zzz"))
}
