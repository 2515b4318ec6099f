package engine

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIncident_ClampsSeverity(t *testing.T) {
	ctx := context.Background()
	eng := startEngine(t, quietConfig(), newFakeClock(12), 21)

	inc, err := eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 1.5, DurationMs: 60_000})
	require.NoError(t, err)
	assert.Equal(t, 1.0, inc.Severity)

	edge, err := eng.GetEdge(ctx, "edge_0")
	require.NoError(t, err)
	assert.True(t, edge.IsIncident)
	assert.Equal(t, 1.0, edge.IncidentSeverity)
	assert.GreaterOrEqual(t, edge.Weight, 0.8)
}

func TestCreateIncident_ClampsDuration(t *testing.T) {
	ctx := context.Background()
	eng := startEngine(t, quietConfig(), newFakeClock(12), 22)

	inc, err := eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.5, DurationMs: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), inc.EndTime-inc.StartTime)

	inc, err = eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_1", Severity: 0.5, DurationMs: 99_999_999})
	require.NoError(t, err)
	assert.Equal(t, int64(3_600_000), inc.EndTime-inc.StartTime)
}

func TestCreateIncident_Conflict(t *testing.T) {
	ctx := context.Background()
	eng := startEngine(t, quietConfig(), newFakeClock(12), 23)

	_, err := eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.5, DurationMs: 60_000})
	require.NoError(t, err)

	_, err = eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.9, DurationMs: 60_000})
	assert.ErrorIs(t, err, domain.ErrIncidentConflict)

	active, err := eng.GetActiveIncidents(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, 0.5, active[0].Severity)
}

func TestCreateIncident_UnknownEdge(t *testing.T) {
	eng := startEngine(t, quietConfig(), newFakeClock(12), 24)

	_, err := eng.CreateIncident(context.Background(), domain.CreateIncidentRequest{EdgeID: "edge_nope", Severity: 0.5, DurationMs: 60_000})
	assert.ErrorIs(t, err, domain.ErrEdgeNotFound)
}

func TestCreateIncident_Type(t *testing.T) {
	ctx := context.Background()
	eng := startEngine(t, quietConfig(), newFakeClock(12), 25)

	inc, err := eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.75, DurationMs: 60_000, Type: domain.IncidentWeather})
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentWeather, inc.Type)
	assert.Equal(t, "Severe weather-related conditions", inc.Description)
	assert.Regexp(t, regexp.MustCompile(`^incident_\d+_[0-9a-f]{9}$`), inc.ID)

	inc, err = eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_1", Severity: 0.2, DurationMs: 60_000})
	require.NoError(t, err)
	assert.Contains(t, domain.IncidentTypes, inc.Type)
	assert.Equal(t, domain.DescribeIncident(inc.Type, 0.2), inc.Description)

	_, err = eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_2", Severity: 0.2, DurationMs: 60_000, Type: "meteor"})
	assert.ErrorIs(t, err, domain.ErrInvalidIncidentType)

	edge, err := eng.GetEdge(ctx, "edge_2")
	require.NoError(t, err)
	assert.False(t, edge.IsIncident)
}

func TestCreateIncident_AppliesCongestion(t *testing.T) {
	ctx := context.Background()
	eng := startEngine(t, quietConfig(), newFakeClock(12), 26)

	g, err := eng.GetGraph(ctx)
	require.NoError(t, err)
	adj := graph.NewAdjacency(g.Edges)

	target := -1
	for i := range g.Edges {
		if len(adj.Neighbors(i)) > 0 {
			target = i
			break
		}
	}
	require.GreaterOrEqual(t, target, 0)

	_, err = eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: g.Edges[target].ID, Severity: 0.5, DurationMs: 60_000})
	require.NoError(t, err)

	after, err := eng.GetGraph(ctx)
	require.NoError(t, err)

	assert.InDelta(t, min(1, g.Edges[target].Weight+0.4), after.Edges[target].Weight, 1e-9)
	assert.Equal(t, graph.Speed(after.Edges[target].Weight), after.Edges[target].Speed)
	neighbors := map[int]bool{}
	for _, j := range adj.Neighbors(target) {
		neighbors[j] = true
		assert.InDelta(t, min(1, g.Edges[j].Weight+0.25), after.Edges[j].Weight, 1e-9)
		assert.Equal(t, graph.Speed(after.Edges[j].Weight), after.Edges[j].Speed)
	}
	for i := range g.Edges {
		if i != target && !neighbors[i] {
			assert.Equal(t, g.Edges[i].Weight, after.Edges[i].Weight)
		}
	}
}

func TestClearIncident(t *testing.T) {
	ctx := context.Background()
	eng := startEngine(t, quietConfig(), newFakeClock(12), 27)

	created, err := eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.6, DurationMs: 60_000})
	require.NoError(t, err)
	raised, err := eng.GetEdge(ctx, "edge_0")
	require.NoError(t, err)

	cleared, err := eng.ClearIncident(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, cleared)

	edge, err := eng.GetEdge(ctx, "edge_0")
	require.NoError(t, err)
	assert.False(t, edge.IsIncident)
	assert.Zero(t, edge.IncidentSeverity)
	assert.Equal(t, raised.Weight, edge.Weight, "clearing does not undo congestion")

	_, err = eng.ClearIncident(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrIncidentNotFound)

	// the edge accepts a new incident once clear
	_, err = eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.6, DurationMs: 60_000})
	assert.NoError(t, err)
}

func TestClearIncident_Unknown(t *testing.T) {
	eng := startEngine(t, quietConfig(), newFakeClock(12), 28)

	_, err := eng.ClearIncident(context.Background(), "incident_0_deadbeef0")
	assert.ErrorIs(t, err, domain.ErrIncidentNotFound)
}

func TestIncidentExpiresOnTick(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(12)
	eng := startEngine(t, quietConfig(), clock, 29)

	inc, err := eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.5, DurationMs: 20_000})
	require.NoError(t, err)

	clock.Advance(19 * time.Second)
	require.NoError(t, eng.Step(ctx))
	active, err := eng.GetActiveIncidents(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1000), active[0].RemainingTime)

	clock.Advance(2 * time.Second)
	require.NoError(t, eng.Step(ctx))

	active, err = eng.GetActiveIncidents(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	edge, err := eng.GetEdge(ctx, inc.EdgeID)
	require.NoError(t, err)
	assert.False(t, edge.IsIncident)
	assert.Zero(t, edge.IncidentSeverity)
}

func TestAvailableEdges(t *testing.T) {
	ctx := context.Background()
	eng := startEngine(t, quietConfig(), newFakeClock(12), 30)

	all, err := eng.GetAllEdges(ctx)
	require.NoError(t, err)

	_, err = eng.CreateIncident(ctx, domain.CreateIncidentRequest{EdgeID: "edge_0", Severity: 0.5, DurationMs: 60_000})
	require.NoError(t, err)

	available, err := eng.GetAvailableEdgesForIncident(ctx)
	require.NoError(t, err)
	assert.Len(t, available, len(all)-1)
	for _, e := range available {
		assert.NotEqual(t, "edge_0", e.ID)
	}

	all, err = eng.GetAllEdges(ctx)
	require.NoError(t, err)
	assert.True(t, all[0].HasIncident)
}
