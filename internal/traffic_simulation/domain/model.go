package domain

// Vertex is a road intersection. Coordinates never change after the graph is built.
type Vertex struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Edge is a road segment between two vertices
type Edge struct {
	ID               string  `json:"id"`
	From             string  `json:"from"`
	To               string  `json:"to"`
	Weight           float64 `json:"weight"`   // traffic level in [0,1]
	Distance         int     `json:"distance"` // derived from endpoint geometry
	Speed            int     `json:"speed"`
	VehicleCount     int     `json:"vehicleCount"`
	IsIncident       bool    `json:"isIncident"`
	IncidentSeverity float64 `json:"incidentSeverity"`
	Bidirectional    bool    `json:"bidirectional"`
}

// Incident is a time-bounded disruption attached to exactly one edge
type Incident struct {
	ID          string       `json:"id"`
	EdgeID      string       `json:"edgeId"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	Severity    float64      `json:"severity"`
	StartTime   int64        `json:"startTime"` // unix ms
	EndTime     int64        `json:"endTime"`   // unix ms
	Type        IncidentType `json:"type"`
	Description string       `json:"description"`
}

// ActiveIncident is an incident annotated with the time it has left
type ActiveIncident struct {
	Incident
	RemainingTime int64 `json:"remainingTime"`
}

// WithRemaining computes max(0, EndTime-nowMs).
func (i Incident) WithRemaining(nowMs int64) ActiveIncident {
	remaining := i.EndTime - nowMs
	if remaining < 0 {
		remaining = 0
	}
	return ActiveIncident{Incident: i, RemainingTime: remaining}
}

// EdgeSummary is the public projection returned by the edge listing
type EdgeSummary struct {
	ID            string  `json:"id"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	Distance      int     `json:"distance"`
	CurrentWeight float64 `json:"currentWeight"`
	HasIncident   bool    `json:"hasIncident"`
}

// AvailableEdge is an edge that can take a new incident
type AvailableEdge struct {
	ID             string  `json:"id"`
	From           string  `json:"from"`
	To             string  `json:"to"`
	Distance       int     `json:"distance"`
	CurrentTraffic float64 `json:"currentTraffic"`
}

// Snapshot is a self-contained copy of the simulation state
type Snapshot struct {
	Vertices    []Vertex         `json:"vertices"`
	Edges       []Edge           `json:"edges"`
	Incidents   []ActiveIncident `json:"incidents"`
	Config      Config           `json:"config"`
	UpdateCount int64            `json:"updateCount"`
	Timestamp   int64            `json:"timestamp"`
}

// GraphView is the topology-only part of a snapshot
type GraphView struct {
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`
}

// Stats aggregates network-wide figures
type Stats struct {
	TotalVertices       int     `json:"totalVertices"`
	TotalEdges          int     `json:"totalEdges"`
	AverageTrafficLevel float64 `json:"averageTrafficLevel"`
	TotalVehicles       int     `json:"totalVehicles"`
	AverageSpeed        int     `json:"averageSpeed"`
	ActiveIncidents     int     `json:"activeIncidents"`
	UpdateCount         int64   `json:"updateCount"`
	Uptime              int64   `json:"uptime"` // ms since engine creation
}

// CreateIncidentRequest carries the caller-supplied incident parameters.
// Severity and DurationMs are clamped, never rejected.
type CreateIncidentRequest struct {
	EdgeID     string
	Severity   float64
	DurationMs int64
	Type       IncidentType // empty picks a random type
}

// Event types emitted by the engine
const (
	EventTrafficUpdate   = "traffic_update"
	EventIncidentCreated = "incident_created"
	EventIncidentCleared = "incident_cleared"
	EventGraphRebuilt    = "graph_rebuilt"
)

// Event is delivered to subscribers. Snapshot is set for traffic_update and
// graph_rebuilt, Incident for incident_created and incident_cleared.
type Event struct {
	Type      string    `json:"type"`
	Snapshot  *Snapshot `json:"snapshot,omitempty"`
	Incident  *Incident `json:"incident,omitempty"`
	Expired   bool      `json:"expired,omitempty"`
	Timestamp int64     `json:"timestamp"`
}
