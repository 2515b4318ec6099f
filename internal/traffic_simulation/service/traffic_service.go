package service

import (
	"context"
	"log"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/engine"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/repository"
)

// TrafficService is the entry point used by the HTTP layer and background jobs
type TrafficService struct {
	engine *engine.Engine
	repo   *repository.SnapshotRepository // nil when Redis is disabled
}

// NewTrafficService creates a new TrafficService. repo may be nil.
func NewTrafficService(eng *engine.Engine, repo *repository.SnapshotRepository) *TrafficService {
	return &TrafficService{
		engine: eng,
		repo:   repo,
	}
}

// PersistenceEnabled reports whether a Redis repository is attached
func (s *TrafficService) PersistenceEnabled() bool {
	return s.repo != nil
}

func (s *TrafficService) CurrentState(ctx context.Context) (domain.Snapshot, error) {
	return s.engine.GetCurrentState(ctx)
}

func (s *TrafficService) Graph(ctx context.Context) (domain.GraphView, error) {
	return s.engine.GetGraph(ctx)
}

func (s *TrafficService) Vertex(ctx context.Context, id string) (domain.Vertex, error) {
	return s.engine.GetVertex(ctx, id)
}

func (s *TrafficService) Edge(ctx context.Context, id string) (domain.Edge, error) {
	return s.engine.GetEdge(ctx, id)
}

func (s *TrafficService) Edges(ctx context.Context) ([]domain.EdgeSummary, error) {
	return s.engine.GetAllEdges(ctx)
}

func (s *TrafficService) AvailableEdges(ctx context.Context) ([]domain.AvailableEdge, error) {
	return s.engine.GetAvailableEdgesForIncident(ctx)
}

func (s *TrafficService) ActiveIncidents(ctx context.Context) ([]domain.ActiveIncident, error) {
	return s.engine.GetActiveIncidents(ctx)
}

func (s *TrafficService) CreateIncident(ctx context.Context, req domain.CreateIncidentRequest) (domain.Incident, error) {
	return s.engine.CreateIncident(ctx, req)
}

func (s *TrafficService) ClearIncident(ctx context.Context, id string) (domain.Incident, error) {
	return s.engine.ClearIncident(ctx, id)
}

func (s *TrafficService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.engine.GetStats(ctx)
}

func (s *TrafficService) Config(ctx context.Context) (domain.Config, error) {
	return s.engine.GetConfig(ctx)
}

// UpdateConfig applies a partial configuration. A node_count or road_density
// change discards the whole graph and its incidents.
func (s *TrafficService) UpdateConfig(ctx context.Context, p domain.PartialConfig) (domain.Config, domain.ConfigChange, error) {
	return s.engine.UpdateConfig(ctx, p)
}

func (s *TrafficService) Start(ctx context.Context) error {
	return s.engine.Start(ctx)
}

func (s *TrafficService) Stop(ctx context.Context) error {
	return s.engine.Stop(ctx)
}

func (s *TrafficService) IsRunning(ctx context.Context) (bool, error) {
	return s.engine.IsRunning(ctx)
}

// Subscribe exposes the engine event stream
func (s *TrafficService) Subscribe(ctx context.Context) (<-chan domain.Event, func(), error) {
	return s.engine.Subscribe(ctx)
}

// IncidentHistory lists recorded incident transitions, newest first
func (s *TrafficService) IncidentHistory(ctx context.Context, limit int64) ([]repository.IncidentRecord, error) {
	if !s.PersistenceEnabled() {
		return nil, domain.ErrHistoryUnavailable
	}
	return s.repo.ListIncidentHistory(ctx, limit)
}

// PersistSnapshot stores the current state in Redis. It is a no-op without a
// repository.
func (s *TrafficService) PersistSnapshot(ctx context.Context) error {
	if !s.PersistenceEnabled() {
		return nil
	}
	snap, err := s.engine.GetCurrentState(ctx)
	if err != nil {
		return err
	}
	return s.repo.SaveSnapshot(ctx, snap)
}

// RunRelay forwards engine events to Redis until ctx is cancelled or the
// engine stops. Storage failures are logged and never stop the relay.
func (s *TrafficService) RunRelay(ctx context.Context) error {
	if !s.PersistenceEnabled() {
		return nil
	}

	events, cancel, err := s.engine.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	log.Println("[relay] forwarding traffic events to redis")
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			s.relay(ctx, evt)
		}
	}
}

func (s *TrafficService) relay(ctx context.Context, evt domain.Event) {
	switch evt.Type {
	case domain.EventTrafficUpdate, domain.EventGraphRebuilt:
		if evt.Snapshot != nil {
			if err := s.repo.SaveSnapshot(ctx, *evt.Snapshot); err != nil {
				log.Printf("[relay] event=%s save snapshot: %v", evt.Type, err)
			}
		}
	case domain.EventIncidentCreated, domain.EventIncidentCleared:
		if evt.Incident != nil {
			rec := repository.IncidentRecord{
				Action:     historyAction(evt),
				Incident:   *evt.Incident,
				RecordedAt: evt.Timestamp,
			}
			if err := s.repo.AppendIncident(ctx, rec); err != nil {
				log.Printf("[relay] incident=%s append history: %v", evt.Incident.ID, err)
			}
		}
	}

	if err := s.repo.PublishEvent(ctx, evt); err != nil {
		log.Printf("[relay] event=%s publish: %v", evt.Type, err)
	}
}

func historyAction(evt domain.Event) string {
	switch {
	case evt.Type == domain.EventIncidentCreated:
		return repository.ActionCreated
	case evt.Expired:
		return repository.ActionExpired
	default:
		return repository.ActionCleared
	}
}
