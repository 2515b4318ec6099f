package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKey         = "traffic:snapshot:latest"   // JSON of the most recent snapshot
	incidentHistoryKey  = "traffic:incidents:history" // list of IncidentRecord, newest first
	EventChannel        = "traffic:events"            // Pub/Sub channel for engine events
	snapshotTTL         = 10 * time.Minute
	incidentHistoryCap  = 500
	DefaultHistoryLimit = 50
)

// Incident history actions
const (
	ActionCreated = "created"
	ActionCleared = "cleared"
	ActionExpired = "expired"
)

// IncidentRecord is one entry of the incident history list
type IncidentRecord struct {
	Action     string          `json:"action"`
	Incident   domain.Incident `json:"incident"`
	RecordedAt int64           `json:"recordedAt"` // unix ms
}

// SnapshotRepository handles Redis operations for traffic state
type SnapshotRepository struct {
	client *redis.Client
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(client *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{client: client}
}

// SaveSnapshot overwrites the latest snapshot
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snapshotKey, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns domain.ErrSnapshotNotFound when nothing has been stored yet
func (r *SnapshotRepository) GetLatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// AppendIncident pushes a record and trims the list to its cap
func (r *SnapshotRepository) AppendIncident(ctx context.Context, rec IncidentRecord) error {
	if rec.RecordedAt == 0 {
		rec.RecordedAt = time.Now().UnixMilli()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal incident record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, incidentHistoryKey, data)
	pipe.LTrim(ctx, incidentHistoryKey, 0, incidentHistoryCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append incident record: %w", err)
	}
	return nil
}

// ListIncidentHistory returns up to limit records, newest first
func (r *SnapshotRepository) ListIncidentHistory(ctx context.Context, limit int64) ([]IncidentRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	raw, err := r.client.LRange(ctx, incidentHistoryKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list incident history: %w", err)
	}

	records := make([]IncidentRecord, 0, len(raw))
	for _, item := range raw {
		var rec IncidentRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// Skip malformed entries
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// PublishEvent fans an engine event out to out-of-process consumers
func (r *SnapshotRepository) PublishEvent(ctx context.Context, evt domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := r.client.Publish(ctx, EventChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// SubscribeEvents subscribes to the event channel. The caller must Close the
// returned PubSub.
func (r *SnapshotRepository) SubscribeEvents(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, EventChannel)
}

// DecodeEvent parses a payload received on EventChannel
func DecodeEvent(payload string) (domain.Event, error) {
	var evt domain.Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return evt, nil
}

// Ping reports whether Redis is reachable
func (r *SnapshotRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
