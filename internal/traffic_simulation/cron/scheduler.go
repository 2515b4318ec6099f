package cronjob

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 10 * time.Second

// TrafficSource is the part of the traffic service the periodic jobs need
type TrafficSource interface {
	Stats(ctx context.Context) (domain.Stats, error)
	PersistSnapshot(ctx context.Context) error
}

type Scheduler struct {
	src  TrafficSource
	cron *cron.Cron
}

func NewScheduler(src TrafficSource) *Scheduler {
	return &Scheduler{
		src:  src,
		cron: cron.New(cron.WithSeconds()),
	}
}

// Start registers the stats/snapshot job on spec (six-field or @every form)
// and starts the cron runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runStatsJob); err != nil {
		return fmt.Errorf("schedule stats job %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("[cron] scheduler started spec=%q", spec)
	return nil
}

// Stop halts the runner and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) runStatsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	st, err := s.src.Stats(ctx)
	if err != nil {
		log.Printf("[cron] stats failed: %v", err)
		return
	}
	log.Printf("[cron] stats updates=%d edges=%d avg_traffic=%.3f avg_speed=%d vehicles=%d incidents=%d",
		st.UpdateCount, st.TotalEdges, st.AverageTrafficLevel, st.AverageSpeed, st.TotalVehicles, st.ActiveIncidents)

	if err := s.src.PersistSnapshot(ctx); err != nil {
		log.Printf("[cron] snapshot failed: %v", err)
	}
}
