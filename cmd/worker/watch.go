package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/go-traffic-backend/config"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/repository"
)

// RunWatch follows the events the API publishes on Redis and prints one line
// per event until interrupted.
func RunWatch(args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	addr := fs.String("redis", cfg.Redis.Addr, "redis address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     *addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	sub := repository.NewSnapshotRepository(client).SubscribeEvents(ctx)
	defer sub.Close()

	log.Printf("[watch] subscribed channel=%s", repository.EventChannel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			evt, err := repository.DecodeEvent(msg.Payload)
			if err != nil {
				log.Printf("[watch] skip malformed event: %v", err)
				continue
			}
			fmt.Fprintln(out, formatEvent(evt))
		}
	}
}

func formatEvent(evt domain.Event) string {
	switch {
	case evt.Incident != nil:
		inc := evt.Incident
		line := fmt.Sprintf("%d %s id=%s edge=%s type=%s severity=%.2f", evt.Timestamp, evt.Type, inc.ID, inc.EdgeID, inc.Type, inc.Severity)
		if evt.Expired {
			line += " expired"
		}
		return line
	case evt.Snapshot != nil:
		return fmt.Sprintf("%d %s update=%d edges=%d incidents=%d",
			evt.Timestamp, evt.Type, evt.Snapshot.UpdateCount, len(evt.Snapshot.Edges), len(evt.Snapshot.Incidents))
	default:
		return fmt.Sprintf("%d %s", evt.Timestamp, evt.Type)
	}
}
