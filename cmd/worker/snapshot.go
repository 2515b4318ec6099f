package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"time"

	"github.com/GoSim-25-26J-441/go-traffic-backend/config"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/repository"
)

// RunSnapshot prints the latest persisted snapshot, or the incident history
// with -history.
func RunSnapshot(args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	addr := fs.String("redis", cfg.Redis.Addr, "redis address")
	history := fs.Bool("history", false, "print incident history instead of the snapshot")
	limit := fs.Int64("limit", repository.DefaultHistoryLimit, "history entries to print")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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
	repo := repository.NewSnapshotRepository(client)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if *history {
		records, err := repo.ListIncidentHistory(ctx, *limit)
		if err != nil {
			return err
		}
		return enc.Encode(records)
	}

	snap, err := repo.GetLatestSnapshot(ctx)
	if err != nil {
		return err
	}
	return enc.Encode(snap)
}
