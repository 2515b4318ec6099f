package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/go-traffic-backend/config"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/bootstrap"
	cronjob "github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/cron"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/engine"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/repository"
	"github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/service"
	"golang.org/x/time/rate"
)

const (
	serviceName     = "go-traffic-backend"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var wg sync.WaitGroup

	// engine and relay get their own context so they outlive the HTTP drain
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer func() {
		stopBackground()
		wg.Wait()
	}()

	var repo *repository.SnapshotRepository
	if cfg.Redis.Enabled {
		client, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		repo = repository.NewSnapshotRepository(client)
		log.Printf("[boot] redis connected addr=%s", cfg.Redis.Addr)
	} else {
		log.Println("[boot] redis disabled, running in memory only")
	}

	eng, err := engine.New(cfg.SimulationConfig(), engine.WithRand(newRand(cfg.Traffic.Seed)))
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	wg.Go(func() { eng.Run(bgCtx) })

	svc := service.NewTrafficService(eng, repo)
	wg.Go(func() {
		if err := svc.RunRelay(bgCtx); err != nil {
			log.Printf("[relay] stopped: %v", err)
		}
	})

	if cfg.Traffic.AutoStart {
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("start simulation: %w", err)
		}
	}

	scheduler := cronjob.NewScheduler(svc)
	if err := scheduler.Start(cfg.Jobs.StatsCron); err != nil {
		return err
	}

	var limiter *rate.Limiter
	if cfg.Server.IncidentRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.IncidentRateLimit), max(cfg.Server.IncidentRateBurst, 1))
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		Traffic:     svc,
		Repo:        repo,
		Limiter:     limiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrs := make(chan error, 1)
	go func() {
		log.Printf("[boot] listening on :%s env=%s", cfg.Server.Port, cfg.App.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrs <- err
		}
		close(serverErrs)
	}()

	select {
	case err := <-serverErrs:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Println("[boot] shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	// persist the final state before the engine goes away
	if err := svc.PersistSnapshot(shutdownCtx); err != nil {
		log.Printf("[boot] final snapshot: %v", err)
	}

	// open SSE streams end when the engine closes subscriber channels
	stopBackground()
	wg.Wait()
	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	return nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	} else {
		log.Printf("[boot] deterministic run seed=%d", seed)
	}
	return rand.New(rand.NewPCG(seed, seed>>1))
}
