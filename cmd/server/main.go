package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"ht-planning-service/internal/adapters/cache"
	"ht-planning-service/internal/adapters/operation"
	"ht-planning-service/internal/adapters/publisher"
	"ht-planning-service/internal/adapters/repositories"
	"ht-planning-service/internal/api"
	"ht-planning-service/internal/api/handlers"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/metrics"
	"ht-planning-service/internal/pathfinder"
	"ht-planning-service/internal/platform/decisionlog"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/services"
	"ht-planning-service/internal/topology"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	configPath := flag.String("config", config.Get("CONFIG_PATH", ""), "YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	topo := topology.DefaultTerminal()
	if err := topo.Validate(); err != nil {
		return err
	}
	router, err := pathfinder.New(topo)
	if err != nil {
		return err
	}

	db, repo, err := repositories.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := &services.RunService{
		Topo:      topo,
		Router:    cache.NewRouteCache(router),
		Repo:      repo,
		Metrics:   metrics.RegisterDefault(),
		NewEngine: func(sim config.Simulation) ports.OperationEngine { return operation.NewExecutor(sim) },
	}

	if cfg.Redis.URL != "" {
		pub, err := publisher.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel)
		if err != nil {
			return err
		}
		defer pub.Close()
		svc.Publisher = pub
	}

	if cfg.Log.DecisionLogPath != "" {
		dlog, closer, err := decisionlog.Open(cfg.Log.DecisionLogPath)
		if err != nil {
			return err
		}
		defer closer.Close()
		svc.DecisionLog = dlog
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := handlers.NewRunRegistry()
	handler := api.NewRouter(api.Deps{
		Service:  svc,
		Repo:     repo,
		Registry: registry,
		Config:   cfg,
		BaseCtx:  ctx,
	})

	// Synchronous runs of large job lists can take a while; write timeout is generous.
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening addr=:%s storage=%s", cfg.HTTP.Port, cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		registry.Wait()
		return err
	})

	return g.Wait()
}
