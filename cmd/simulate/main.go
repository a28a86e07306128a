// Command simulate plans a job file on the default terminal and writes the job report.
package main

import (
	"context"
	"flag"
	"fmt"
	"ht-planning-service/internal/adapters/cache"
	"ht-planning-service/internal/adapters/feed"
	"ht-planning-service/internal/adapters/operation"
	"ht-planning-service/internal/adapters/publisher"
	"ht-planning-service/internal/adapters/report"
	"ht-planning-service/internal/adapters/repositories"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/pathfinder"
	"ht-planning-service/internal/platform/decisionlog"
	"ht-planning-service/internal/ports"
	"ht-planning-service/internal/services"
	"ht-planning-service/internal/topology"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type options struct {
	configPath string
	input      string
	output     string
	decisions  string
	store      bool
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var o options
	flag.StringVar(&o.configPath, "config", config.Get("CONFIG_PATH", ""), "YAML config file")
	flag.StringVar(&o.input, "input", "data/input.csv", "job list (.csv or .json)")
	flag.StringVar(&o.output, "output", "data/output.csv", "job report destination")
	flag.StringVar(&o.decisions, "decisions", "", "decision log file (overrides config)")
	flag.BoolVar(&o.store, "store", false, "also save the run to the configured database")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	jobs, err := source(o.input).LoadJobs(ctx)
	if err != nil {
		return err
	}
	log.Printf("Loaded jobs=%d input=%s", len(jobs), o.input)

	topo := topology.DefaultTerminal()
	if err := topo.Validate(); err != nil {
		return err
	}
	router, err := pathfinder.New(topo)
	if err != nil {
		return err
	}

	svc := &services.RunService{
		Topo:      topo,
		Router:    cache.NewRouteCache(router),
		NewEngine: func(sim config.Simulation) ports.OperationEngine { return operation.NewExecutor(sim) },
	}

	if o.store {
		db, repo, err := repositories.Open(cfg.Storage)
		if err != nil {
			return err
		}
		defer db.Close()
		svc.Repo = repo
	}

	if cfg.Redis.URL != "" {
		pub, err := publisher.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel)
		if err != nil {
			return err
		}
		defer pub.Close()
		svc.Publisher = pub
	}

	if path := firstNonEmpty(o.decisions, cfg.Log.DecisionLogPath); path != "" {
		dlog, closer, err := decisionlog.Open(path)
		if err != nil {
			return err
		}
		defer closer.Close()
		svc.DecisionLog = dlog
	}

	rep, err := svc.Execute(ctx, services.RunRequest{
		RunID:   uuid.NewString(),
		Jobs:    jobs,
		Weights: cfg.Weights,
		Sim:     cfg.Simulation,
	})
	if err != nil {
		return err
	}

	if err := report.WriteCSVFile(o.output, rep.Result.Outcomes); err != nil {
		return err
	}
	log.Printf("Output job report: %s", o.output)
	fmt.Println(summaryLine(rep.Summary, cfg.Simulation))
	return nil
}

func source(path string) ports.JobSource {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return feed.NewJSONJobFeed(path)
	}
	return feed.NewCSVJobFeed(path)
}

func summaryLine(s domain.RunSummary, sim config.Simulation) string {
	return fmt.Sprintf("run=%s jobs=%d makespan=%d ticks (%ds) fingerprint=%s",
		s.RunID, s.Completed, s.Makespan, s.Makespan*int64(sim.TickSeconds), s.Fingerprint)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
