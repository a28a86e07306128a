// Package config holds planner weights, simulation timing and adapter settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weights tune the yard and truck heuristics. All values must be non-negative.
type Weights struct {
	Immediate  float64 `yaml:"immediate_weight"`
	Downstream float64 `yaml:"downstream_weight"`

	Fairness float64 `yaml:"fairness_weight"`
	// Exponent applied to a yard's usage count; 1 is linear.
	FairnessExponent float64 `yaml:"fairness_exponent"`

	// Penalty for a truck given a leg in the current tick; it decays linearly to zero
	// over RecencyWindow ticks. Every dispatched leg counts, so the final leg of a
	// job still weighs on the truck's next pairing. RecencyHistory bounds how many
	// past dispatches count.
	RecentPenalty  float64 `yaml:"recent_penalty"`
	RecencyWindow  int     `yaml:"recency_window"`
	RecencyHistory int     `yaml:"recency_history"`

	// Penalty for a truck at distance 0 from a truck already picked this tick; it
	// decays linearly to zero at SpreadRadius grid steps.
	SpreadPenalty float64 `yaml:"spread_penalty"`
	SpreadRadius  int     `yaml:"spread_radius"`
}

// Simulation timing, in ticks. One tick is TickSeconds of simulated time.
type Simulation struct {
	TickSeconds       int `yaml:"tick_seconds"`
	PlanningInterval  int `yaml:"planning_interval"`
	DriveTicksPerStep int `yaml:"drive_ticks_per_step"`
	QCWorkTicks       int `yaml:"qc_work_ticks"`
	YardWorkTicks     int `yaml:"yard_work_ticks"`
	StallTicks        int `yaml:"stall_ticks"`
	FleetSize         int `yaml:"fleet_size"`
	// Jobs per QC that may be planned ahead of the oldest unfinished one. 0 disables the gate.
	QCLookahead int `yaml:"qc_lookahead"`
}

type Storage struct {
	// "sqlite" or "postgres".
	Driver      string `yaml:"driver"`
	SqlitePath  string `yaml:"sqlite_path"`
	DatabaseURL string `yaml:"database_url"`
}

type Redis struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

type HTTP struct {
	Port string `yaml:"port"`
	// Run submissions per second; 0 disables throttling.
	RunsPerSecond float64 `yaml:"runs_per_second"`
	RunBurst      int     `yaml:"run_burst"`
}

type Log struct {
	DecisionLogPath string `yaml:"decision_log_path"`
}

type Config struct {
	Weights    Weights    `yaml:"weights"`
	Simulation Simulation `yaml:"simulation"`
	Storage    Storage    `yaml:"storage"`
	Redis      Redis      `yaml:"redis"`
	HTTP       HTTP       `yaml:"http"`
	Log        Log        `yaml:"log"`
}

// MaxFleetSize is two trucks per buffer slot of the default terminal.
const MaxFleetSize = 84

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

func DefaultWeights() Weights {
	return Weights{
		Immediate:        1.0,
		Downstream:       0.5,
		Fairness:         4.0,
		FairnessExponent: 1.0,
		RecentPenalty:    6.0,
		RecencyWindow:    24,
		RecencyHistory:   4,
		SpreadPenalty:    8.0,
		SpreadRadius:     3,
	}
}

// Default returns the terminal defaults: 10 s ticks, planning every minute,
// 2 minutes of QC work and 5 minutes of yard work per visit.
func Default() Config {
	return Config{
		Weights: DefaultWeights(),
		Simulation: Simulation{
			TickSeconds:       10,
			PlanningInterval:  6,
			DriveTicksPerStep: 1,
			QCWorkTicks:       12,
			YardWorkTicks:     30,
			StallTicks:        360,
			FleetSize:         80,
			QCLookahead:       10,
		},
		Storage: Storage{
			Driver:     "sqlite",
			SqlitePath: "data/app.db",
		},
		Redis: Redis{Channel: "ht-planner"},
		HTTP: HTTP{
			Port:          "8080",
			RunsPerSecond: 2,
			RunBurst:      4,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables, as loaded by godotenv.
func (c *Config) ApplyEnv() error {
	c.Storage.Driver = Get("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.SqlitePath = Get("DB_PATH", c.Storage.SqlitePath)
	c.Storage.DatabaseURL = Get("DATABASE_URL", c.Storage.DatabaseURL)
	c.Redis.URL = Get("REDIS_URL", c.Redis.URL)
	c.Redis.Channel = Get("REDIS_CHANNEL", c.Redis.Channel)
	c.HTTP.Port = Get("PORT", c.HTTP.Port)
	c.Log.DecisionLogPath = Get("DECISION_LOG", c.Log.DecisionLogPath)

	floats := map[string]*float64{
		"IMMEDIATE_WEIGHT":  &c.Weights.Immediate,
		"DOWNSTREAM_WEIGHT": &c.Weights.Downstream,
		"FAIRNESS_WEIGHT":   &c.Weights.Fairness,
		"RECENT_PENALTY":    &c.Weights.RecentPenalty,
		"SPREAD_PENALTY":    &c.Weights.SpreadPenalty,
	}
	for key, dst := range floats {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("apply env: %s=%q: %w", key, v, err)
		}
		*dst = f
	}

	ints := map[string]*int{
		"FLEET_SIZE":   &c.Simulation.FleetSize,
		"QC_LOOKAHEAD": &c.Simulation.QCLookahead,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("apply env: %s=%q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

// Get returns the environment value of key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate reports every invalid weight or timing value at once.
func (w Weights) Validate() error {
	var errs []error
	nonNeg := []struct {
		name string
		v    float64
	}{
		{"immediate_weight", w.Immediate},
		{"downstream_weight", w.Downstream},
		{"fairness_weight", w.Fairness},
		{"recent_penalty", w.RecentPenalty},
		{"spread_penalty", w.SpreadPenalty},
	}
	for _, f := range nonNeg {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidConfig, f.name, f.v))
		}
	}
	if w.FairnessExponent <= 0 {
		errs = append(errs, fmt.Errorf("%w: fairness_exponent must be positive, got %v", ErrInvalidConfig, w.FairnessExponent))
	}
	if w.RecencyWindow < 0 || w.RecencyHistory < 0 || w.SpreadRadius < 0 {
		errs = append(errs, fmt.Errorf("%w: recency_window, recency_history and spread_radius must be non-negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

func (s Simulation) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    int
	}{
		{"tick_seconds", s.TickSeconds},
		{"planning_interval", s.PlanningInterval},
		{"drive_ticks_per_step", s.DriveTicksPerStep},
		{"stall_ticks", s.StallTicks},
		{"fleet_size", s.FleetSize},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.v))
		}
	}
	if s.FleetSize > MaxFleetSize {
		errs = append(errs, fmt.Errorf("%w: fleet_size %d exceeds %d", ErrInvalidConfig, s.FleetSize, MaxFleetSize))
	}
	if s.QCWorkTicks < 0 || s.YardWorkTicks < 0 || s.QCLookahead < 0 {
		errs = append(errs, fmt.Errorf("%w: work ticks and qc_lookahead must be non-negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error
	errs = append(errs, c.Weights.Validate(), c.Simulation.Validate())
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("%w: storage driver %q must be sqlite or postgres", ErrInvalidConfig, c.Storage.Driver))
	}
	if c.HTTP.RunsPerSecond < 0 || c.HTTP.RunBurst < 0 {
		errs = append(errs, fmt.Errorf("%w: runs_per_second and run_burst must be non-negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
