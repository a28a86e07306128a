// Package metrics exposes planner and HTTP metrics on a dedicated Prometheus registry.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "ht_planner"

// Planner implements ports.PlanningMetrics.
type Planner struct {
	tickDuration *prometheus.HistogramVec
	ticks        prometheus.Counter
	assignments  *prometheus.CounterVec
	completed    prometheus.Counter
	pending      prometheus.Gauge
	yardUsage    *prometheus.GaugeVec
}

// NewPlanner creates the planner collectors and registers them on reg.
func NewPlanner(reg prometheus.Registerer) *Planner {
	m := &Planner{
		tickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent planning one tick.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"busy"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Planning ticks executed.",
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Legs dispatched, by leg type.",
		}, []string{"leg"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_completed_total",
			Help:      "Jobs whose final leg completed.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_jobs",
			Help:      "Released jobs still waiting for a truck.",
		}),
		yardUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "yard_usage",
			Help:      "Active jobs per yard.",
		}, []string{"yard"}),
	}
	reg.MustRegister(m.tickDuration, m.ticks, m.assignments, m.completed, m.pending, m.yardUsage)
	return m
}

func (m *Planner) ObserveTick(d time.Duration, assignments int) {
	busy := "false"
	if assignments > 0 {
		busy = "true"
	}
	m.tickDuration.WithLabelValues(busy).Observe(d.Seconds())
	m.ticks.Inc()
}

func (m *Planner) IncAssignment(leg string)        { m.assignments.WithLabelValues(leg).Inc() }
func (m *Planner) IncCompleted()                   { m.completed.Inc() }
func (m *Planner) SetPendingJobs(n int)            { m.pending.Set(float64(n)) }
func (m *Planner) SetYardUsage(yard string, n int) { m.yardUsage.WithLabelValues(yard).Set(float64(n)) }

var (
	// Registry is the process-wide registry served on /metrics.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, route and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "route", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)

	regOnce sync.Once
	shared  *Planner
)

// RegisterDefault registers HTTP, runtime and planner collectors on Registry once
// and returns the shared planner metrics.
func RegisterDefault() *Planner {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests, HTTPDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		shared = NewPlanner(Registry)
	})
	return shared
}
