// Package metrics exposes Prometheus instrumentation for the renderer,
// the scheduler and host adapters.
//
// A nil *Collector is valid and records nothing, so packages can hold one
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "reconcile").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reconcile",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the reconciliation metrics.
type Collector struct {
	hostOps        *prometheus.CounterVec
	patches        *prometheus.CounterVec
	renders        *prometheus.CounterVec
	renderDuration prometheus.Histogram
	moves          prometheus.Counter
	jobsQueued     *prometheus.CounterVec
	flushes        prometheus.Counter
	flushJobs      prometheus.Histogram
	flushDuration  prometheus.Histogram
	diagnostics    *prometheus.CounterVec
	asyncOutcomes  *prometheus.CounterVec
	instances      prometheus.Gauge
}

// New registers the metrics with the configured registry.
// It panics if they are already registered there, like promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	ns, sub, labels := config.Namespace, config.Subsystem, config.ConstLabels

	return &Collector{
		hostOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "host_ops_total",
			Help:        "Host adapter operations issued, by operation",
			ConstLabels: labels,
		}, []string{"op"}),

		patches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "patches_total",
			Help:        "Node pairs reconciled, by node kind",
			ConstLabels: labels,
		}, []string{"kind"}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "component_renders_total",
			Help:        "Component render function invocations, by component",
			ConstLabels: labels,
		}, []string{"component"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "component_render_duration_seconds",
			Help:        "Component render and patch duration in seconds",
			ConstLabels: labels,
			Buckets:     config.Buckets,
		}),

		moves: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "keyed_moves_total",
			Help:        "Host nodes relocated by keyed reconciliation",
			ConstLabels: labels,
		}),

		jobsQueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "scheduler_jobs_total",
			Help:        "Jobs offered to the scheduler queue, by result",
			ConstLabels: labels,
		}, []string{"result"}),

		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "scheduler_flushes_total",
			Help:        "Scheduler queue flushes",
			ConstLabels: labels,
		}),

		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "scheduler_flush_jobs",
			Help:        "Jobs run per scheduler flush",
			ConstLabels: labels,
			Buckets:     []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "scheduler_flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: labels,
			Buckets:     config.Buckets,
		}),

		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "diagnostics_total",
			Help:        "Diagnostics reported, by code",
			ConstLabels: labels,
		}, []string{"code"}),

		asyncOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "async_loads_total",
			Help:        "Async component load outcomes",
			ConstLabels: labels,
		}, []string{"outcome"}),

		instances: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "mounted_instances",
			Help:        "Component instances currently mounted",
			ConstLabels: labels,
		}),
	}
}

// ObserveHostOp counts one host operation.
func (c *Collector) ObserveHostOp(op string) {
	if c == nil {
		return
	}
	c.hostOps.WithLabelValues(op).Inc()
}

// ObservePatch counts one reconciled node pair.
func (c *Collector) ObservePatch(kind string) {
	if c == nil {
		return
	}
	c.patches.WithLabelValues(kind).Inc()
}

// ObserveRender records a component render.
func (c *Collector) ObserveRender(component string, d time.Duration) {
	if c == nil {
		return
	}
	c.renders.WithLabelValues(component).Inc()
	c.renderDuration.Observe(d.Seconds())
}

// ObserveMove counts one keyed move.
func (c *Collector) ObserveMove() {
	if c == nil {
		return
	}
	c.moves.Inc()
}

// ObserveEnqueue records whether an offered job was queued or deduplicated.
func (c *Collector) ObserveEnqueue(queued bool) {
	if c == nil {
		return
	}
	result := "queued"
	if !queued {
		result = "deduplicated"
	}
	c.jobsQueued.WithLabelValues(result).Inc()
}

// ObserveFlush records one queue flush.
func (c *Collector) ObserveFlush(jobs int, d time.Duration) {
	if c == nil {
		return
	}
	c.flushes.Inc()
	c.flushJobs.Observe(float64(jobs))
	c.flushDuration.Observe(d.Seconds())
}

// ObserveDiagnostic counts a reported diagnostic.
func (c *Collector) ObserveDiagnostic(code string) {
	if c == nil {
		return
	}
	c.diagnostics.WithLabelValues(code).Inc()
}

// ObserveAsync counts an async load outcome ("resolved", "failed",
// "timeout", "retried").
func (c *Collector) ObserveAsync(outcome string) {
	if c == nil {
		return
	}
	c.asyncOutcomes.WithLabelValues(outcome).Inc()
}

// InstanceMounted increments the mounted instance gauge.
func (c *Collector) InstanceMounted() {
	if c == nil {
		return
	}
	c.instances.Inc()
}

// InstanceUnmounted decrements the mounted instance gauge.
func (c *Collector) InstanceUnmounted() {
	if c == nil {
		return
	}
	c.instances.Dec()
}
