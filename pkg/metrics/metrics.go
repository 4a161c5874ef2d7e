package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ima-dev/ima/pkg/ima"
)

// Config configures a Recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "ima").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for tick duration.
	// Default: exponential from 50µs to ~100ms.
	Buckets []float64

	// SettleBuckets are the histogram buckets for measurement spans.
	// Default: prometheus.DefBuckets
	SettleBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Recorder.
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

// WithBuckets sets the tick duration histogram buckets.
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

// defaultConfig returns the default metrics configuration.
func defaultConfig() Config {
	return Config{
		Namespace:     "ima",
		Buckets:       prometheus.ExponentialBuckets(0.00005, 2, 12),
		SettleBuckets: prometheus.DefBuckets,
		Registry:      prometheus.DefaultRegisterer,
	}
}

// kinds are the label values of the kind label, indexed by ima.Kind.
var kinds = [...]string{
	ima.KindAttribute: ima.KindAttribute.String(),
	ima.KindText:      ima.KindText.String(),
	ima.KindNode:      ima.KindNode.String(),
}

// Recorder holds the Prometheus metrics of one engine.
type Recorder struct {
	bindings       *prometheus.GaugeVec
	updates        *prometheus.CounterVec
	ticks          prometheus.Counter
	tickDuration   prometheus.Histogram
	failed         prometheus.Gauge
	measuring      prometheus.Gauge
	settleDuration prometheus.Histogram

	gatherer prometheus.Gatherer

	mu            sync.Mutex
	measurements  uint64
	lastTick      uint64
	observedTicks uint64
}

// New creates a Recorder and registers its metrics.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	r := &Recorder{
		bindings: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bindings",
			Help:        "Number of registered bindings by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "binding_updates_total",
			Help:        "Total number of DOM patches applied by bindings",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ticks_total",
			Help:        "Total number of completed ticks",
			ConstLabels: config.ConstLabels,
		}),

		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tick_duration_seconds",
			Help:        "Duration of one reconciliation pass in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		failed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "failed_bindings",
			Help:        "Number of bindings disabled after their evaluator panicked",
			ConstLabels: config.ConstLabels,
		}),

		measuring: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "measuring",
			Help:        "1 while a measurement span is open",
			ConstLabels: config.ConstLabels,
		}),

		settleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "settle_duration_seconds",
			Help:        "Time from the start of a measurement to the first quiet tick",
			ConstLabels: config.ConstLabels,
			Buckets:     config.SettleBuckets,
		}),
	}
	if g, ok := config.Registry.(prometheus.Gatherer); ok {
		r.gatherer = g
	}
	return r
}

// Attach creates a Recorder fed by e's tick observer.
func Attach(e *ima.Engine, opts ...Option) *Recorder {
	r := New(opts...)
	e.OnTick(r.Observe)
	return r
}

// Observe records one tick snapshot. Snapshots with a tick count already
// seen are ignored, so Observe may also be called outside the tick observer.
func (r *Recorder) Observe(s ima.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings.WithLabelValues(kinds[ima.KindAttribute]).Set(float64(s.Attributes))
	r.bindings.WithLabelValues(kinds[ima.KindText]).Set(float64(s.Texts))
	r.bindings.WithLabelValues(kinds[ima.KindNode]).Set(float64(s.Nodes))
	r.failed.Set(float64(s.Failed))

	if s.Ticks > r.lastTick {
		r.lastTick = s.Ticks
		r.observedTicks++
		r.ticks.Inc()
		r.updates.WithLabelValues(kinds[ima.KindAttribute]).Add(float64(s.AttributesUpdated))
		r.updates.WithLabelValues(kinds[ima.KindText]).Add(float64(s.TextsUpdated))
		r.updates.WithLabelValues(kinds[ima.KindNode]).Add(float64(s.NodesUpdated))
		r.tickDuration.Observe(s.FrameDuration.Seconds())
	}

	// A span may open and close between two snapshots; the closed-span
	// count catches it either way.
	if s.Measurements > r.measurements {
		r.measurements = s.Measurements
		r.settleDuration.Observe(s.MeasuredDuration.Seconds())
	}
	if s.Measuring {
		r.measuring.Set(1)
	} else {
		r.measuring.Set(0)
	}
}

// Ticks returns the number of distinct ticks observed.
func (r *Recorder) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observedTicks
}

// Handler serves the registry the Recorder was registered with. Recorders
// on the default registerer serve promhttp.Handler().
func (r *Recorder) Handler() http.Handler {
	if r.gatherer == nil || r.gatherer == prometheus.DefaultGatherer {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
