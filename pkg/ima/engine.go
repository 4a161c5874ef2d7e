package ima

import (
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/frame"
	"github.com/ima-dev/ima/pkg/shape"
)

// Props is a property bag for element builders.
type Props = shape.Props

// tracerName is the instrumentation scope for measurement spans.
const tracerName = "github.com/ima-dev/ima"

// Config configures an Engine.
type Config struct {
	// Document is the document the engine mounts into (default: a new one).
	Document *dom.Document

	// Frames schedules ticks (default: frame.Global()).
	Frames frame.Requester

	// Logger receives failures and measurement results (default: slog.Default()).
	Logger *slog.Logger

	// Tracer records measurement spans (default: the global otel tracer).
	Tracer trace.Tracer

	// Policy decides how evaluator panics are handled (default: Isolate).
	Policy Policy

	// TextBindings enables the text binding specialization (default: true).
	TextBindings bool

	// Clock measures tick and measurement durations (default: time.Now).
	Clock func() time.Time

	// TickObservers receive a snapshot after every tick.
	TickObservers []func(Stats)
}

// Option configures an Engine.
type Option func(*Config)

// WithDocument sets the document.
func WithDocument(doc *dom.Document) Option {
	return func(c *Config) {
		c.Document = doc
	}
}

// WithFrames sets the frame driver.
func WithFrames(r frame.Requester) Option {
	return func(c *Config) {
		c.Frames = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTracer sets the tracer used for measurement spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}

// WithFailurePolicy sets the evaluator failure policy.
func WithFailurePolicy(p Policy) Option {
	return func(c *Config) {
		c.Policy = p
	}
}

// WithTextBindings enables or disables the text binding specialization.
func WithTextBindings(enabled bool) Option {
	return func(c *Config) {
		c.TextBindings = enabled
	}
}

// WithClock sets the clock.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithTickObserver adds a callback that receives a snapshot after every tick.
func WithTickObserver(fn func(Stats)) Option {
	return func(c *Config) {
		c.TickObservers = append(c.TickObservers, fn)
	}
}

// Engine owns a binding registry, its scheduler and its instrumentation.
//
// An Engine is not safe for concurrent use. Build trees, dispatch events and
// run frames from a single goroutine, such as a frame.Loop.
type Engine struct {
	doc          *dom.Document
	frames       frame.Requester
	logger       *slog.Logger
	tracer       trace.Tracer
	policy       Policy
	textBindings bool
	clock        func() time.Time
	observers    []func(Stats)

	attrs attrTable
	texts textTable
	nodes nodeTable

	// scheduler state
	armed   bool
	ticking bool

	stats   Stats
	measure measurement
}

// New creates an engine.
func New(opts ...Option) *Engine {
	cfg := Config{TextBindings: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Document == nil {
		cfg.Document = dom.NewDocument()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Engine{
		doc:          cfg.Document,
		frames:       cfg.Frames,
		logger:       cfg.Logger.With("component", "ima"),
		tracer:       cfg.Tracer,
		policy:       cfg.Policy,
		textBindings: cfg.TextBindings,
		clock:        cfg.Clock,
		observers:    cfg.TickObservers,
	}
}

// Document returns the engine's document.
func (e *Engine) Document() *dom.Document { return e.doc }

// Policy returns the failure policy.
func (e *Engine) Policy() Policy { return e.policy }

// OnTick adds a tick observer.
func (e *Engine) OnTick(fn func(Stats)) {
	if fn != nil {
		e.observers = append(e.observers, fn)
	}
}

// Mount appends nodes to the document body.
func (e *Engine) Mount(nodes ...dom.Node) {
	for _, n := range nodes {
		e.doc.Body().AppendChild(n)
	}
}

var (
	defaultEngine *Engine
	defaultMu     sync.Mutex
)

// Default returns the process-wide engine, driven by frame.Global().
//
// Its ticks run on the global loop's goroutine, so its methods may only be
// called from there: inside listeners, evaluators and frame.Global().Post
// tasks. From any other goroutine use Do or the package-level helpers.
func Default() *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = New(WithFrames(frame.Global()))
	}
	return defaultEngine
}

// SetDefault replaces the process-wide engine. The package-level helpers
// still run on frame.Global(), so e should be driven by it too.
func SetDefault(e *Engine) {
	defaultMu.Lock()
	defaultEngine = e
	defaultMu.Unlock()
}
