package frame

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRate is the default frame rate of a Loop.
const DefaultRate = 60

// ErrLoopStopped is returned when posting to a loop that is not running.
var ErrLoopStopped = errors.New("frame: loop stopped")

// LoopConfig configures a Loop.
type LoopConfig struct {
	// Rate is the number of frames per second (default: 60).
	Rate int

	// QueueSize is the task queue capacity (default: 1024).
	QueueSize int

	// Logger receives recovered panics (default: slog.Default()).
	Logger *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*LoopConfig)

// WithRate sets the frame rate.
func WithRate(fps int) LoopOption {
	return func(c *LoopConfig) {
		c.Rate = fps
	}
}

// WithQueueSize sets the task queue capacity.
func WithQueueSize(n int) LoopOption {
	return func(c *LoopConfig) {
		c.QueueSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(c *LoopConfig) {
		c.Logger = logger
	}
}

// Loop is a single-goroutine event loop. Frame callbacks and posted tasks
// never run concurrently with each other, so state touched only from inside
// the loop needs no locking.
type Loop struct {
	interval time.Duration
	tasks    chan func()
	logger   *slog.Logger

	mu      sync.Mutex
	pending []Callback
	quit    chan struct{} // closed when the current run ends

	running atomic.Bool
	frames  atomic.Uint64
	panics  atomic.Uint64
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop(opts ...LoopOption) *Loop {
	cfg := LoopConfig{Rate: DefaultRate, QueueSize: 1024}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		interval: time.Second / time.Duration(cfg.Rate),
		tasks:    make(chan func(), cfg.QueueSize),
		logger:   cfg.Logger.With("component", "frame"),
	}
}

// Interval returns the time between frames.
func (l *Loop) Interval() time.Duration { return l.interval }

// Frames returns the number of frames that ran at least one callback.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Panics returns the number of callbacks and tasks that panicked.
func (l *Loop) Panics() uint64 { return l.panics.Load() }

// RequestFrame implements Requester. It may be called from any goroutine.
func (l *Loop) RequestFrame(cb Callback) {
	if cb == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, cb)
	l.mu.Unlock()
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full and returns ErrLoopStopped if the loop stops first.
func (l *Loop) Post(fn func()) error {
	return l.send(context.Background(), fn)
}

// Do runs fn on the loop goroutine and waits for it to finish. It must not
// be called from inside the loop. Cancelling ctx releases the caller whether
// fn is still queued or running.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.send(ctx, func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	quit := l.quitChan()
	select {
	case <-done:
		return nil
	case <-quit:
		// The loop may have run fn just before stopping.
		select {
		case <-done:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) send(ctx context.Context, fn func()) error {
	quit := l.quitChan()
	if quit == nil || !l.running.Load() {
		return ErrLoopStopped
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-quit:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) quitChan() chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quit
}

// begin opens a new run. The caller has won the running flag.
func (l *Loop) begin() {
	l.mu.Lock()
	l.quit = make(chan struct{})
	l.mu.Unlock()
}

// Run drives the loop until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}
	l.begin()
	return l.run(ctx)
}

// Start drives the loop on a new goroutine until ctx is done. The loop
// accepts posted tasks as soon as Start returns.
func (l *Loop) Start(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errAlreadyRunning
	}
	l.begin()
	go l.run(ctx)
	return nil
}

var errAlreadyRunning = errors.New("frame: loop already running")

func (l *Loop) run(ctx context.Context) error {
	l.mu.Lock()
	quit := l.quit
	l.mu.Unlock()
	defer close(quit)
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("loop stopped", "frames", l.frames.Load())
			return ctx.Err()
		case fn := <-l.tasks:
			l.runTask(fn)
		case now := <-ticker.C:
			l.runFrame(now)
		}
	}
}

func (l *Loop) runTask(fn func()) {
	err := invoke(func(time.Time) { fn() }, time.Time{})
	if err != nil {
		l.panics.Add(1)
		l.logger.Error("uncaught panic in task", "error", err)
	}
}

func (l *Loop) runFrame(now time.Time) {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()
	if len(batch) == 0 {
		return
	}
	l.frames.Add(1)
	for _, cb := range batch {
		if err := invoke(cb, now); err != nil {
			l.panics.Add(1)
			l.logger.Error("uncaught panic in frame callback", "error", err)
		}
	}
}

var (
	globalLoop     *Loop
	globalLoopOnce sync.Once
)

// Global returns the process-wide loop, starting it on first use.
func Global() *Loop {
	globalLoopOnce.Do(func() {
		globalLoop = NewLoop()
		_ = globalLoop.Start(context.Background())
	})
	return globalLoop
}
