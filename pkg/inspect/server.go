package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	ierrors "github.com/ima-dev/ima/internal/errors"
	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/ima"
	"github.com/ima-dev/ima/pkg/render"
)

// Runner runs fn on the goroutine that owns the engine and waits for it.
// *frame.Loop implements Runner.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// Config configures a Server.
type Config struct {
	// Address is the listen address (default: "localhost:7070").
	Address string

	// Logger is the server logger (default: slog.Default()).
	Logger *slog.Logger

	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	// WriteTimeout bounds each websocket write (default: 5s).
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration

	// CheckOrigin validates websocket origins (default: same host only).
	CheckOrigin func(r *http.Request) bool
}

// Option configures a Server.
type Option func(*Config)

// WithAddress sets the listen address.
func WithAddress(addr string) Option {
	return func(c *Config) {
		c.Address = addr
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *Config) {
		c.Metrics = h
	}
}

// WithWriteTimeout sets the websocket write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = d
	}
}

// WithCheckOrigin sets the websocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = fn
	}
}

// Message is one websocket message.
type Message struct {
	// Type is "snapshot" for the message sent on connect and "tick" after.
	Type  string    `json:"type"`
	Stats ima.Stats `json:"stats"`
}

// DispatchResult is the response of POST /dispatch.
type DispatchResult struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Listeners int    `json:"listeners"`
}

// errorBody is the JSON error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Server is the inspector HTTP server.
type Server struct {
	engine *ima.Engine
	runner Runner
	config Config
	logger *slog.Logger

	router   chi.Router
	upgrader websocket.Upgrader
	hub      *hub

	httpServer *http.Server

	// done is closed on shutdown. Hijacked websocket connections are not
	// tracked by http.Server, so their handlers watch it.
	done     chan struct{}
	doneOnce sync.Once
}

// New creates an inspector for e. It registers a tick observer on e, so it
// must be called from the goroutine that owns e, or before that goroutine
// starts ticking.
func New(e *ima.Engine, runner Runner, opts ...Option) *Server {
	config := Config{
		Address:         "localhost:7070",
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		engine: e,
		runner: runner,
		config: config,
		logger: config.Logger.With("component", "inspect"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		hub:  newHub(16),
		done: make(chan struct{}),
	}
	e.OnTick(func(st ima.Stats) {
		if st.Updated() > 0 {
			s.hub.publish(st)
		}
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDocument)
	r.With(middleware.NoCache).Get("/stats", s.handleStats)
	r.Post("/dispatch/{id}/{event}", s.handleDispatch)
	r.Get("/ws", s.handleWebSocket)
	if s.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.config.Metrics)
	}
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Subscribers returns the number of connected websocket clients.
func (s *Server) Subscribers() int {
	return s.hub.count()
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return ierrors.New("E501").WithDetail(s.config.Address).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.doneOnce.Do(func() { close(s.done) })
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		s.logger.Info("inspector stopped")
		return nil
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var html string
	err := s.runner.Do(r.Context(), func() {
		html = render.OuterHTML(s.engine.Document().DocumentElement())
	})
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, ierrors.FromError(err, "E503"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!DOCTYPE html>\n" + html))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var st ima.Stats
	if err := s.runner.Do(r.Context(), func() { st = s.engine.Debug() }); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, ierrors.FromError(err, "E503"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event := chi.URLParam(r, "event")

	found := false
	invoked := 0
	err := s.runner.Do(r.Context(), func() {
		el := s.engine.Document().GetElementByID(id)
		if el == nil {
			return
		}
		found = true
		invoked = el.Dispatch(dom.NewEvent(event))
	})
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, ierrors.FromError(err, "E503"))
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, ierrors.New("E502").WithDetailf("id %q", id))
		return
	}
	s.logger.Debug("event dispatched", "id", id, "event", event, "listeners", invoked)
	writeJSON(w, http.StatusOK, DispatchResult{ID: id, Event: event, Listeners: invoked})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := s.hub.subscribe()
	defer s.hub.unsubscribe(sub)

	var st ima.Stats
	if err := s.runner.Do(r.Context(), func() { st = s.engine.Debug() }); err != nil {
		return
	}
	if err := s.write(conn, Message{Type: "snapshot", Stats: st}); err != nil {
		return
	}

	// The client never sends anything meaningful; reading detects close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(s.config.WriteTimeout))
			return
		case st := <-sub:
			if err := s.write(conn, Message{Type: "tick", Stats: st}); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteJSON(msg)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err *ierrors.Error) {
	s.logger.Warn("request failed", "error", err)
	writeJSON(w, status, errorBody{Code: err.Code, Message: err.Message, Detail: err.Detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
