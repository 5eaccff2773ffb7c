// Package server implements `wordpath serve`: stateless layout and render
// endpoints over HTTP plus live diagram sessions over WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/wordpath/pkg/config"
	"github.com/matzehuels/wordpath/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Options configures a [Server].
type Options struct {
	Config config.Config
	Runner *pipeline.Runner
	Logger *log.Logger

	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP front end. Create it with [New].
type Server struct {
	cfg      atomic.Pointer[config.Config]
	runner   *pipeline.Runner
	logger   *log.Logger
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader

	mu       sync.Mutex // guards closed and sessions.Add against Close
	closed   bool
	sessions sync.WaitGroup
	closing  chan struct{}
}

// New creates a server. A nil Runner gets one without a cache.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		runner:   opts.Runner,
		logger:   opts.Logger,
		gatherer: opts.Gatherer,
		closing:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16384,
			// Sessions carry no credentials, so any page may embed a diagram.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	cfg := opts.Config
	cfg.SetDefaults()
	s.cfg.Store(&cfg)
	return s
}

// Config returns the configuration in effect.
func (s *Server) Config() config.Config { return *s.cfg.Load() }

// SetConfig replaces the configuration. Sessions already open keep the force
// constants they started with.
func (s *Server) SetConfig(cfg config.Config) {
	cfg.SetDefaults()
	s.cfg.Store(&cfg)
	s.logger.Info("configuration updated", "charge", cfg.Force.ChargeStrength, "link_distance", cfg.Force.LinkDistance)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Get("/diagrams/ws", s.handleSession)
	})
	return r
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully and closes open sessions.
func (s *Server) Run(ctx context.Context) error {
	addr := s.Config().Server.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close ends every open session and waits for them to finish. Hijacked
// WebSocket connections are not covered by http.Server.Shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.closing)
	}
	s.mu.Unlock()
	s.sessions.Wait()
}

// acquireSession registers a session, or reports false once Close has been
// called.
func (s *Server) acquireSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions.Add(1)
	return true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
