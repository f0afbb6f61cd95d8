// Package server implements the curlyarrow HTTP API.
//
// The server keeps live mechanism sessions in memory and exposes them as
// a JSON API under /api/v1: clients create a session from a molfile, post
// electron-pushing moves against it, and poll session state while a
// background loop advances every active bond transition at the configured
// frame rate. Snapshots persist through a [store.Store], so sessions can
// be parked and picked up again later, including across server restarts
// when a durable backend is configured.
//
// Handlers and the advance loop serialize through one mutex per session;
// the mechanism core stays single-writer.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/curlyarrow/curlyarrow/pkg/cache"
	"github.com/curlyarrow/curlyarrow/pkg/store"
)

const (
	// defaultTickInterval is how often the advance loop runs.
	defaultTickInterval = 50 * time.Millisecond

	// defaultStep is the progress added to every active transition per
	// tick. At the default interval a bond change completes in 2.5s.
	defaultStep = 0.02

	// renderCacheTTL bounds how long a rendered SVG is reused. Keys are
	// content hashes, so the TTL only limits disk growth, never staleness.
	renderCacheTTL = 24 * time.Hour
)

// Config controls the server. The zero value is usable; New fills in
// defaults for anything left unset.
type Config struct {
	// Addr is the listen address, ":8080" when empty.
	Addr string

	// TickInterval is the advance-loop period.
	TickInterval time.Duration

	// Step is the transition progress added per tick.
	Step float64

	// Store persists snapshots. Defaults to an in-memory store.
	Store store.Store

	// RenderCache memoizes rendered SVGs by DOT hash. Defaults to no
	// caching.
	RenderCache cache.Cache

	// Logger receives request and lifecycle logs.
	Logger *log.Logger
}

// Server is the curlyarrow API server.
type Server struct {
	cfg         Config
	logger      *log.Logger
	store       store.Store
	renderCache cache.Cache
	sessions    *registry
}

// New creates a server from cfg, applying defaults for unset fields.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.Step <= 0 {
		cfg.Step = defaultStep
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.RenderCache == nil {
		cfg.RenderCache = cache.NewNullCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		cfg:         cfg,
		logger:      cfg.Logger,
		store:       cfg.Store,
		renderCache: cfg.RenderCache,
		sessions:    newRegistry(),
	}
}

// Handler builds the chi router with all routes and middleware. It does
// not start the advance loop; Run does that.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	router.Get("/health", s.handleHealth)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Post("/{id}/moves", s.handleApplyMove)
			r.Get("/{id}/transitions", s.handleListTransitions)
			r.Get("/{id}/render.svg", s.handleRenderSession)
			r.Post("/{id}/snapshots", s.handleSaveSnapshot)
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Get("/{id}", s.handleGetSnapshot)
			r.Delete("/{id}", s.handleDeleteSnapshot)
			r.Post("/{id}/restore", s.handleRestoreSnapshot)
		})
	})

	return router
}

// Run starts the HTTP listener and the advance loop and blocks until ctx
// is cancelled or the listener fails. Shutdown drains in-flight requests
// for up to ten seconds.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go s.advanceLoop(loopCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "tick", s.cfg.TickInterval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.sessions.count())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// advanceLoop drives every live session's transitions at the configured
// frame rate.
func (s *Server) advanceLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick advances all sessions once. Separate from advanceLoop so tests
// can step the clock by hand.
func (s *Server) tick() {
	s.sessions.each(func(ls *liveSession) {
		ls.mu.Lock()
		completions := ls.sess.Advance(s.cfg.Step)
		ls.mu.Unlock()

		for _, c := range completions {
			if c.Err != nil {
				s.logger.Error("bond commit failed",
					"session", ls.id, "bond", fmt.Sprintf("%d-%d", c.A, c.B), "err", c.Err)
				continue
			}
			s.logger.Debug("bond settled",
				"session", ls.id, "bond", fmt.Sprintf("%d-%d", c.A, c.B), "order", c.Order)
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
