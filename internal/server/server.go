// Package server exposes viewer sessions over an HTTP JSON API.
//
// Every viewer creates a session, fetches its styled layers and forwards
// pointer events. The server owns no map rendering: it answers which feature
// is highlighted and how every feature is styled for that session.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/layers
//	GET    /api/tables/{name}/legend
//	POST   /api/sessions
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/layers/{layer}
//	POST   /api/sessions/{id}/click
//	POST   /api/sessions/{id}/leave
//
// Errors are rendered as {"code": "...", "message": "..."} with the code
// taken from pkg/errors.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/thermogrid/pkg/config"
	"github.com/matzehuels/thermogrid/pkg/highlight"
	"github.com/matzehuels/thermogrid/pkg/pick"
	"github.com/matzehuels/thermogrid/pkg/session"
)

const (
	// cleanupInterval is how often expired sessions are swept.
	cleanupInterval = time.Minute

	shutdownTimeout = 5 * time.Second
)

// Config describes the server's dependencies.
type Config struct {
	Addr       string
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Server serves the session API over a loaded scene.
type Server struct {
	addr   string
	ttl    time.Duration
	scene  *config.Scene
	picker *pick.Picker
	store  *session.MemoryStore
	logger *log.Logger
	router chi.Router
}

// New builds a server over scene. Sessions live in store.
func New(scene *config.Scene, store *session.MemoryStore, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultAddr
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if store == nil {
		store = session.NewMemoryStore()
	}

	s := &Server{
		addr:   cfg.Addr,
		ttl:    cfg.SessionTTL,
		scene:  scene,
		picker: pick.NewPicker(scene.Canvas, pick.StatsLayers()),
		store:  store,
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/layers", s.handleLayers)
		r.Get("/tables/{name}/legend", s.handleLegend)

		r.Post("/sessions", s.handleCreateSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
		r.Get("/sessions/{id}/layers/{layer}", s.handleSessionLayer)
		r.Post("/sessions/{id}/click", s.handleClick)
		r.Post("/sessions/{id}/leave", s.handleLeave)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// newSession creates a session over the shared scene.
func (s *Server) newSession() *session.Session {
	sheet := session.NewSheet(s.scene.Canvas, s.scene.Styles)
	return session.New(s.picker, sheet, s.ttl, highlight.WithLogger(s.logger))
}

// Start serves until ctx is cancelled or the listener fails. Expired
// sessions are swept in the background.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.store.Run(ctx, cleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("listening", "addr", s.addr, "layers", len(s.scene.Canvas.Layers()))

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
