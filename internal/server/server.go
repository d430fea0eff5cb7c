/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server bundles the HTTP control surface and the playout session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/friendsincode/radioport/internal/api"
	"github.com/friendsincode/radioport/internal/catalog"
	"github.com/friendsincode/radioport/internal/config"
	"github.com/friendsincode/radioport/internal/events"
	"github.com/friendsincode/radioport/internal/history"
	"github.com/friendsincode/radioport/internal/notify"
	"github.com/friendsincode/radioport/internal/player"
	"github.com/friendsincode/radioport/internal/playout"
	"github.com/friendsincode/radioport/internal/telemetry"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	catalog *catalog.Catalog
	bus     *events.Bus
	store   *history.Store
	session *playout.Session
	api     *api.API
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	// SSE connections are long-lived; only non-streaming routes get a timeout.
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/events" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		// WriteTimeout stays 0 so the SSE stream is not cut off.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

func (s *Server) initDependencies() error {
	cat, err := catalog.Load(s.cfg.StationsFile, s.cfg.DataRoot)
	if err != nil {
		return err
	}
	s.catalog = cat
	s.logger.Info().Int("stations", len(cat.Names())).Str("path", s.cfg.StationsFile).Msg("station catalog loaded")

	if s.cfg.HistoryDSN != "" {
		store, err := history.Open(s.cfg.HistoryDSN)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		s.store = store
		s.DeferClose(store.Close)

		if s.cfg.HistoryRetention > 0 {
			if err := store.Prune(context.Background(), s.cfg.HistoryRetention); err != nil {
				s.logger.Warn().Err(err).Msg("history prune failed")
			}
		}
	}

	var notifier notify.Notifier = notify.Nop{}
	if s.cfg.NotifyEnabled {
		notifier = notify.NewDesktop(s.cfg.NotifyBin, notify.Urgency(s.cfg.NotifyUrgency), s.logger)
	}

	p := player.NewExecPlayer(s.cfg.PlayerBin, s.cfg.ProbeBin, s.logger)
	s.DeferClose(p.Stop)

	s.session = playout.NewSession(cat, p, s.bus, s.store, notifier, s.cfg.RepeatBias, s.logger)
	s.api = api.New(cat, s.session, s.store, s.bus, s.logger)
	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Handle("/metrics", telemetry.Handler())

	s.api.Routes(s.router)
}

// Session exposes the playout session for the CLI layer.
func (s *Server) Session() *playout.Session {
	return s.session
}

// Catalog exposes the loaded station catalog.
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog
}

// Run serves HTTP and drives the session until the context is cancelled.
// station is tuned before playback begins.
func (s *Server) Run(ctx context.Context, station string, forceJingle bool) error {
	if err := s.session.Tune(station, forceJingle); err != nil {
		return err
	}

	httpErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	sessionErr := make(chan error, 1)
	sessionCtx, cancelSession := context.WithCancel(ctx)
	defer cancelSession()
	go func() {
		sessionErr <- s.session.Run(sessionCtx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-httpErr:
		cancelSession()
	case runErr = <-sessionErr:
		if errors.Is(runErr, context.Canceled) {
			runErr = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
