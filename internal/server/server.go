// Package server exposes the detection pipeline over a REST API.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"zombie-detector/internal/config"
	"zombie-detector/internal/service"
	"zombie-detector/internal/tracker"
)

// Server wires the processor and tracker into HTTP handlers.
type Server struct {
	router    *chi.Mux
	processor *service.Processor
	tracker   *tracker.Tracker
	states    map[string]int
	metrics   *metrics
	cfg       config.ServerConfig
	version   string
	logger    zerolog.Logger
}

// NewServer creates the API server. The tracker may be nil when
// tracking is disabled; the tracking endpoints then answer 503.
func NewServer(
	cfg config.ServerConfig,
	processor *service.Processor,
	tr *tracker.Tracker,
	states map[string]int,
	version string,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		processor: processor,
		tracker:   tr,
		states:    states,
		metrics:   newMetrics(),
		cfg:       cfg,
		version:   version,
		logger:    logger.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}).ServeHTTP)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.getHealth)
		r.Get("/states", s.getStates)
		r.Get("/criteria", s.getCriteria)

		r.Post("/zombie-detection", s.postDetection)

		r.Get("/zombies/killed", s.getKilled)
		r.Get("/zombies/{id}/killed", s.getZombieKilled)
		r.Get("/zombies/{id}/lifecycle", s.getZombieLifecycle)
		r.Post("/zombies/cleanup", s.postCleanup)
	})
}

// Handler returns the HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.cfg.Listen).Msg("api server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
