// Package server exposes the risk engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/chain-sentry/internal/config"
	"github.com/aristath/chain-sentry/internal/database"
	"github.com/aristath/chain-sentry/internal/modules/scenarios"
	"github.com/aristath/chain-sentry/internal/modules/scoring"
	"github.com/aristath/chain-sentry/internal/modules/settings"
	"github.com/aristath/chain-sentry/internal/scheduler"
	"github.com/aristath/chain-sentry/internal/services"
)

// Config holds server configuration
type Config struct {
	Log           zerolog.Logger
	DB            *database.DB
	Config        *config.Config
	Scheduler     *scheduler.Scheduler
	Engine        *services.Engine
	UnitsRepo     *scoring.Repository
	SettingsRepo  *settings.Repository
	ScenariosRepo *scenarios.Repository
	ReoptimizeJob scheduler.Job
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	cfg            *config.Config
	engine         *services.Engine
	unitsRepo      *scoring.Repository
	settingsRepo   *settings.Repository
	scenariosRepo  *scenarios.Repository
	systemHandlers *SystemHandlers
	scheduler      *scheduler.Scheduler
	reoptimizeJob  scheduler.Job
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		db:             cfg.DB,
		cfg:            cfg.Config,
		engine:         cfg.Engine,
		unitsRepo:      cfg.UnitsRepo,
		settingsRepo:   cfg.SettingsRepo,
		scenariosRepo:  cfg.ScenariosRepo,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.DB, cfg.Scheduler),
		scheduler:      cfg.Scheduler,
		reoptimizeJob:  cfg.ReoptimizeJob,
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // optimization runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

		r.Route("/units", func(r chi.Router) {
			r.Get("/", s.handleListUnits)
			r.Post("/", s.handleUpsertUnit)
			r.Get("/{code}", s.handleGetUnit)
			r.Delete("/{code}", s.handleDeleteUnit)
		})

		r.Post("/score", s.handleScore)
		r.Post("/portfolio/aggregate", s.handleAggregate)
		r.Post("/coverage/distribute", s.handleDistribute)
		r.Post("/effectiveness/detection", s.handleDetection)
		r.Post("/effectiveness/response", s.handleResponse)
		r.Post("/managed-risk", s.handleManagedRisk)
		r.Post("/cost", s.handleCost)

		r.Get("/state", s.handleGetState)
		r.Put("/state", s.handlePutState)

		r.Post("/optimize", s.handleOptimize)
		r.Post("/optimize/apply", s.handleApplyResult)
		r.Get("/runs", s.handleListRuns)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", s.handleListScenarios)
			r.Post("/", s.handleSaveScenario)
			r.Get("/{id}", s.handleGetScenario)
			r.Delete("/{id}", s.handleDeleteScenario)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Post("/jobs/reoptimize", s.handleTriggerReoptimize)
	})
}

// loggingMiddleware logs each request with latency and status.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

// Start begins listening for requests. Blocks until shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
