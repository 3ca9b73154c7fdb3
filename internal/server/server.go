package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/config"
	"github.com/Leeky19/meteo/internal/server/handlers"
	"github.com/Leeky19/meteo/internal/server/middlewares"
	"github.com/Leeky19/meteo/internal/service"
	"github.com/Leeky19/meteo/internal/session"
	"github.com/Leeky19/meteo/pkg/telemetry"
)

// Dependencies are the components the HTTP API serves from.
type Dependencies struct {
	Source   service.DataSource
	Sessions *session.Registry
	Recent   handlers.RecentLister
	Metrics  *handlers.MetricsHandler
	Checks   map[string]handlers.ReadinessCheck
}

type Server struct {
	engine *gin.Engine
	server *http.Server
	deps   Dependencies
	logger *zap.Logger
	tele   *telemetry.Telemetry
}

func NewServer(deps Dependencies, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	if deps.Metrics == nil {
		deps.Metrics = handlers.NewMetricsHandler(logger)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middlewares.RequestIDMiddleware(logger))
	engine.Use(middlewares.SessionMiddleware(logger))
	engine.Use(middlewares.LoggingMiddleware(logger, time.RFC3339, true))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(middlewares.NewMetricsMiddleware(logger, tele, deps.Metrics).Handler())

	s := &Server{
		engine: engine,
		deps:   deps,
		logger: logger,
		tele:   tele,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	forecast := handlers.NewForecastHandler(s.deps.Sessions, s.logger)

	// Business endpoints
	v1 := s.engine.Group("/v1")
	v1.GET("/forecast/search", forecast.Search)
	v1.GET("/forecast/locate", forecast.Locate)
	v1.GET("/forecast/state", forecast.State)
	v1.GET("/current", handlers.NewCurrentHandler(s.deps.Source, s.logger).GetCurrent)
	v1.GET("/searches/recent", handlers.NewRecentHandler(s.deps.Recent).List)
	v1.GET("/maps/precipitation/:z/:x/:y", handlers.NewTileHandler(s.deps.Source, service.DefaultTileLayer, s.logger).GetTile)

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.logger, s.deps.Checks)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", s.deps.Metrics.ServeMetrics)
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	cfg := config.GetConfig()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
