package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/config"
	"github.com/Leeky19/meteo/internal/location"
	"github.com/Leeky19/meteo/internal/orchestrator"
	"github.com/Leeky19/meteo/internal/server"
	"github.com/Leeky19/meteo/internal/server/handlers"
	"github.com/Leeky19/meteo/internal/session"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the forecast HTTP API",
	Long:  `Start the HTTP server that runs forecast pipelines per client session, with caching and observability.`,
	RunE:  runServer,
}

type pinger interface {
	Ping(ctx context.Context) error
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting forecast server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver))

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Clients report their own position; the configured provider answers otherwise.
	locator := location.Reported{Fallback: a.locator}
	sessions := session.NewRegistry(func() *orchestrator.Orchestrator {
		return a.newOrchestrator(locator)
	},
		time.Duration(cfg.Session.TTL)*time.Second,
		time.Duration(cfg.Session.SweepInterval)*time.Second,
		log.Logger)
	sessions.OnSweep(func() { a.source.PurgeExpired() })

	if err := sessions.Start(); err != nil {
		return err
	}
	defer sessions.Stop()

	checks := map[string]handlers.ReadinessCheck{}
	if p, ok := a.kv.(pinger); ok {
		checks["storage"] = p.Ping
	}

	srv := server.NewServer(server.Dependencies{
		Source:   a.source,
		Sessions: sessions,
		Recent:   a.recent,
		Metrics:  a.metrics,
		Checks:   checks,
	}, log.Logger, tele)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		if err := srv.Shutdown(); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
