package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"konservasi-platform/internal/app"
	"konservasi-platform/internal/handlers"
	"konservasi-platform/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:           "konservasi-server",
	Short:         "Serve the conservation area effectiveness API and dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

func init() {
	rootCmd.Flags().String("config", "", "path to config file (default: ./config.yaml or ./config/config.yaml)")
	rootCmd.Flags().Bool("migrate", false, "apply pending migrations before serving")
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configFile, _ := cmd.Flags().GetString("config")
	migrate, _ := cmd.Flags().GetBool("migrate")

	a, err := app.Open(ctx, app.Options{
		ConfigFile: configFile,
		Service:    "konservasi-api",
		Migrate:    migrate,
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	a.Logger.Info(ctx, "[STARTUP] Starting konservasi API server", logging.Fields{
		"version":     app.Version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
		"db_name":     cfg.Database.Database,
	})

	router := handlers.NewRouter(handlers.Services{
		Areas:          a.Areas,
		Assessments:    a.Assessments,
		Statistics:     a.Statistics,
		Ingestion:      a.Ingestion,
		Export:         a.Export,
		Maps:           a.Maps,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		ImportRate:     cfg.Import.RateLimit,
		ImportBurst:    cfg.Import.Burst,
	}, a.Logger, a.Metrics)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handlers.Wrap(router, a.Logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			a.Logger.Error(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
			return err
		}
	case <-ctx.Done():
	}

	a.Logger.Info(context.Background(), "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error(shutdownCtx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
		return err
	}

	a.Logger.Info(shutdownCtx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
	return nil
}
