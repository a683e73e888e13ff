package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"car-park/internal/config"
	"car-park/internal/logging"
	"car-park/internal/parking"
	"car-park/internal/server"
)

var version = "0.1.0"

// app holds what every subcommand shares: one registry behind one
// telemetry provider.
type app struct {
	cfg       *config.Config
	telemetry *parking.TelemetryProvider
	carPark   *parking.InstrumentedCarPark
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "carpark",
		Short: "Staff and visitor car park registry",
		Long: `carpark keeps a registry of staff and visitor parking slots and the cars
parked in them. It runs as an interactive shell, an HTTP API, or both over the
same registry.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Manage the car park from an interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdownTelemetry()

			parking.NewInstrumentedShell(a.carPark, a.telemetry, os.Stdin, os.Stdout).Run(ctx)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the car park HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdownTelemetry()
			a.overridePort(port)

			srv := server.NewServer(a.cfg, a.carPark)
			serverDone := make(chan error, 1)
			go func() {
				serverDone <- srv.Start()
			}()

			select {
			case err := <-serverDone:
				return serverError(err)
			case <-ctx.Done():
				logging.Logger().Info().Msg("Received shutdown signal")
			}
			return a.shutdownServer(srv)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "HTTP port (overrides PORT)")

	return cmd
}

func newRunCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the shell and the HTTP API over one registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.shutdownTelemetry()
			a.overridePort(port)

			srv := server.NewServer(a.cfg, a.carPark)
			serverDone := make(chan error, 1)
			go func() {
				serverDone <- srv.Start()
			}()

			shellDone := make(chan struct{})
			go func() {
				parking.NewInstrumentedShell(a.carPark, a.telemetry, os.Stdin, os.Stdout).Run(ctx)
				close(shellDone)
			}()

			select {
			case err := <-serverDone:
				return serverError(err)
			case <-shellDone:
				logging.Logger().Info().Msg("Shell exited")
			case <-ctx.Done():
				logging.Logger().Info().Msg("Received shutdown signal")
			}
			return a.shutdownServer(srv)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "HTTP port (overrides PORT)")

	return cmd
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logging.Init(cfg.LogLevel, cfg.IsDevelopment())

	var telemetry *parking.TelemetryProvider
	if cfg.OTelEnabled {
		telemetry, err = parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
			ServiceName:    cfg.OTelServiceName,
			Endpoint:       cfg.OTelEndpoint,
			ExportInterval: cfg.OTelExportInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	} else {
		telemetry = parking.NewLocalTelemetryProvider(cfg.OTelServiceName, nil)
	}

	carPark, err := parking.NewInstrumentedCarPark(telemetry)
	if err != nil {
		_ = telemetry.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create car park: %w", err)
	}

	logging.Logger().Info().
		Str("environment", cfg.Environment).
		Bool("otel_enabled", cfg.OTelEnabled).
		Msg("Car park ready")

	return &app{cfg: cfg, telemetry: telemetry, carPark: carPark}, nil
}

func (a *app) overridePort(port string) {
	if port != "" {
		a.cfg.Port = port
	}
}

func (a *app) shutdownServer(srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (a *app) shutdownTelemetry() {
	logging.Logger().Info().Msg("Shutting down telemetry")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.telemetry.Shutdown(ctx); err != nil {
		logging.Logger().Error().Err(err).Msg("Error shutting down telemetry")
	}
}

func serverError(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("server error: %w", err)
}
