package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/radioport/internal/config"
	"github.com/friendsincode/radioport/internal/logging"
	"github.com/friendsincode/radioport/internal/server"
	"github.com/friendsincode/radioport/internal/telemetry"
	"github.com/friendsincode/radioport/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "radioport",
	Short: "Radioport - procedurally sequenced radio stations",
	Long:  "Radioport plays never-ending, procedurally sequenced radio stations built from local audio: music rotations, jingles, ad breaks and DJ links.",
}

var (
	serveStation     string
	serveForceJingle bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playback session with the HTTP control surface",
	Long:  "Tune a station, start playback and expose the HTTP API for skip, retune, now-playing and the event stream",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("radioport", version.Version)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveStation, "station", "", "station to tune at startup (defaults to the first in the catalog)")
	serveCmd.Flags().BoolVar(&serveForceJingle, "jingle", false, "force a station jingle as the first event")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	logger.Info().Msg("Radioport starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "radioport",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("shutdown cleanup failed")
		}
	}()

	station := serveStation
	if station == "" {
		names := srv.Catalog().Names()
		if len(names) == 0 {
			return fmt.Errorf("station catalog is empty")
		}
		station = names[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, station, serveForceJingle); err != nil {
		return err
	}

	logger.Info().Msg("Radioport stopped")
	return nil
}
