// Package main runs the scoring service: rescoring over HTTP, the score
// table, Prometheus metrics, and a websocket feed of run summaries.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"defi-credit-scorer/internal/observability"
	"defi-credit-scorer/internal/pipeline"
	"defi-credit-scorer/internal/scoring"
	"defi-credit-scorer/internal/server"
	"defi-credit-scorer/internal/storage/memory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve wallet credit scores over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Local .env is optional.
			_ = godotenv.Load()

			if addr == "" {
				addr = os.Getenv("LISTEN_ADDR")
			}
			if addr == "" {
				addr = ":8080"
			}

			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()

			cfg := scoring.DefaultConfig()
			if configPath != "" {
				var err error
				cfg, err = scoring.LoadConfig(configPath)
				if err != nil {
					return err
				}
			}

			return serve(cmd.Context(), logger, cfg, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default LISTEN_ADDR or :8080)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "optional scoring weights yaml")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	return cmd
}

func serve(ctx context.Context, logger zerolog.Logger, cfg scoring.Config, addr string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := observability.NewMetrics("")
	scoreStore := memory.NewScoreStore()
	featureStore := memory.NewFeatureStore()

	runner := pipeline.NewRunner(cfg).
		WithStores(scoreStore, featureStore).
		WithMetrics(metrics).
		WithLogger(logger)

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(scoreStore, runner, metrics, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
