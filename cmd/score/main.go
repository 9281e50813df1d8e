// Package main provides the batch scoring entry point: transaction export
// in, score CSVs and analysis report out.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"defi-credit-scorer/internal/ingestion"
	"defi-credit-scorer/internal/pipeline"
	"defi-credit-scorer/internal/reporting"
	"defi-credit-scorer/internal/scoring"
	"defi-credit-scorer/internal/storage/memory"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		inputPath  string
		outputDir  string
		configPath string
		workers    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "score",
		Short:         "Score wallet creditworthiness from a lending-protocol transaction export",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(verbose)

			cfg := scoring.DefaultConfig()
			if configPath != "" {
				var err error
				cfg, err = scoring.LoadConfig(configPath)
				if err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return run(ctx, logger, cfg, inputPath, outputDir, workers)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the transaction export JSON (required)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "output", "directory for generated files")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "optional scoring weights yaml")
	cmd.Flags().IntVar(&workers, "workers", 0, "feature extraction fan-out (0 = number of CPUs)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.MarkFlagRequired("input")

	return cmd
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func run(ctx context.Context, logger zerolog.Logger, cfg scoring.Config, inputPath, outputDir string, workers int) error {
	txs, stats, err := ingestion.LoadFile(inputPath)
	if err != nil {
		return err
	}
	logger.Info().
		Int("records", stats.Records).
		Int("skipped", stats.Skipped).
		Int("transactions", len(txs)).
		Msg("loaded transaction export")

	scoreStore := memory.NewScoreStore()
	featureStore := memory.NewFeatureStore()

	runner := pipeline.NewRunner(cfg).
		WithStores(scoreStore, featureStore).
		WithLogger(logger)
	if workers > 0 {
		runner = runner.WithWorkers(workers)
	}

	result, err := runner.Run(ctx, txs)
	if err != nil {
		return err
	}

	report, err := reporting.NewGenerator(scoreStore, featureStore).Generate(ctx)
	if err != nil {
		return err
	}

	if err := writeOutputs(outputDir, result, report); err != nil {
		return err
	}

	logger.Info().
		Int("wallets", result.WalletsScored).
		Float64("mean_score", report.Stats.Mean).
		Int("min_score", report.Stats.Min).
		Int("max_score", report.Stats.Max).
		Str("output_dir", outputDir).
		Msg("analysis complete")
	return nil
}

func writeOutputs(outputDir string, result *pipeline.RunResult, report *reporting.Report) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"wallet_credit_scores.csv":     reporting.RenderScoresCSV(result.Scores),
		"detailed_wallet_analysis.csv": reporting.RenderDetailedCSV(result.Features, result.Scores),
		"analysis.md":                  reporting.RenderMarkdown(report),
	}
	for name, content := range files {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
