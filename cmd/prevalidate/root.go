package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/prevalidate/internal/config"
	"github.com/JonMunkholm/prevalidate/internal/core"
	"github.com/JonMunkholm/prevalidate/internal/storage"
)

var (
	// Global flags
	envFile string
)

// errValidationFailed signals a FAILED report; the report itself has
// already been printed.
var errValidationFailed = errors.New("validation failed")

var rootCmd = &cobra.Command{
	Use:   "prevalidate",
	Short: "Pre-flight validation of privacy-computation input files",
	Long: `Prevalidate checks the structure and data quality of an input file
before a costly privacy computation is started on it.

It matches the header against the known schemas, checks every row for width,
identifier, timestamp and cohort problems, and reports SUCCESS or FAILED with
per-field issue counts.`,
	SilenceUsage: true,
}

// Execute runs the root command. A FAILED report exits with status 1, any
// other error with status 2.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errValidationFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

// loadConfig loads the optional dotenv file and then the environment.
// Variables already set in the environment win over the file.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
		slog.Debug("no env file found, using environment variables", "path", envFile)
	}
	return config.Load()
}

// limitsFrom maps the validation config onto validator limits.
func limitsFrom(cfg config.ValidationConfig) core.Limits {
	return core.Limits{
		MaxFileSize:          cfg.MaxFileSize,
		StreamChunks:         cfg.StreamChunks,
		CheckInterval:        int64(cfg.CheckInterval),
		Budget:               cfg.TimeBudget,
		MaxCohorts:           cfg.MaxCohorts,
		OutOfRangeErrorRatio: cfg.OutOfRangeErrorRatio,
		TempDir:              cfg.TempDir,
	}
}

// openStore builds the blob store named by the storage config.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	provider, err := storage.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, provider, cfg.Region, storage.Credentials{
		AccessKeyID:   cfg.AccessKeyID,
		AccessKeyData: cfg.AccessKeyData,
	})
}
