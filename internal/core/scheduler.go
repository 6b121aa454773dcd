package core

// scheduler.go provides background maintenance for the validation service.
//
// Local mode copies every input file into the temp directory. A run always
// removes its own copy, but a killed process leaves copies behind; the sweeper
// periodically deletes copies older than a retention age. It logs progress and
// errors but never fails the service.

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// tempFilePattern names local copies of input files.
const tempFilePattern = "prevalidate-*.csv"

// SweepConfig holds configuration for the temp file sweeper.
// Zero values fall back to the defaults noted per field.
type SweepConfig struct {
	Dir           string        // Directory holding local copies (default: os.TempDir)
	MaxAge        time.Duration // Copies older than this are removed (default: 24h)
	CheckInterval time.Duration // How often to sweep (default: 1h)
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.Dir == "" {
		c.Dir = os.TempDir()
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	return c
}

// StartTempSweeper removes stale local copies. It sweeps immediately, then
// every CheckInterval, and returns when ctx is cancelled.
func StartTempSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()
	slog.Info("temp sweeper started",
		"dir", cfg.Dir,
		"max_age", cfg.MaxAge,
		"interval", cfg.CheckInterval,
	)

	runSweep(cfg, time.Now())

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("temp sweeper stopped")
			return
		case now := <-ticker.C:
			runSweep(cfg, now)
		}
	}
}

func runSweep(cfg SweepConfig, now time.Time) {
	start := time.Now()
	removed, err := SweepTempFiles(cfg.Dir, cfg.MaxAge, now)
	if err != nil {
		slog.Error("temp sweep failed", "dir", cfg.Dir, "error", err)
		return
	}
	slog.Debug("temp sweep completed",
		"files_removed", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// SweepTempFiles deletes local copies in dir last modified before now-maxAge
// and returns how many were removed. Files that vanish mid-sweep are skipped.
func SweepTempFiles(dir string, maxAge time.Duration, now time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, tempFilePattern))
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
