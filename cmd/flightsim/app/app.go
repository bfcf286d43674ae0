package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/toth-andor/drone/internal/flight"
	"github.com/toth-andor/drone/internal/sim"
	"github.com/toth-andor/drone/internal/storage"
)

const (
	storageDir = "data"

	// tickChannelSize decouples the simulation loop from storage flushes.
	tickChannelSize = 256

	// progressEvery is the number of recorded ticks between progress lines.
	progressEvery = 1000
)

// Run simulates the configured flight and records every control cycle into
// a new SQLite session.
func Run(ctx context.Context, config *Config, logger *slog.Logger) (err error) {
	plan, err := sim.NewPlan(config.Phases())
	if err != nil {
		return fmt.Errorf("building flight plan: %w", err)
	}

	simulator, err := sim.New(config.SimConfig(), plan, sim.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating simulator: %w", err)
	}

	store, dbPath, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing storage: %w", cErr)
		}
	}()

	configData, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}

	sessionID, err := store.CreateSession(ctx, config.Flight.Name, configData)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	duration := config.Flight.Duration.Seconds()
	if duration == 0 {
		duration = plan.Total()
	}

	logger.Info("recording flight",
		slog.String("session", sessionID),
		slog.String("database", dbPath),
		slog.Float64("duration_s", duration))

	start := time.Now()
	rec := newRecorder(store, sessionID, config.Storage.MaxBatchSize)

	g, ctx := errgroup.WithContext(ctx)
	ticks := make(chan flight.Tick, tickChannelSize)

	g.Go(func() error {
		defer close(ticks)

		for simulator.Now() < duration {
			select {
			case ticks <- simulator.Step():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for tick := range ticks {
			if err := rec.add(ctx, tick); err != nil {
				return fmt.Errorf("recording ticks: %w", err)
			}

			if rec.count%progressEvery == 0 {
				logger.Debug("recording",
					slog.Group("stats",
						slog.String("ticks", humanize.Comma(rec.count)),
						slog.Float64("sim_s", tick.Timestamp),
						slog.Float64("altitude_m", tick.Position.Y)))
			}
		}
		return rec.flush(ctx)
	})

	if err = g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)

	rate := float64(rec.count) / elapsed.Seconds()
	fract, suffix := humanize.ComputeSI(rate)

	logger.Info("flight complete",
		slog.String("session", sessionID),
		slog.Group("stats",
			slog.String("ticks", humanize.Comma(rec.count)),
			slog.String("rate", fmt.Sprintf("%0.2f %sHz", fract, suffix)),
			slog.Float64("sim_s", simulator.Now()),
			slog.Float64("peak_altitude_m", rec.maxAltitude)),
		slog.Duration("elapsed", elapsed.Round(time.Millisecond)))

	return nil
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	dir := storageDir
	if config.DataDirectory != "" {
		dir = config.DataDirectory
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(wd, dir)
	}

	stat, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("storage directory %q: %w", dir, err)
	}
	if !stat.IsDir() {
		return nil, "", fmt.Errorf("invalid storage directory %q", dir)
	}

	dbPath := filepath.Join(dir, fmt.Sprintf("flight_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), dbPath, nil
}
