package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/toth-andor/drone/internal/flight"
	"github.com/toth-andor/drone/internal/storage"
)

// Run renders one recorded session from a flight database into an image.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	logger.Debug("opening flight database", slog.String("path", config.DBPath))

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	session, err := resolveSession(ctx, store, config)
	if err != nil {
		return err
	}

	logger.Info("rendering session",
		slog.String("session", session.ID),
		slog.String("name", session.Name),
		slog.String("startTime", session.StartTime.Local().Format(time.DateTime)))

	return renderTrack(ctx, store, session, config, logger)
}

func resolveSession(ctx context.Context, store *storage.SqliteStore, config *Config) (*flight.Session, error) {
	if config.SessionID == "" {
		session, err := store.LatestSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("finding the most recent session: %w", err)
		}
		return session, nil
	}

	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return nil, fmt.Errorf("finding session '%s': %w", config.SessionID, err)
	}
	return session, nil
}

func renderTrack(ctx context.Context, store *storage.SqliteStore, session *flight.Session, config *Config, logger *slog.Logger) error {
	var opts []func(r *storage.TickReader)
	var filters []any
	switch {
	case config.MinTime != nil && config.MaxTime != nil:
		opts = append(opts, storage.WithTimeRange(*config.MinTime, *config.MaxTime))

		filters = append(filters,
			slog.String("minTime", fmt.Sprintf("%0.2fs", *config.MinTime)),
			slog.String("maxTime", fmt.Sprintf("%0.2fs", *config.MaxTime)))

	case config.MinTime != nil:
		opts = append(opts, storage.WithStartTime(*config.MinTime))
		filters = append(filters, slog.String("minTime", fmt.Sprintf("%0.2fs", *config.MinTime)))

	case config.MaxTime != nil:
		opts = append(opts, storage.WithEndTime(*config.MaxTime))
		filters = append(filters, slog.String("maxTime", fmt.Sprintf("%0.2fs", *config.MaxTime)))
	}

	if len(filters) > 0 {
		logger.Info("reader configuration", filters...)
	}

	reader, err := store.Ticks(ctx, session.ID, opts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	track := NewTrackData()
	for reader.Next() {
		track.Update(reader.Current())
	}
	if err = reader.Error(); err != nil {
		return err
	}

	if track.Count() == 0 {
		return fmt.Errorf("session '%s' has no recorded ticks", session.ID)
	}

	gyroBounds := track.GyroBounds()

	logger.Info("finished reading ticks",
		slog.Group("stats",
			slog.Int("ticks", track.Count()),
			slog.String("rate", formatRate(track.Rate())),
			slog.String("minTime", formatSeconds(track.TimeStart)),
			slog.String("maxTime", formatSeconds(track.TimeEnd)),
			slog.String("peakAltitude", fmt.Sprintf("%0.2fm", track.PeakAltitude)),
			slog.String("gyroBounds", fmt.Sprintf("%0.2f..%0.2f rad/s", gyroBounds.Min, gyroBounds.Max)),
		))

	renderer, err := NewTrackRenderer(RenderConfig{
		Title:         sessionTitle(session),
		Width:         config.Width,
		ColorTheme:    config.Theme,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating track renderer: %w", err)
	}

	img, err := renderer.Render(track)
	if err != nil {
		return fmt.Errorf("rendering track: %w", err)
	}

	logger.Info("writing image",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
		))

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

// sessionTitle labels the plot with the operator-assigned name when one was
// recorded, falling back to the session ID.
func sessionTitle(session *flight.Session) string {
	if session.Name == "" {
		return session.ID
	}
	return fmt.Sprintf("%s (%s)", session.Name, session.ID)
}
