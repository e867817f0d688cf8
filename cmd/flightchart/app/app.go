package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nrs-cansat/telemetry/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewFlightStore(config.DBPath)
	defer store.Close()

	return renderFlight(ctx, store, config, logger)
}

func renderFlight(ctx context.Context, store *storage.FlightStore, config *Config, logger *slog.Logger) error {
	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	logger.Info("charting session",
		slog.Int64("sessionId", session.ID),
		slog.String("source", session.Source),
		slog.String("startTime", session.StartTime.Local().Format(time.DateTime)),
		slog.String("series", strings.Join(config.Series, ", ")))

	reader, err := store.ReadRecords(ctx, config.SessionID)
	if err != nil {
		return err
	}
	defer reader.Close()

	data := NewChartData(config.Series)
	for reader.Next(ctx) {
		data.Update(reader.Current())
	}
	if err = reader.Err(); err != nil {
		return err
	}

	if data.Count() == 0 {
		return fmt.Errorf("session %d has no records", config.SessionID)
	}

	for _, series := range data.Series {
		logger.Debug("series stats",
			slog.String("name", series.Name),
			slog.Float64("min", series.Min),
			slog.Float64("max", series.Max))
	}

	logger.Info("finished reading records",
		slog.Group("stats",
			slog.Int("records", data.Count()),
			slog.String("flightTime", fmt.Sprintf("%.0fs - %.0fs", data.TimeMin(), data.TimeMax())),
			slog.String("received", fmt.Sprintf("%s - %s",
				data.TimeStart.Local().Format(time.DateTime),
				data.TimeEnd.Local().Format(time.DateTime))),
		))

	renderer := NewChartRenderer(RenderConfig{
		FontPath:      config.FontPath,
		NoAnnotations: config.NoAnnotations,
	})

	logger.Info("rendering chart",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("panels", len(data.Series)),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

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
