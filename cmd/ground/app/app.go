package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nrs-cansat/telemetry/internal/radio"
	"github.com/nrs-cansat/telemetry/internal/relay"
	"github.com/nrs-cansat/telemetry/internal/serlink"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	link, err := radio.OpenRF95(config.Radio)
	if err != nil {
		return fmt.Errorf("failed to open radio link: %w", err)
	}
	defer link.Close()

	wired, err := serlink.Open(config.Serial)
	if err != nil {
		return fmt.Errorf("failed to open wired link: %w", err)
	}
	defer wired.Close()

	logger.Info("ground relay up",
		slog.String("radio", config.Radio.Device),
		slog.String("serial", config.Serial.Port))

	bridge := relay.New(link, wired,
		relay.WithLogger(logger),
		relay.WithReceiveTimeout(config.Relay.ReceiveTimeout.Or(200*time.Millisecond)))

	err = bridge.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
