package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nrs-cansat/telemetry/internal/flight"
	"github.com/nrs-cansat/telemetry/internal/radio"
	"github.com/nrs-cansat/telemetry/internal/sensors"
	"github.com/nrs-cansat/telemetry/internal/wire"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	link, err := radio.OpenRF95(config.Radio)
	if err != nil {
		return fmt.Errorf("failed to open radio link: %w", err)
	}
	defer link.Close()

	logger.Info("radio link up",
		slog.String("device", config.Radio.Device),
		slog.Float64("frequency", config.Radio.Frequency))

	channels := flight.Channels{
		Humidity:    sensors.NewSimChannel("humidity", config.Sensors.Humidity),
		Temperature: sensors.NewSimChannel("temperature", config.Sensors.Temperature),
		Pressure:    sensors.NewSimChannel("pressure", config.Sensors.Pressure),
		Altitude:    sensors.NewSimChannel("altitude", config.Sensors.Altitude),
		Gas:         sensors.NewSimChannel("gas", config.Sensors.Gas),
	}

	publisher := flight.NewPublisher(
		channels,
		sensors.NewSimIMU(),
		link,
		&commandSink{logger: logger},
		flight.WithLogger(logger),
		flight.WithInterval(config.Publisher.Interval.Or(500*time.Millisecond)),
		flight.WithReceiveTimeout(config.Publisher.ReceiveTimeout.Or(100*time.Millisecond)),
	)

	err = publisher.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// commandSink terminates uplink frames on the flight unit. Servo
// actuation itself is an external collaborator; the sink decodes and
// reports what would be actuated.
type commandSink struct {
	logger *slog.Logger
}

func (s *commandSink) Handle(frame []byte) {
	command, err := wire.DecodeCommand(string(frame))
	if err != nil {
		// Not a servo pair: an opaque control token, passed through.
		s.logger.Info("control token received", slog.String("token", string(frame)))
		return
	}

	s.logger.Info("servo command received",
		slog.Int("servo1", command.Servo1),
		slog.Int("servo2", command.Servo2))
}
