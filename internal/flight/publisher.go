// Package flight implements the flight unit's telemetry publisher: a
// single cooperative loop that polls the measurement channels, encodes
// and transmits one record per complete cycle, and forwards inbound
// command frames to the actuation boundary.
package flight

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/nrs-cansat/telemetry/internal/radio"
	"github.com/nrs-cansat/telemetry/internal/sensors"
	"github.com/nrs-cansat/telemetry/internal/wire"
)

const (
	defaultInterval       = 500 * time.Millisecond
	defaultReceiveTimeout = 100 * time.Millisecond
)

// CommandSink receives raw uplink frames. Actuation (servo drivers,
// mode switches) lives behind it, outside this package.
type CommandSink interface {
	Handle(frame []byte)
}

// Channels groups the scalar measurement sources polled each cycle.
// Every channel is required: a cycle with any absent reading publishes
// nothing.
type Channels struct {
	Humidity    sensors.Channel
	Temperature sensors.Channel
	Pressure    sensors.Channel
	Altitude    sensors.Channel
	Gas         sensors.Channel
}

// WithLogger sets the logger for the publisher.
func WithLogger(logger *slog.Logger) func(*Publisher) {
	return func(p *Publisher) {
		p.logger = logger.With(slog.String("component", "publisher"))
	}
}

// WithInterval sets the inter-cycle sleep.
func WithInterval(d time.Duration) func(*Publisher) {
	return func(p *Publisher) {
		p.interval = d
	}
}

// WithReceiveTimeout sets the uplink poll window. This is the loop's
// only suspension point besides the inter-cycle sleep, so it caps the
// worst-case loop latency.
func WithReceiveTimeout(d time.Duration) func(*Publisher) {
	return func(p *Publisher) {
		p.receiveTimeout = d
	}
}

// Publisher runs the flight unit's cycling loop.
type Publisher struct {
	channels Channels
	imu      sensors.IMU
	link     radio.Link
	sink     CommandSink

	interval       time.Duration
	receiveTimeout time.Duration
	logger         *slog.Logger

	start   time.Time
	packets uint64
}

// NewPublisher creates a publisher over the given channels, inertial
// unit, radio link and command sink.
func NewPublisher(channels Channels, imu sensors.IMU, link radio.Link, sink CommandSink, options ...func(*Publisher)) *Publisher {
	p := Publisher{
		channels:       channels,
		imu:            imu,
		link:           link,
		sink:           sink,
		interval:       defaultInterval,
		receiveTimeout: defaultReceiveTimeout,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Packets returns the number of transmission attempts so far. The
// counter tracks attempts, not confirmed deliveries; the link offers no
// delivery confirmation.
func (p *Publisher) Packets() uint64 {
	return p.packets
}

// Run cycles until the context is cancelled. Nothing inside a cycle is
// fatal; faults skip work and the next cycle retries naturally.
func (p *Publisher) Run(ctx context.Context) error {
	p.start = time.Now()
	p.logger.Info("publisher started",
		slog.Duration("interval", p.interval),
		slog.Duration("receiveTimeout", p.receiveTimeout))

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		p.Cycle()

		timer.Reset(p.interval)
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopped", slog.Uint64("packets", p.packets))
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Cycle performs one poll-publish-receive iteration.
func (p *Publisher) Cycle() {
	record, complete := p.gather()

	if complete {
		line := wire.EncodeRecord(record)
		p.packets++ // attempts, not deliveries

		if err := p.link.Send([]byte(line)); err != nil {
			p.logger.Warn("transmission failed", slog.String("error", err.Error()))
		}
	}

	frame, err := p.link.TryReceive(p.receiveTimeout)
	if err != nil {
		p.logger.Warn("uplink poll failed", slog.String("error", err.Error()))
		return
	}
	if frame != nil {
		p.sink.Handle(frame)
	}
}

// gather polls every channel once. It returns the assembled record and
// whether every required channel produced a reading; an incomplete
// cycle publishes nothing rather than a partial or zero-filled record.
func (p *Publisher) gather() (wire.Record, bool) {
	complete := true

	read := func(c sensors.Channel) float64 {
		v, err := c.Read()
		if err != nil {
			p.logger.Warn("channel absent", slog.String("channel", c.Name()), slog.String("error", err.Error()))
			complete = false
			return 0
		}
		return v
	}

	record := wire.Record{
		ElapsedSeconds: time.Since(p.start).Seconds(),
		Humidity:       read(p.channels.Humidity),
		Temperature:    read(p.channels.Temperature),
		Pressure:       read(p.channels.Pressure),
		Altitude:       read(p.channels.Altitude),
		GasPPM:         read(p.channels.Gas),
	}

	gyro, accel, ok := p.readIMU()
	if !ok {
		complete = false
	}
	record.GyroX, record.GyroY, record.GyroZ = gyro.X, gyro.Y, gyro.Z
	record.AccelX, record.AccelY, record.AccelZ = accel.X, accel.Y, accel.Z

	return record, complete
}

// readIMU polls the gyroscope and accelerometer. A full all-zero
// reading set is the known stale-register signature of the device, so
// it triggers a driver reinit and the readings are discarded for this
// cycle. A genuine all-zero reading is indistinguishable from the
// fault, so this heuristic can false-positive; it deliberately stays a
// skip-and-reinit, never a hard failure.
func (p *Publisher) readIMU() (gyro, accel sensors.Vec3, ok bool) {
	gyro, err := p.imu.Gyro()
	if err != nil {
		p.logger.Warn("channel absent", slog.String("channel", "gyro"), slog.String("error", err.Error()))
		return sensors.Vec3{}, sensors.Vec3{}, false
	}

	accel, err = p.imu.Accel()
	if err != nil {
		p.logger.Warn("channel absent", slog.String("channel", "accel"), slog.String("error", err.Error()))
		return sensors.Vec3{}, sensors.Vec3{}, false
	}

	if gyro.IsZero() && accel.IsZero() {
		p.logger.Warn("all-zero inertial readings, reinitializing driver")
		if err = p.imu.Reinit(); err != nil {
			p.logger.Error("inertial driver reinit failed", slog.String("error", err.Error()))
		}
		return sensors.Vec3{}, sensors.Vec3{}, false
	}

	return gyro, accel, true
}
