// Package relay implements the ground unit: a byte-transparent bridge
// between the radio downlink and the wired serial link to the host.
// Nothing is parsed, validated, or transformed in either direction.
package relay

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nrs-cansat/telemetry/internal/radio"
	"github.com/nrs-cansat/telemetry/internal/serlink"
)

const defaultReceiveTimeout = 200 * time.Millisecond

// WithLogger sets the logger for the relay.
func WithLogger(logger *slog.Logger) func(*Relay) {
	return func(r *Relay) {
		r.logger = logger.With(slog.String("component", "relay"))
	}
}

// WithReceiveTimeout sets the downlink poll window, which bounds how
// quickly the downlink loop notices cancellation.
func WithReceiveTimeout(d time.Duration) func(*Relay) {
	return func(r *Relay) {
		r.receiveTimeout = d
	}
}

// Relay forwards frames between the radio and the wired link. The two
// directions run independently; a stall or fault in one never blocks
// the other.
type Relay struct {
	radio radio.Link
	wired serlink.Link

	receiveTimeout time.Duration
	logger         *slog.Logger
}

// New creates a relay over the given links.
func New(radioLink radio.Link, wired serlink.Link, options ...func(*Relay)) *Relay {
	r := Relay{
		radio:          radioLink,
		wired:          wired,
		receiveTimeout: defaultReceiveTimeout,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Run bridges both directions until the context is cancelled. Forward
// faults are logged and the loop continues; nothing here is fatal.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started")

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		r.runUplink(ctx)
	}()
	go func() {
		defer wg.Done()
		r.runDownlink(ctx)
	}()

	wg.Wait()
	r.logger.Info("relay stopped")
	return ctx.Err()
}

// runUplink forwards host bytes to the radio verbatim.
func (r *Relay) runUplink(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		line, err := r.wired.ReadLine()
		if err != nil {
			r.logger.Warn("uplink read failed", slog.String("error", err.Error()))
			continue
		}
		if line == nil {
			continue
		}

		if err = r.radio.Send(line); err != nil {
			r.logger.Warn("uplink forward failed", slog.String("error", err.Error()))
		}
	}
}

// runDownlink forwards radio frames to the host verbatim. The bounded
// receive poll is this loop's only suspension point.
func (r *Relay) runDownlink(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := r.radio.TryReceive(r.receiveTimeout)
		if err != nil {
			r.logger.Warn("downlink receive failed", slog.String("error", err.Error()))
			// An erroring link returns immediately, unlike an idle one;
			// back off so the loop does not spin.
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.receiveTimeout):
			}
			continue
		}
		if frame == nil {
			continue
		}

		if err = r.wired.Write(frame); err != nil {
			r.logger.Warn("downlink forward failed", slog.String("error", err.Error()))
		}
	}
}
