package receiver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nrs-cansat/telemetry/internal/serlink"
	"github.com/nrs-cansat/telemetry/internal/wire"
)

const defaultDebounce = 500 * time.Millisecond

// ServoRange is the deployment's servo angle range. The wire codec
// does not enforce it; the sender clamps before encoding.
type ServoRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// WithCommandLogger sets the logger for the sender.
func WithCommandLogger(logger *slog.Logger) func(*CommandSender) {
	return func(s *CommandSender) {
		s.logger = logger.With(slog.String("component", "commands"))
	}
}

// WithDebounce sets the debounce window. While a control is being
// dragged, at most one command per window reaches the wire.
func WithDebounce(d time.Duration) func(*CommandSender) {
	return func(s *CommandSender) {
		s.debounce = d
	}
}

// WithServoRange sets the angle clamp range.
func WithServoRange(r ServoRange) func(*CommandSender) {
	return func(s *CommandSender) {
		s.servoRange = r
	}
}

// CommandSender serializes operator commands onto the wired link. Servo
// angle updates are debounced: a command goes out only when the settled
// value differs from the last value actually sent, so dragging a
// control does not flood the half-duplex channel.
type CommandSender struct {
	wired serlink.Link

	debounce   time.Duration
	servoRange ServoRange
	logger     *slog.Logger

	mu       sync.Mutex
	desired  *wire.Command
	lastSent *wire.Command
}

// NewCommandSender creates a sender writing to the given wired link.
func NewCommandSender(wired serlink.Link, options ...func(*CommandSender)) *CommandSender {
	s := CommandSender{
		wired:      wired,
		debounce:   defaultDebounce,
		servoRange: ServoRange{Min: -90, Max: 90},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// SetAngles records the operator's latest servo angles. The debounce
// worker decides when (and whether) they reach the wire.
func (s *CommandSender) SetAngles(servo1, servo2 int) error {
	servo1, err := wire.ClampAngle(servo1, s.servoRange.Min, s.servoRange.Max)
	if err != nil {
		return err
	}
	servo2, err = wire.ClampAngle(servo2, s.servoRange.Min, s.servoRange.Max)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.desired = &wire.Command{Servo1: servo1, Servo2: servo2}
	s.mu.Unlock()
	return nil
}

// SendToken writes a non-servo control token immediately. Tokens are
// opaque pass-through strings, distinguished from servo commands on
// the flight side purely by failing the two-integer check.
func (s *CommandSender) SendToken(token string) error {
	if err := s.wired.Write([]byte(token)); err != nil {
		return fmt.Errorf("sending control token: %w", err)
	}
	s.logger.Info("control token sent", slog.String("token", token))
	return nil
}

// Run flushes debounced commands until the context is cancelled.
func (s *CommandSender) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Flush()
		}
	}
}

// Flush sends the pending command if it differs from the last one
// actually sent. Exposed so tests can step the debounce cycle without
// real time.
func (s *CommandSender) Flush() {
	s.mu.Lock()
	desired := s.desired
	last := s.lastSent
	s.mu.Unlock()

	if desired == nil || (last != nil && *desired == *last) {
		return
	}

	if err := s.wired.Write([]byte(wire.EncodeCommand(*desired))); err != nil {
		// Leave lastSent unchanged; the next window retries naturally.
		s.logger.Warn("command send failed", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	s.lastSent = desired
	s.mu.Unlock()

	s.logger.Info("command sent",
		slog.Int("servo1", desired.Servo1),
		slog.Int("servo2", desired.Servo2))
}
