package relay

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nrs-cansat/telemetry/internal/radio"
	"github.com/nrs-cansat/telemetry/internal/serlink"
)

// faultyRadio fails every receive immediately, counting the attempts.
type faultyRadio struct {
	receives atomic.Int64
}

func (f *faultyRadio) Send([]byte) error { return nil }

func (f *faultyRadio) TryReceive(time.Duration) ([]byte, error) {
	f.receives.Add(1)
	return nil, errors.New("link torn down")
}

func (f *faultyRadio) RSSI() int    { return 0 }
func (f *faultyRadio) Close() error { return nil }

func startRelay(t *testing.T, r *Relay) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("relay did not stop within one receive timeout")
		}
	})
	return cancel
}

func waitLine(t *testing.T, link serlink.Link) []byte {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		line, err := link.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine() error: %v", err)
		}
		if line != nil {
			return line
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no line arrived")
	return nil
}

func TestRelayUplinkVerbatim(t *testing.T) {
	groundRadio, flightRadio := radio.NewMemoryLinkPair()
	groundWired, hostWired := serlink.NewLoopbackPair()

	r := New(groundRadio, groundWired, WithReceiveTimeout(20*time.Millisecond))
	startRelay(t, r)

	// Host sends a command line; the flight radio must see the exact
	// byte string with no transformation applied.
	if err := hostWired.Write([]byte("45,-30")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	frame, err := flightRadio.TryReceive(2 * time.Second)
	if err != nil {
		t.Fatalf("TryReceive() error: %v", err)
	}
	if string(frame) != "45,-30" {
		t.Errorf("uplink frame = %q, want %q", frame, "45,-30")
	}
}

func TestRelayDownlinkVerbatim(t *testing.T) {
	groundRadio, flightRadio := radio.NewMemoryLinkPair()
	groundWired, hostWired := serlink.NewLoopbackPair()

	r := New(groundRadio, groundWired, WithReceiveTimeout(20*time.Millisecond))
	startRelay(t, r)

	line := "12.34,55.0,21.3,1013.25,135.0,420.7,0.001,-0.002,0.150,0.012,0.034,9.801"
	if err := flightRadio.Send([]byte(line)); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if got := waitLine(t, hostWired); string(got) != line {
		t.Errorf("downlink line = %q, want %q", got, line)
	}
}

func TestRelayDownlinkBacksOffOnReceiveFault(t *testing.T) {
	// A broken link fails instantly instead of waiting out the receive
	// timeout; the loop must pace its retries by the same timeout
	// rather than spinning.
	faulty := &faultyRadio{}
	groundWired, _ := serlink.NewLoopbackPair()

	r := New(faulty, groundWired, WithReceiveTimeout(20*time.Millisecond))
	startRelay(t, r)

	time.Sleep(200 * time.Millisecond)

	// 200ms of 20ms-paced retries is ~10 attempts; a spinning loop
	// would rack up thousands.
	if got := faulty.receives.Load(); got > 25 {
		t.Errorf("faulty link polled %d times in 200ms, want paced retries", got)
	}
}

func TestRelayDownlinkFaultDoesNotStopUplink(t *testing.T) {
	groundRadio, flightRadio := radio.NewMemoryLinkPair()
	groundWired, hostWired := serlink.NewLoopbackPair()
	groundWired.WriteErr = errors.New("host link fault")

	r := New(groundRadio, groundWired, WithReceiveTimeout(20*time.Millisecond))
	startRelay(t, r)

	// Downlink forwards fail, but uplink must keep working.
	_ = flightRadio.Send([]byte("1.00,2.0,3.0,4.00,5.0,6.0,7.000,8.000,9.000,10.000,11.000,12.000"))

	if err := hostWired.Write([]byte("CALIBRATE")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	frame, err := flightRadio.TryReceive(2 * time.Second)
	if err != nil {
		t.Fatalf("TryReceive() error: %v", err)
	}
	if string(frame) != "CALIBRATE" {
		t.Errorf("uplink frame = %q, want %q", frame, "CALIBRATE")
	}
}
