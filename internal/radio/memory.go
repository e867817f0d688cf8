package radio

import (
	"fmt"
	"sync/atomic"
	"time"
)

// MemoryLink is an in-memory Link backed by channels. Two linked
// instances form a bidirectional channel pair, substituting for the
// physical transceiver in tests and loopback runs.
type MemoryLink struct {
	tx, rx chan []byte
	rssi   atomic.Int64
	closed atomic.Bool

	// SendErr, when set, makes every Send fail. Used by tests to
	// exercise transport-fault handling.
	SendErr error
}

// NewMemoryLinkPair returns two links wired back to back: frames sent
// on one are received on the other.
func NewMemoryLinkPair() (*MemoryLink, *MemoryLink) {
	ab := make(chan []byte, rxQueueLen)
	ba := make(chan []byte, rxQueueLen)

	a := &MemoryLink{tx: ab, rx: ba}
	b := &MemoryLink{tx: ba, rx: ab}
	return a, b
}

func (l *MemoryLink) Send(p []byte) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if l.SendErr != nil {
		return l.SendErr
	}
	if len(p) > MaxFrameLen {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(p))
	}

	frame := append([]byte(nil), p...)
	select {
	case l.tx <- frame:
		return nil
	default:
		return fmt.Errorf("radio: peer queue full, frame lost")
	}
}

func (l *MemoryLink) TryReceive(timeout time.Duration) ([]byte, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p := <-l.rx:
		return p, nil
	case <-timer.C:
		return nil, nil
	}
}

// SetRSSI fixes the value reported by RSSI. Tests use it to simulate
// link quality readings.
func (l *MemoryLink) SetRSSI(rssi int) {
	l.rssi.Store(int64(rssi))
}

func (l *MemoryLink) RSSI() int {
	return int(l.rssi.Load())
}

func (l *MemoryLink) Close() error {
	l.closed.Store(true)
	return nil
}
