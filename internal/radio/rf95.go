package radio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dtn7/rf95modem-go/rf95"
)

const rxQueueLen = 16

// RF95Config selects the serial device and RF parameters for an
// rf95modem-driven transceiver.
type RF95Config struct {
	Device    string  `yaml:"device"`
	Frequency float64 `yaml:"frequency"`
	Mode      int     `yaml:"mode"`
}

// RF95Link drives an RFM95 LoRa transceiver through an rf95modem
// attached to a serial device. Inbound frames are queued by the modem's
// rx handler; frames arriving while the queue is full are dropped, the
// newest first to go, matching the fire-and-forget link contract.
type RF95Link struct {
	modem    *rf95.Modem
	rx       chan []byte
	lastRSSI atomic.Int64
	closed   atomic.Bool
}

// OpenRF95 opens the modem, applies frequency and modem mode, and
// starts queueing inbound frames.
func OpenRF95(config RF95Config) (*RF95Link, error) {
	modem, err := rf95.OpenSerial(config.Device)
	if err != nil {
		return nil, fmt.Errorf("opening rf95modem on %s: %w", config.Device, err)
	}

	if config.Frequency > 0 {
		if err = modem.Frequency(config.Frequency); err != nil {
			_ = modem.Close()
			return nil, fmt.Errorf("setting frequency %.1f: %w", config.Frequency, err)
		}
	}
	if err = modem.Mode(rf95.ModemMode(config.Mode)); err != nil {
		_ = modem.Close()
		return nil, fmt.Errorf("setting modem mode %d: %w", config.Mode, err)
	}

	l := &RF95Link{
		modem: modem,
		rx:    make(chan []byte, rxQueueLen),
	}

	modem.RegisterRxHandler(func(msg rf95.RxMessage) {
		l.lastRSSI.Store(int64(msg.Rssi))

		payload := append([]byte(nil), msg.Payload...)
		select {
		case l.rx <- payload:
		default: // queue full, drop the frame
		}
	})

	return l, nil
}

func (l *RF95Link) Send(p []byte) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if len(p) > MaxFrameLen {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(p))
	}

	if _, err := l.modem.Write(p); err != nil {
		return fmt.Errorf("transmitting %d bytes: %w", len(p), err)
	}
	return nil
}

func (l *RF95Link) TryReceive(timeout time.Duration) ([]byte, error) {
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

func (l *RF95Link) RSSI() int {
	return int(l.lastRSSI.Load())
}

func (l *RF95Link) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.modem.Close()
}
