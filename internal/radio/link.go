// Package radio abstracts the half-duplex radio channel shared by the
// flight and ground units. The physical transceiver is an external
// collaborator; a Link only promises a best-effort frame send, a
// bounded-timeout receive poll, and the last frame's signal strength.
package radio

import (
	"errors"
	"time"
)

// MaxFrameLen is the largest frame payload the link accepts. It matches
// the RFM9x family's native packet size; exceeding it is a caller
// error, not something the link recovers from.
const MaxFrameLen = 252

// ErrFrameTooLarge is returned by Send when the payload exceeds
// MaxFrameLen.
var ErrFrameTooLarge = errors.New("radio: frame exceeds maximum length")

// ErrClosed is returned by operations on a closed link.
var ErrClosed = errors.New("radio: link is closed")

// Link is a byte-oriented half-duplex radio channel.
type Link interface {
	// Send attempts one best-effort transmission. No acknowledgement is
	// awaited and no retry is scheduled; a transport fault surfaces as
	// an error for the caller to log.
	Send(p []byte) error

	// TryReceive blocks for at most timeout waiting for one inbound
	// frame. It returns (nil, nil) when nothing arrived within the
	// window; absence is the expected common case on every poll.
	TryReceive(timeout time.Duration) ([]byte, error)

	// RSSI reports the signal strength of the last received frame. It
	// never blocks and has no side effects.
	RSSI() int

	Close() error
}
