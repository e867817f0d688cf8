// Package serlink wraps the wired serial connection between the ground
// unit and the host computer. Frames are newline-terminated byte
// strings; the link does no parsing or validation of its own.
package serlink

import "errors"

// ErrClosed is returned by operations on a closed link.
var ErrClosed = errors.New("serlink: link is closed")

// Link is a line-oriented wired connection.
type Link interface {
	// ReadLine returns the next complete line without its terminator,
	// or (nil, nil) when no complete line is available within the
	// link's poll window.
	ReadLine() ([]byte, error)

	// Write sends p followed by a line terminator.
	Write(p []byte) error

	Close() error
}
