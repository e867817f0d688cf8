package serlink

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	"go.bug.st/serial"

	"github.com/nrs-cansat/telemetry/internal/conf"
)

const readChunkSize = 256

// Config selects the serial device for a wired link.
type Config struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baudRate"`
	ReadTimeout conf.Duration `yaml:"readTimeout"`
}

// SerialLink is a Link over a physical serial port. A read timeout on
// the port bounds each ReadLine poll; bytes of an incomplete line are
// retained across polls until the terminator arrives.
type SerialLink struct {
	port    serial.Port
	pending []byte
	closed  atomic.Bool
}

// ListPorts returns the serial ports present on the system, for
// startup diagnostics when the configured port cannot be opened.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}
	return ports, nil
}

// Open opens the configured port.
func Open(config Config) (*SerialLink, error) {
	if config.BaudRate <= 0 {
		config.BaudRate = 115200
	}

	port, err := serial.Open(config.Port, &serial.Mode{BaudRate: config.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", config.Port, err)
	}

	if err = port.SetReadTimeout(config.ReadTimeout.Or(100 * time.Millisecond)); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("setting read timeout: %w", err)
	}

	return &SerialLink{port: port}, nil
}

func (l *SerialLink) ReadLine() ([]byte, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}

	if line, ok := l.takeLine(); ok {
		return line, nil
	}

	chunk := make([]byte, readChunkSize)
	n, err := l.port.Read(chunk)
	if err != nil {
		return nil, fmt.Errorf("reading serial port: %w", err)
	}
	if n == 0 {
		// Read timeout elapsed; partial bytes stay pending.
		return nil, nil
	}

	l.pending = append(l.pending, chunk[:n]...)
	if line, ok := l.takeLine(); ok {
		return line, nil
	}
	return nil, nil
}

// takeLine splits one complete line off the pending buffer.
func (l *SerialLink) takeLine() ([]byte, bool) {
	i := bytes.IndexByte(l.pending, '\n')
	if i < 0 {
		return nil, false
	}

	line := bytes.TrimRight(l.pending[:i], "\r")
	out := append([]byte(nil), line...)
	l.pending = l.pending[i+1:]
	return out, true
}

func (l *SerialLink) Write(p []byte) error {
	if l.closed.Load() {
		return ErrClosed
	}

	frame := append(append([]byte(nil), p...), '\n')
	if _, err := l.port.Write(frame); err != nil {
		return fmt.Errorf("writing serial port: %w", err)
	}
	return nil
}

func (l *SerialLink) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.port.Close()
}
