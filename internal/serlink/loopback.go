package serlink

import (
	"sync"
	"sync/atomic"
)

// Loopback is an in-memory Link. Lines written on one end are read on
// the other, substituting for a physical serial cable in tests.
type Loopback struct {
	peer   *Loopback
	mu     sync.Mutex
	queue  [][]byte
	closed atomic.Bool

	// WriteErr, when set, makes every Write fail. Used by tests to
	// exercise forward-fault handling.
	WriteErr error
}

// NewLoopbackPair returns two links wired back to back.
func NewLoopbackPair() (*Loopback, *Loopback) {
	a := &Loopback{}
	b := &Loopback{}
	a.peer = b
	b.peer = a
	return a, b
}

func (l *Loopback) ReadLine() ([]byte, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, nil
	}

	line := l.queue[0]
	l.queue = l.queue[1:]
	return line, nil
}

func (l *Loopback) Write(p []byte) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if l.WriteErr != nil {
		return l.WriteErr
	}

	line := append([]byte(nil), p...)
	l.peer.mu.Lock()
	l.peer.queue = append(l.peer.queue, line)
	l.peer.mu.Unlock()
	return nil
}

func (l *Loopback) Close() error {
	l.closed.Store(true)
	return nil
}
