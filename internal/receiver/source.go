package receiver

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nrs-cansat/telemetry/internal/wire"
)

// Source yields raw telemetry lines. (nil, nil) means nothing is
// available on this poll.
type Source interface {
	ReadLine() ([]byte, error)

	// Mode names the operating mode ("serial" or "dummy") so logs and
	// session metadata always show whether data is real or synthetic.
	Mode() string
}

// SerialSource adapts a wired link into a Source.
type SerialSource struct {
	Link interface {
		ReadLine() ([]byte, error)
	}
}

func (s SerialSource) ReadLine() ([]byte, error) { return s.Link.ReadLine() }

func (s SerialSource) Mode() string { return "serial" }

// DummySource synthesizes placeholder telemetry lines at a fixed rate.
// It is the fallback operating mode for development without hardware
// and is never mixed with real data: a pipeline runs either a serial
// source or a dummy source, flagged by Mode.
type DummySource struct {
	interval time.Duration

	mu    sync.Mutex
	rng   *rand.Rand
	next  time.Time
	start time.Time
}

// NewDummySource creates a synthetic source emitting one line per
// interval.
func NewDummySource(interval time.Duration) *DummySource {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	now := time.Now()
	return &DummySource{
		interval: interval,
		rng:      rand.New(rand.NewSource(now.UnixNano())),
		next:     now,
		start:    now,
	}
}

func (s *DummySource) ReadLine() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Before(s.next) {
		return nil, nil
	}
	s.next = now.Add(s.interval)

	// Random values per field, the first being the elapsed time so the
	// line shape matches a real downlink record.
	fields := make([]string, wire.FieldCount)
	fields[0] = strconv.FormatFloat(now.Sub(s.start).Seconds(), 'f', 2, 64)
	for i := 1; i < wire.FieldCount; i++ {
		fields[i] = strconv.FormatFloat(float64(s.rng.Intn(101)), 'f', 1, 64)
	}
	return []byte(strings.Join(fields, wire.Delimiter)), nil
}

func (s *DummySource) Mode() string { return "dummy" }
