// Package receiver implements the desktop side of the telemetry link:
// line acquisition and decoding on one worker, in-order fan-out to
// consumers on another, and debounced command transmission back up the
// wire. The presentation layer is a consumer like any other; nothing
// here knows about rendering.
package receiver

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nrs-cansat/telemetry/internal/wire"
)

const (
	defaultQueueLen     = 64
	defaultPollInterval = 10 * time.Millisecond
)

// Consumer accepts decoded records. Consumers are invoked sequentially
// for each record, in registration order, on the dispatch worker.
type Consumer interface {
	Consume(rec wire.Received)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(rec wire.Received)

func (f ConsumerFunc) Consume(rec wire.Received) { f(rec) }

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Records    uint64 // Successfully decoded and dispatched
	Drops      uint64 // Lines dropped on decode failure
	TailDrops  uint64 // Records dropped because the queue was full
	EmptyPolls uint64 // Polls that yielded no line
}

// WithLogger sets the logger for the pipeline.
func WithLogger(logger *slog.Logger) func(*Pipeline) {
	return func(p *Pipeline) {
		p.logger = logger.With(
			slog.String("component", "pipeline"),
			slog.String("mode", p.source.Mode()),
		)
	}
}

// WithQueueLen sets the record queue capacity. When a consumer cannot
// keep up, excess records are dropped from the tail, never reordered.
// Non-positive values keep the default.
func WithQueueLen(n int) func(*Pipeline) {
	return func(p *Pipeline) {
		if n > 0 {
			p.queueLen = n
		}
	}
}

// WithPollInterval sets the idle sleep between empty source polls.
func WithPollInterval(d time.Duration) func(*Pipeline) {
	return func(p *Pipeline) {
		p.pollInterval = d
	}
}

// WithRSSI attaches an instantaneous signal-strength reading that is
// stamped onto each decoded record.
func WithRSSI(rssi func() int) func(*Pipeline) {
	return func(p *Pipeline) {
		p.rssi = rssi
	}
}

// Pipeline reads raw lines from a source, decodes them, and fans the
// records out to the registered consumers. Acquisition and dispatch
// run on separate workers joined by a bounded ordered queue, so a slow
// consumer never blocks line intake.
type Pipeline struct {
	source    Source
	consumers []Consumer

	queueLen     int
	pollInterval time.Duration
	rssi         func() int
	logger       *slog.Logger

	records    atomic.Uint64
	drops      atomic.Uint64
	tailDrops  atomic.Uint64
	emptyPolls atomic.Uint64

	wg sync.WaitGroup
}

// NewPipeline creates a pipeline over the given source.
func NewPipeline(source Source, options ...func(*Pipeline)) *Pipeline {
	p := Pipeline{
		source:       source,
		queueLen:     defaultQueueLen,
		pollInterval: defaultPollInterval,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Register adds a consumer. Must be called before Run.
func (p *Pipeline) Register(c Consumer) {
	p.consumers = append(p.consumers, c)
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Records:    p.records.Load(),
		Drops:      p.drops.Load(),
		TailDrops:  p.tailDrops.Load(),
		EmptyPolls: p.emptyPolls.Load(),
	}
}

// Run acquires and dispatches until the context is cancelled, then
// drains the queue and returns.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", slog.Int("consumers", len(p.consumers)))

	queue := make(chan wire.Received, p.queueLen)

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		defer close(queue)
		p.acquire(ctx, queue)
	}()
	go func() {
		defer p.wg.Done()
		p.dispatch(queue)
	}()

	p.wg.Wait()

	stats := p.Stats()
	p.logger.Info("pipeline stopped",
		slog.Uint64("records", stats.Records),
		slog.Uint64("drops", stats.Drops),
		slog.Uint64("tailDrops", stats.TailDrops))
	return ctx.Err()
}

// acquire reads and decodes lines until cancellation. A malformed line
// is logged and dropped; it never halts the pipeline.
func (p *Pipeline) acquire(ctx context.Context, queue chan<- wire.Received) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := p.source.ReadLine()
		if err != nil {
			p.logger.Warn("source read failed", slog.String("error", err.Error()))
			p.sleep(ctx)
			continue
		}
		if line == nil {
			p.emptyPolls.Add(1)
			p.sleep(ctx)
			continue
		}

		record, err := wire.DecodeRecord(string(line))
		if err != nil {
			p.drops.Add(1)
			p.logger.Warn("dropping undecodable line",
				slog.String("line", string(line)),
				slog.String("error", err.Error()))
			continue
		}

		rec := wire.Received{Record: record, ReceivedAt: time.Now()}
		if p.rssi != nil {
			v := p.rssi()
			rec.RSSI = &v
		}

		select {
		case queue <- rec:
		default:
			// Consumer backlog: drop from the tail, keep order intact.
			p.tailDrops.Add(1)
		}
	}
}

// dispatch delivers queued records to every consumer in registration
// order. Records arrive in acquisition order; no reordering or
// coalescing happens even under backpressure.
func (p *Pipeline) dispatch(queue <-chan wire.Received) {
	for rec := range queue {
		for _, c := range p.consumers {
			c.Consume(rec)
		}
		p.records.Add(1)
	}
}

func (p *Pipeline) sleep(ctx context.Context) {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
