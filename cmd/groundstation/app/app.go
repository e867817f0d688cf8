package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nrs-cansat/telemetry/internal/receiver"
	"github.com/nrs-cansat/telemetry/internal/serlink"
	"github.com/nrs-cansat/telemetry/internal/storage"
	"github.com/nrs-cansat/telemetry/internal/wire"
)

const (
	flightDBFile       = "flights.db"
	defaultBatchSize   = 50
	displayEveryNth    = 20
	batchFlushInterval = time.Second
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	source, wired := openSource(config, logger)
	if wired != nil {
		defer wired.Close()
	}

	if err := os.MkdirAll(config.Storage.DataDirectory, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	store := storage.NewFlightStore(filepath.Join(config.Storage.DataDirectory, flightDBFile))
	defer store.Close()

	sessionID, err := store.CreateSession(ctx, source.Mode(), config)
	if err != nil {
		return fmt.Errorf("failed to create recording session: %w", err)
	}
	logger.Info("recording session started",
		slog.Int64("sessionId", sessionID),
		slog.String("source", source.Mode()))

	csvPath := filepath.Join(config.Storage.DataDirectory,
		fmt.Sprintf("telemetry_%s.csv", time.Now().Format("20060102_150405")))
	csvLog, err := storage.OpenCSVLog(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open csv log: %w", err)
	}
	defer csvLog.Close()

	if config.Storage.CSVAutoStart {
		csvLog.Start()
		logger.Info("csv logging enabled at startup", slog.String("path", csvPath))
	} else {
		logger.Info("csv log ready, logging disabled", slog.String("path", csvPath))
	}

	batcher := newBatchWriter(store, sessionID, config.Storage.BatchSize, logger)

	pipeline := receiver.NewPipeline(source,
		receiver.WithLogger(logger),
		receiver.WithQueueLen(config.Pipeline.QueueLen),
		receiver.WithPollInterval(config.Pipeline.PollInterval.Or(10*time.Millisecond)),
	)
	pipeline.Register(newDisplaySink(logger))
	pipeline.Register(receiver.ConsumerFunc(func(rec wire.Received) {
		if err := csvLog.Write(rec.Record); err != nil {
			logger.Warn("csv write failed", slog.String("error", err.Error()))
		}
	}))
	pipeline.Register(batcher)

	var sender *receiver.CommandSender
	if wired != nil {
		sender = receiver.NewCommandSender(wired,
			receiver.WithCommandLogger(logger),
			receiver.WithDebounce(config.Commands.Debounce.Or(500*time.Millisecond)),
			receiver.WithServoRange(config.Commands.ServoRange),
		)
	} else {
		logger.Warn("no wired link: servo commands and control tokens are unavailable")
	}

	var wg sync.WaitGroup

	if sender != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sender.Run(ctx)
		}()
	}

	// The console reads stdin, which cannot be interrupted; it is not
	// joined on shutdown.
	go runConsole(ctx, os.Stdin, console{
		csvLog: csvLog,
		sender: sender,
		logger: logger,
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		flushBatches(ctx, batcher)
	}()

	err = pipeline.Run(ctx)

	wg.Wait()
	batcher.flush(context.Background())

	if fErr := csvLog.Flush(); fErr != nil {
		logger.Warn("csv flush failed", slog.String("error", fErr.Error()))
	}
	logger.Info("recording session finished",
		slog.Int64("sessionId", sessionID),
		slog.Uint64("csvRows", csvLog.Rows()),
		slog.Uint64("stored", batcher.Stored()))

	if err == context.Canceled {
		return nil
	}
	return err
}

// openSource opens the configured serial port, or falls back to the
// synthetic dummy source when no port is available, so the station can
// run without hardware. The wired link is nil in dummy mode.
func openSource(config *Config, logger *slog.Logger) (receiver.Source, serlink.Link) {
	link, err := serlink.Open(config.Serial)
	if err == nil {
		logger.Info("serial link up",
			slog.String("port", config.Serial.Port),
			slog.Int("baudRate", config.Serial.BaudRate))
		return receiver.SerialSource{Link: link}, link
	}

	logger.Warn("failed to open serial port, switching to dummy mode",
		slog.String("port", config.Serial.Port),
		slog.String("error", err.Error()))

	if ports, pErr := serlink.ListPorts(); pErr == nil {
		logger.Warn("available serial ports", slog.String("ports", strings.Join(ports, ", ")))
	}

	return receiver.NewDummySource(config.Pipeline.DummyInterval.Or(500 * time.Millisecond)), nil
}

// flushBatches periodically pushes buffered records to sqlite so a
// crash loses at most one interval of data.
func flushBatches(ctx context.Context, b *batchWriter) {
	ticker := time.NewTicker(batchFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.flush(ctx)
		}
	}
}

// displaySink is the stand-in presentation consumer: every record at
// debug level, a compact status line every Nth record.
type displaySink struct {
	logger *slog.Logger
	count  uint64
}

func newDisplaySink(logger *slog.Logger) *displaySink {
	return &displaySink{logger: logger.With(slog.String("component", "display"))}
}

func (d *displaySink) Consume(rec wire.Received) {
	d.count++

	d.logger.Debug("record", slog.String("line", wire.EncodeRecord(rec.Record)))

	if d.count%displayEveryNth == 0 {
		d.logger.Info("telemetry",
			slog.Uint64("records", d.count),
			slog.Float64("time", rec.Record.ElapsedSeconds),
			slog.Float64("altitude", rec.Record.Altitude),
			slog.Float64("temperature", rec.Record.Temperature),
			slog.Float64("pressure", rec.Record.Pressure))
	}
}

// batchWriter buffers records and writes them to the flight store in
// batches, keeping sqlite churn off the dispatch worker's hot path.
type batchWriter struct {
	store     *storage.FlightStore
	sessionID int64
	batchSize int
	logger    *slog.Logger

	mu     sync.Mutex
	buffer []wire.Received
	stored uint64
}

func newBatchWriter(store *storage.FlightStore, sessionID int64, batchSize int, logger *slog.Logger) *batchWriter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &batchWriter{
		store:     store,
		sessionID: sessionID,
		batchSize: batchSize,
		logger:    logger.With(slog.String("component", "store")),
	}
}

func (b *batchWriter) Consume(rec wire.Received) {
	b.mu.Lock()
	b.buffer = append(b.buffer, rec)
	full := len(b.buffer) >= b.batchSize
	b.mu.Unlock()

	if full {
		b.flush(context.Background())
	}
}

func (b *batchWriter) flush(ctx context.Context) {
	b.mu.Lock()
	batch := b.buffer
	b.buffer = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if err := b.store.StoreRecords(ctx, b.sessionID, batch); err != nil {
		b.logger.Error("failed to store records",
			slog.Int("count", len(batch)),
			slog.String("error", err.Error()))
		return
	}

	b.mu.Lock()
	b.stored += uint64(len(batch))
	b.mu.Unlock()
}

// Stored returns the number of records committed to the store.
func (b *batchWriter) Stored() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stored
}
