package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/nrs-cansat/telemetry/internal/wire"
)

// CSVLog is the append-only CSV flight log. The file and its fixed
// header row are created at open time; rows are written only while the
// operator has storage enabled. Records arriving while disabled are
// displayed elsewhere but never logged.
type CSVLog struct {
	path string

	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer

	enabled atomic.Bool
	rows    atomic.Uint64
}

// OpenCSVLog creates (or truncates) the log file and writes the header
// row. Logging starts disabled; the operator toggles it explicitly.
func OpenCSVLog(path string) (*CSVLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating csv log %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err = writer.Write(wire.Header()); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("flushing csv header: %w", err)
	}

	return &CSVLog{path: path, file: file, writer: writer}, nil
}

// Start enables row writes.
func (l *CSVLog) Start() { l.enabled.Store(true) }

// Stop disables row writes. Already-written rows remain.
func (l *CSVLog) Stop() { l.enabled.Store(false) }

// Enabled reports whether rows are currently being written.
func (l *CSVLog) Enabled() bool { return l.enabled.Load() }

// Rows returns the number of data rows written so far.
func (l *CSVLog) Rows() uint64 { return l.rows.Load() }

// Write appends one record row if logging is enabled.
func (l *CSVLog) Write(r wire.Record) error {
	if !l.enabled.Load() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("csv log %s is closed", l.path)
	}

	if err := l.writer.Write(r.Strings()); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}
	l.rows.Add(1)
	return nil
}

// Flush pushes buffered rows to the OS.
func (l *CSVLog) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("flushing csv log: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	l.writer.Flush()
	err := l.writer.Error()

	if cErr := l.file.Close(); cErr != nil && err == nil {
		err = cErr
	}
	l.file = nil
	return err
}
