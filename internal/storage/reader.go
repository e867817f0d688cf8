package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const defaultBatchSize = 500

// WithBatchSize sets how many records a reader fetches per page.
func WithBatchSize(n int) func(*RecordReader) {
	return func(r *RecordReader) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// RecordReader iterates a session's records in insertion order,
// fetching one page at a time so large flight logs never load wholesale
// into memory. Each reader instance must be used from a single
// goroutine.
type RecordReader struct {
	db        *sql.DB
	sessionID int64
	batchSize int

	buffer  []FlightRecord
	pos     int
	lastID  int64
	done    bool
	current *FlightRecord
	err     error
}

func newRecordReader(db *sql.DB, sessionID int64, opts ...func(*RecordReader)) *RecordReader {
	r := RecordReader{
		db:        db,
		sessionID: sessionID,
		batchSize: defaultBatchSize,
	}

	for _, opt := range opts {
		opt(&r)
	}

	return &r
}

// Next advances to the next record. It returns false when the session
// is exhausted or an error occurred; check Err after the loop.
func (r *RecordReader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}

	if r.pos >= len(r.buffer) {
		if r.done {
			return false
		}
		if r.err = r.fetch(ctx); r.err != nil {
			return false
		}
		if len(r.buffer) == 0 {
			return false
		}
	}

	r.current = &r.buffer[r.pos]
	r.pos++
	return true
}

// Current returns the record Next advanced to.
func (r *RecordReader) Current() *FlightRecord {
	return r.current
}

// Err returns the first error encountered during iteration.
func (r *RecordReader) Err() error {
	return r.err
}

// Close releases the reader. The underlying connection belongs to the
// store and stays open.
func (r *RecordReader) Close() error {
	r.buffer = nil
	r.done = true
	return nil
}

func (r *RecordReader) fetch(ctx context.Context) (err error) {
	rows, err := r.db.QueryContext(ctx, selectRecordsSQL, r.sessionID, r.lastID, r.batchSize)
	if err != nil {
		return fmt.Errorf("querying records: %w", err)
	}
	defer closeWithError(rows, &err)

	r.buffer = r.buffer[:0]
	r.pos = 0

	for rows.Next() {
		var rec FlightRecord
		var rssi sql.NullInt64

		if err = rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.ReceivedAt,
			&rec.Record.ElapsedSeconds,
			&rec.Record.Humidity,
			&rec.Record.Temperature,
			&rec.Record.Pressure,
			&rec.Record.Altitude,
			&rec.Record.GasPPM,
			&rec.Record.GyroX,
			&rec.Record.GyroY,
			&rec.Record.GyroZ,
			&rec.Record.AccelX,
			&rec.Record.AccelY,
			&rec.Record.AccelZ,
			&rssi,
		); err != nil {
			return fmt.Errorf("scanning record: %w", err)
		}

		if rssi.Valid {
			v := int(rssi.Int64)
			rec.RSSI = &v
		}

		r.buffer = append(r.buffer, rec)
		r.lastID = rec.ID
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating records: %w", err)
	}

	if len(r.buffer) < r.batchSize {
		r.done = true
	}
	return nil
}
