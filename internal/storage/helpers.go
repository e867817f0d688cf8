package storage

import (
	"database/sql"

	"github.com/nrs-cansat/telemetry/internal/wire"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func recordArgs(sessionID int64, rec wire.Received) []any {
	var rssi sql.NullInt64
	if rec.RSSI != nil {
		rssi.Int64 = int64(*rec.RSSI)
		rssi.Valid = true
	}

	r := rec.Record
	return []any{
		sessionID,
		rec.ReceivedAt.UTC(),
		r.ElapsedSeconds,
		r.Humidity,
		r.Temperature,
		r.Pressure,
		r.Altitude,
		r.GasPPM,
		r.GyroX,
		r.GyroY,
		r.GyroZ,
		r.AccelX,
		r.AccelY,
		r.AccelZ,
		rssi,
	}
}
