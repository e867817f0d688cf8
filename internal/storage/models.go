package storage

import (
	"time"

	"github.com/nrs-cansat/telemetry/internal/wire"
)

// FlightSession is one recorded receiver run. Each session captures
// where the data came from (serial port or dummy mode) and a snapshot
// of the receiver configuration.
type FlightSession struct {
	ID        int64
	StartTime time.Time
	Source    string  // "serial" or "dummy"
	Config    *string // Optional configuration snapshot in JSON
}

// FlightRecord is one persisted telemetry record with reception
// metadata.
type FlightRecord struct {
	ID         int64
	SessionID  int64
	ReceivedAt time.Time
	Record     wire.Record
	RSSI       *int // Signal strength at reception, if the link reported one
}
