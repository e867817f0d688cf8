package wire

import "time"

const (
	// FieldCount is the fixed number of fields in a telemetry line.
	FieldCount = 12

	// Delimiter separates fields on the wire.
	Delimiter = ","
)

// Record is a single downlink telemetry measurement set. Fields appear
// on the wire in declaration order.
type Record struct {
	ElapsedSeconds float64 // Monotonic seconds since the publisher started
	Humidity       float64 // Relative humidity in %
	Temperature    float64 // Temperature in °C
	Pressure       float64 // Barometric pressure in hPa
	Altitude       float64 // Altitude in meters
	GasPPM         float64 // Gas concentration in ppm
	GyroX          float64 // Angular rate, device units per second
	GyroY          float64
	GyroZ          float64
	AccelX         float64 // Acceleration in m/s²
	AccelY         float64
	AccelZ         float64
}

// Command is a single uplink servo command.
type Command struct {
	Servo1 int
	Servo2 int
}

// Received pairs a decoded record with reception metadata. The radio
// link has no timestamps of its own, so ReceivedAt is assigned by the
// receiver when the line is decoded.
type Received struct {
	Record     Record
	ReceivedAt time.Time
	RSSI       *int // Signal strength of the carrying frame, if known
}

// Header returns the canonical CSV header row for persisted records.
func Header() []string {
	return []string{
		"Time", "Humidity", "Temperature", "Pressure", "Altitude", "PPM",
		"GyroX", "GyroY", "GyroZ", "AccX", "AccY", "AccZ",
	}
}
