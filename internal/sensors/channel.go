// Package sensors defines the measurement channel boundary of the
// flight unit. Physical drivers (register maps, calibration, unit
// conversion) live outside this module; a channel only promises a
// numeric value or a typed fault, one reading per publisher cycle.
package sensors

import "fmt"

// Channel is one independent measurement source polled once per cycle.
type Channel interface {
	// Name identifies the channel in logs and faults.
	Name() string

	// Read returns the current reading, or a ChannelFault. A fault
	// means the channel is absent for this cycle only; the publisher
	// never aborts a cycle on it.
	Read() (float64, error)
}

// ChannelFault wraps a sensor-boundary failure with the channel it
// came from, so callers can tell absent-this-cycle apart from a wiring
// mistake without parsing log lines.
type ChannelFault struct {
	Channel string
	Cause   error
}

func (e *ChannelFault) Error() string {
	return fmt.Sprintf("sensors: channel %s: %v", e.Channel, e.Cause)
}

func (e *ChannelFault) Unwrap() error { return e.Cause }

// Fault builds a ChannelFault for the named channel.
func Fault(channel string, cause error) *ChannelFault {
	return &ChannelFault{Channel: channel, Cause: cause}
}

// Vec3 is a three-axis inertial reading.
type Vec3 struct {
	X, Y, Z float64
}

// IsZero reports whether all three axes read exactly zero, the known
// stale-register failure signature of the inertial device.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IMU is the combined gyroscope/accelerometer boundary. Reinit tears
// the driver down and brings it back up after a suspected stale-reading
// fault.
type IMU interface {
	Gyro() (Vec3, error)
	Accel() (Vec3, error)
	Reinit() error
}
