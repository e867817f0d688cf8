package app

import (
	"math"
	"time"

	"github.com/nrs-cansat/telemetry/internal/storage"
	"github.com/nrs-cansat/telemetry/internal/wire"
)

// seriesExtractors maps a chartable series name to its record field.
var seriesExtractors = map[string]func(wire.Record) float64{
	"humidity":    func(r wire.Record) float64 { return r.Humidity },
	"temperature": func(r wire.Record) float64 { return r.Temperature },
	"pressure":    func(r wire.Record) float64 { return r.Pressure },
	"altitude":    func(r wire.Record) float64 { return r.Altitude },
	"ppm":         func(r wire.Record) float64 { return r.GasPPM },
	"gyro-x":      func(r wire.Record) float64 { return r.GyroX },
	"gyro-y":      func(r wire.Record) float64 { return r.GyroY },
	"gyro-z":      func(r wire.Record) float64 { return r.GyroZ },
	"accel-x":     func(r wire.Record) float64 { return r.AccelX },
	"accel-y":     func(r wire.Record) float64 { return r.AccelY },
	"accel-z":     func(r wire.Record) float64 { return r.AccelZ },
}

// seriesUnits labels each series in the panel annotations.
var seriesUnits = map[string]string{
	"humidity":    "%",
	"temperature": "°C",
	"pressure":    "hPa",
	"altitude":    "m",
	"ppm":         "ppm",
	"gyro-x":      "°/s",
	"gyro-y":      "°/s",
	"gyro-z":      "°/s",
	"accel-x":     "m/s²",
	"accel-y":     "m/s²",
	"accel-z":     "m/s²",
}

func defaultSeries() []string {
	return []string{"altitude", "temperature", "pressure", "humidity", "ppm"}
}

// Series is one telemetry quantity sampled over flight time.
type Series struct {
	Name   string
	Unit   string
	Values []float64
	Min    float64
	Max    float64

	extract func(wire.Record) float64
}

func newSeries(name string) *Series {
	return &Series{
		Name:    name,
		Unit:    seriesUnits[name],
		Min:     math.Inf(1),
		Max:     math.Inf(-1),
		extract: seriesExtractors[name],
	}
}

func (s *Series) add(r wire.Record) {
	v := s.extract(r)
	s.Values = append(s.Values, v)
	s.Min = math.Min(s.Min, v)
	s.Max = math.Max(s.Max, v)
}

// ChartData accumulates a session's records into the series selected
// for charting, keeping the flight-time axis alongside.
type ChartData struct {
	Series []*Series

	Times     []float64 // Flight seconds per sample, for the X axis
	TimeStart time.Time
	TimeEnd   time.Time
	RSSIKnown int
	RSSISum   int64
}

func NewChartData(names []string) *ChartData {
	d := ChartData{}
	for _, name := range names {
		d.Series = append(d.Series, newSeries(name))
	}
	return &d
}

// Update folds one stored record into every series.
func (d *ChartData) Update(rec *storage.FlightRecord) {
	d.Times = append(d.Times, rec.Record.ElapsedSeconds)
	if d.TimeStart.IsZero() {
		d.TimeStart = rec.ReceivedAt
	}
	d.TimeEnd = rec.ReceivedAt

	if rec.RSSI != nil {
		d.RSSIKnown++
		d.RSSISum += int64(*rec.RSSI)
	}

	for _, s := range d.Series {
		s.add(rec.Record)
	}
}

// Count returns the number of samples accumulated.
func (d *ChartData) Count() int {
	return len(d.Times)
}

// TimeMin and TimeMax bound the flight-time axis.
func (d *ChartData) TimeMin() float64 {
	if len(d.Times) == 0 {
		return 0
	}
	return d.Times[0]
}

func (d *ChartData) TimeMax() float64 {
	if len(d.Times) == 0 {
		return 0
	}
	return d.Times[len(d.Times)-1]
}

// AverageRSSI returns the mean signal strength over samples that carried
// one, and whether any did.
func (d *ChartData) AverageRSSI() (float64, bool) {
	if d.RSSIKnown == 0 {
		return 0, false
	}
	return float64(d.RSSISum) / float64(d.RSSIKnown), true
}
