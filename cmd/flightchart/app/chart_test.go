package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/nrs-cansat/telemetry/internal/storage"
	"github.com/nrs-cansat/telemetry/internal/wire"
)

func sampleRecords() []*storage.FlightRecord {
	base := time.Date(2026, 5, 14, 10, 0, 0, 0, time.UTC)
	rssi := -80

	recs := make([]*storage.FlightRecord, 0, 4)
	for i, alt := range []float64{10, 50, 120, 90} {
		recs = append(recs, &storage.FlightRecord{
			ID:         int64(i + 1),
			SessionID:  1,
			ReceivedAt: base.Add(time.Duration(i) * 500 * time.Millisecond),
			Record: wire.Record{
				ElapsedSeconds: float64(i) * 0.5,
				Temperature:    21.5,
				Altitude:       alt,
			},
			RSSI: &rssi,
		})
	}
	return recs
}

func TestChartDataAccumulation(t *testing.T) {
	data := NewChartData([]string{"altitude", "temperature"})
	for _, rec := range sampleRecords() {
		data.Update(rec)
	}

	if got := data.Count(); got != 4 {
		t.Fatalf("got %d samples, want 4", got)
	}
	if data.TimeMin() != 0 || data.TimeMax() != 1.5 {
		t.Fatalf("got flight time range [%v, %v], want [0, 1.5]", data.TimeMin(), data.TimeMax())
	}

	alt := data.Series[0]
	if alt.Min != 10 || alt.Max != 120 {
		t.Fatalf("got altitude range [%v, %v], want [10, 120]", alt.Min, alt.Max)
	}

	rssi, ok := data.AverageRSSI()
	if !ok || rssi != -80 {
		t.Fatalf("got average RSSI (%v, %v), want (-80, true)", rssi, ok)
	}
}

func TestRenderWithoutAnnotations(t *testing.T) {
	data := NewChartData([]string{"altitude", "temperature"})
	for _, rec := range sampleRecords() {
		data.Update(rec)
	}

	renderer := NewChartRenderer(RenderConfig{NoAnnotations: true})
	img, err := renderer.Render(data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	wantWidth := defaultLeftBorder + panelWidth + defaultRightBorder
	if got := img.Bounds().Dx(); got != wantWidth {
		t.Fatalf("got image width %d, want %d", got, wantWidth)
	}

	// The polyline must have left its color inside the first panel.
	found := false
	for y := defaultTopBorder; y < defaultTopBorder+panelHeight && !found; y++ {
		for x := defaultLeftBorder; x < defaultLeftBorder+panelWidth; x++ {
			if img.RGBAAt(x, y) == lineColor {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("no series line drawn in the first panel")
	}
}

func TestFlatSeriesRendering(t *testing.T) {
	// A constant-valued series must render without dividing by zero.
	data := NewChartData([]string{"temperature"})
	for _, rec := range sampleRecords() {
		data.Update(rec)
	}

	renderer := NewChartRenderer(RenderConfig{NoAnnotations: true})
	if _, err := renderer.Render(data); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestConfigLogLevel(t *testing.T) {
	c := NewConfig()
	if got := c.LogLevel(); got != slog.LevelInfo {
		t.Fatalf("LogLevel() = %v, want %v", got, slog.LevelInfo)
	}

	c.Verbose = true
	if got := c.LogLevel(); got != slog.LevelDebug {
		t.Fatalf("verbose LogLevel() = %v, want %v", got, slog.LevelDebug)
	}
}

func TestParseSeries(t *testing.T) {
	names, err := parseSeries("Altitude, ppm,gyro-z")
	if err != nil {
		t.Fatalf("parseSeries: %v", err)
	}
	want := []string{"altitude", "ppm", "gyro-z"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("got series %v, want %v", names, want)
		}
	}

	if _, err = parseSeries("altitude,bogus"); err == nil {
		t.Fatal("unknown series name must be rejected")
	}
	if _, err = parseSeries(" , "); err == nil {
		t.Fatal("empty series list must be rejected")
	}
}
