package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nrs-cansat/telemetry/internal/wire"
)

func TestCSVLogHeaderAndToggle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight_data.csv")

	log, err := OpenCSVLog(path)
	if err != nil {
		t.Fatalf("OpenCSVLog() error: %v", err)
	}

	record := wire.Record{
		ElapsedSeconds: 12.34,
		Humidity:       55.0,
		Temperature:    21.3,
		Pressure:       1013.25,
		Altitude:       135.0,
		GasPPM:         420.7,
		GyroX:          0.001,
		GyroY:          -0.002,
		GyroZ:          0.150,
		AccelX:         0.012,
		AccelY:         0.034,
		AccelZ:         9.801,
	}

	// Disabled at open: this record must not be persisted.
	if err = log.Write(record); err != nil {
		t.Fatalf("Write() while disabled error: %v", err)
	}

	log.Start()
	if err = log.Write(record); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	log.Stop()
	if err = log.Write(record); err != nil {
		t.Fatalf("Write() after Stop() error: %v", err)
	}

	if err = log.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log has %d lines, want header + 1 row:\n%s", len(lines), data)
	}

	wantHeader := "Time,Humidity,Temperature,Pressure,Altitude,PPM,GyroX,GyroY,GyroZ,AccX,AccY,AccZ"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}

	wantRow := "12.34,55.0,21.3,1013.25,135.0,420.7,0.001,-0.002,0.150,0.012,0.034,9.801"
	if lines[1] != wantRow {
		t.Errorf("row = %q, want %q", lines[1], wantRow)
	}

	if got := log.Rows(); got != 1 {
		t.Errorf("Rows() = %d, want 1", got)
	}
}

func TestCSVLogWriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight_data.csv")

	log, err := OpenCSVLog(path)
	if err != nil {
		t.Fatalf("OpenCSVLog() error: %v", err)
	}
	if err = log.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	log.Start()
	if err = log.Write(wire.Record{}); err == nil {
		t.Error("Write() after Close() = nil error, want failure")
	}
}
