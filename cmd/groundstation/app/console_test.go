package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/nrs-cansat/telemetry/internal/receiver"
	"github.com/nrs-cansat/telemetry/internal/serlink"
	"github.com/nrs-cansat/telemetry/internal/storage"
)

func newTestConsole(t *testing.T) (console, *serlink.Loopback) {
	t.Helper()

	csvLog, err := storage.OpenCSVLog(filepath.Join(t.TempDir(), "telemetry.csv"))
	if err != nil {
		t.Fatalf("OpenCSVLog: %v", err)
	}
	t.Cleanup(func() { csvLog.Close() })

	near, far := serlink.NewLoopbackPair()
	sender := receiver.NewCommandSender(near)

	return console{
		csvLog: csvLog,
		sender: sender,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, far
}

func TestConsoleTogglesCSVLogging(t *testing.T) {
	c, _ := newTestConsole(t)

	if c.csvLog.Enabled() {
		t.Fatal("csv logging must start disabled")
	}

	c.handle("start")
	if !c.csvLog.Enabled() {
		t.Fatal("start must enable csv logging")
	}

	c.handle("stop")
	if c.csvLog.Enabled() {
		t.Fatal("stop must disable csv logging")
	}
}

func TestConsoleServoCommand(t *testing.T) {
	c, far := newTestConsole(t)

	c.handle("servo 45 -30")
	c.sender.Flush()

	line, err := far.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if got := string(line); got != "45,-30" {
		t.Fatalf("got command %q, want %q", got, "45,-30")
	}
}

func TestConsoleMalformedServoIgnored(t *testing.T) {
	c, far := newTestConsole(t)

	c.handle("servo 45")
	c.handle("servo up down")
	c.sender.Flush()

	if line, _ := far.ReadLine(); line != nil {
		t.Fatalf("malformed servo input reached the wire: %q", line)
	}
}

func TestConsoleTokenPassthrough(t *testing.T) {
	c, far := newTestConsole(t)

	c.handle("CALIBRATE")

	line, err := far.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if got := string(line); got != "CALIBRATE" {
		t.Fatalf("got token %q, want %q", got, "CALIBRATE")
	}
}

func TestConsoleWithoutWiredLink(t *testing.T) {
	c, _ := newTestConsole(t)
	c.sender = nil

	// Must not panic; commands are ignored with a warning.
	c.handle("servo 10 20")
	c.handle("CALIBRATE")
}
