package receiver

import (
	"testing"

	"github.com/nrs-cansat/telemetry/internal/serlink"
)

func readAll(t *testing.T, link *serlink.Loopback) []string {
	t.Helper()

	var lines []string
	for {
		line, err := link.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine() error: %v", err)
		}
		if line == nil {
			return lines
		}
		lines = append(lines, string(line))
	}
}

func TestCommandSenderDebounce(t *testing.T) {
	local, remote := serlink.NewLoopbackPair()
	s := NewCommandSender(local)

	// A drag: several updates inside one window collapse to the last.
	for _, angle := range []int{10, 20, 30, 45} {
		if err := s.SetAngles(angle, -30); err != nil {
			t.Fatalf("SetAngles() error: %v", err)
		}
	}
	s.Flush()

	if got := readAll(t, remote); len(got) != 1 || got[0] != "45,-30" {
		t.Fatalf("sent %q, want exactly [\"45,-30\"]", got)
	}

	// Unchanged value: the next window sends nothing.
	s.Flush()
	if got := readAll(t, remote); len(got) != 0 {
		t.Errorf("sent %q for unchanged value, want nothing", got)
	}

	// Changed value: one more command.
	if err := s.SetAngles(50, -30); err != nil {
		t.Fatalf("SetAngles() error: %v", err)
	}
	s.Flush()
	if got := readAll(t, remote); len(got) != 1 || got[0] != "50,-30" {
		t.Errorf("sent %q, want [\"50,-30\"]", got)
	}
}

func TestCommandSenderClampsToRange(t *testing.T) {
	local, remote := serlink.NewLoopbackPair()
	s := NewCommandSender(local, WithServoRange(ServoRange{Min: 0, Max: 180}))

	if err := s.SetAngles(-45, 270); err != nil {
		t.Fatalf("SetAngles() error: %v", err)
	}
	s.Flush()

	if got := readAll(t, remote); len(got) != 1 || got[0] != "0,180" {
		t.Errorf("sent %q, want [\"0,180\"]", got)
	}
}

func TestCommandSenderTokenPassthrough(t *testing.T) {
	local, remote := serlink.NewLoopbackPair()
	s := NewCommandSender(local)

	if err := s.SendToken("CALIBRATE"); err != nil {
		t.Fatalf("SendToken() error: %v", err)
	}

	if got := readAll(t, remote); len(got) != 1 || got[0] != "CALIBRATE" {
		t.Errorf("sent %q, want [\"CALIBRATE\"]", got)
	}
}
