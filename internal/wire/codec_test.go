package wire

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestEncodeRecord(t *testing.T) {
	r := Record{
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

	want := "12.34,55.0,21.3,1013.25,135.0,420.7,0.001,-0.002,0.150,0.012,0.034,9.801"
	if got := EncodeRecord(r); got != want {
		t.Errorf("EncodeRecord() = %q, want %q", got, want)
	}
}

func TestDecodeRecord(t *testing.T) {
	line := "12.34,55.0,21.3,1013.25,135.0,420.7,0.001,-0.002,0.150,0.012,0.034,9.801"

	r, err := DecodeRecord(line)
	if err != nil {
		t.Fatalf("DecodeRecord() error: %v", err)
	}

	if r.ElapsedSeconds != 12.34 {
		t.Errorf("ElapsedSeconds = %v, want 12.34", r.ElapsedSeconds)
	}
	if r.GasPPM != 420.7 {
		t.Errorf("GasPPM = %v, want 420.7", r.GasPPM)
	}
	if r.AccelZ != 9.801 {
		t.Errorf("AccelZ = %v, want 9.801", r.AccelZ)
	}

	// Re-encoding must reproduce the line at wire precision.
	if got := EncodeRecord(r); got != line {
		t.Errorf("EncodeRecord(DecodeRecord(line)) = %q, want %q", got, line)
	}
}

func TestDecodeRecordLineTerminators(t *testing.T) {
	line := "1.00,2.0,3.0,4.00,5.0,6.0,7.000,8.000,9.000,10.000,11.000,12.000"
	for _, suffix := range []string{"", "\n", "\r\n"} {
		if _, err := DecodeRecord(line + suffix); err != nil {
			t.Errorf("DecodeRecord(line+%q) error: %v", suffix, err)
		}
	}
}

func TestDecodeRecordArity(t *testing.T) {
	tests := []struct {
		name string
		line string
		got  int
	}{
		{"empty", "", 1},
		{"too few", "1.0,2.0,3.0", 3},
		{"too many", strings.Repeat("1.0,", 12) + "1.0", 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.line)

			var arityErr *ArityError
			if !errors.As(err, &arityErr) {
				t.Fatalf("DecodeRecord(%q) error = %v, want ArityError", tt.line, err)
			}
			if arityErr.Got != tt.got {
				t.Errorf("ArityError.Got = %d, want %d", arityErr.Got, tt.got)
			}
		})
	}
}

func TestDecodeRecordParseFaults(t *testing.T) {
	valid := []string{"1.00", "2.0", "3.0", "4.00", "5.0", "6.0", "7.000", "8.000", "9.000", "10.000", "11.000", "12.000"}

	tests := []struct {
		name  string
		field int
		token string
	}{
		{"non-numeric", 2, "abc"},
		{"empty field", 5, ""},
		{"NaN rejected", 0, "NaN"},
		{"Infinity rejected", 11, "Inf"},
		{"negative infinity rejected", 7, "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := append([]string(nil), valid...)
			fields[tt.field] = tt.token

			_, err := DecodeRecord(strings.Join(fields, ","))

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("DecodeRecord() error = %v, want ParseError", err)
			}
			if parseErr.Field != tt.field {
				t.Errorf("ParseError.Field = %d, want %d", parseErr.Field, tt.field)
			}
		})
	}
}

func TestRecordRoundTripPrecision(t *testing.T) {
	// Round-trip is lossy by design: each field must survive within its
	// wire precision, not bit-exactly.
	r := Record{
		ElapsedSeconds: 123.456789,
		Humidity:       54.3219,
		Temperature:    -12.3456,
		Pressure:       998.76543,
		Altitude:       1234.5678,
		GasPPM:         404.0404,
		GyroX:          0.123456,
		GyroY:          -1.987654,
		GyroZ:          2.555555,
		AccelX:         -9.80665,
		AccelY:         0.000499,
		AccelZ:         9.812345,
	}

	decoded, err := DecodeRecord(EncodeRecord(r))
	if err != nil {
		t.Fatalf("DecodeRecord() error: %v", err)
	}

	in := r.Fields()
	out := decoded.Fields()
	for i := range in {
		tolerance := 0.5 * math.Pow(10, -float64(recordPrecision[i]))
		if diff := math.Abs(in[i] - out[i]); diff > tolerance {
			t.Errorf("field %d: |%v - %v| = %v exceeds tolerance %v", i, in[i], out[i], diff, tolerance)
		}
	}
}

func TestCommandRoundTrip(t *testing.T) {
	c := Command{Servo1: 45, Servo2: -30}

	line := EncodeCommand(c)
	if line != "45,-30" {
		t.Fatalf("EncodeCommand() = %q, want %q", line, "45,-30")
	}

	decoded, err := DecodeCommand(line)
	if err != nil {
		t.Fatalf("DecodeCommand() error: %v", err)
	}
	if decoded != c {
		t.Errorf("DecodeCommand() = %+v, want %+v", decoded, c)
	}
}

func TestDecodeCommandRejectsTokens(t *testing.T) {
	// Control tokens are distinguished from servo commands purely by
	// failing the two-integer check.
	for _, line := range []string{"CALIBRATE", "45", "45,-30,10", "45,abc"} {
		if _, err := DecodeCommand(line); err == nil {
			t.Errorf("DecodeCommand(%q) = nil error, want failure", line)
		}
	}
}

func TestClampAngle(t *testing.T) {
	tests := []struct {
		angle, lo, hi, want int
	}{
		{45, -90, 90, 45},
		{-120, -90, 90, -90},
		{200, 0, 180, 180},
		{0, 0, 180, 0},
	}

	for _, tt := range tests {
		got, err := ClampAngle(tt.angle, tt.lo, tt.hi)
		if err != nil {
			t.Fatalf("ClampAngle(%d, %d, %d) error: %v", tt.angle, tt.lo, tt.hi, err)
		}
		if got != tt.want {
			t.Errorf("ClampAngle(%d, %d, %d) = %d, want %d", tt.angle, tt.lo, tt.hi, got, tt.want)
		}
	}

	if _, err := ClampAngle(0, 90, -90); err == nil {
		t.Error("ClampAngle with inverted range: expected error")
	}
}
