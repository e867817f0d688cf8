package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeCommand serializes a servo command to a delimited integer pair.
func EncodeCommand(c Command) string {
	return strconv.Itoa(c.Servo1) + Delimiter + strconv.Itoa(c.Servo2)
}

// DecodeCommand parses an uplink line into a Command. Any line that is
// not exactly two integers is not a servo command; callers are expected
// to treat such lines as opaque control tokens and pass them through
// unparsed.
func DecodeCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")

	tokens := strings.Split(line, Delimiter)
	if len(tokens) != 2 {
		return Command{}, &ArityError{Want: 2, Got: len(tokens)}
	}

	s1, err := strconv.Atoi(strings.TrimSpace(tokens[0]))
	if err != nil {
		return Command{}, &ParseError{Field: 0, Token: tokens[0], cause: err}
	}
	s2, err := strconv.Atoi(strings.TrimSpace(tokens[1]))
	if err != nil {
		return Command{}, &ParseError{Field: 1, Token: tokens[1], cause: err}
	}

	return Command{Servo1: s1, Servo2: s2}, nil
}

// ClampAngle limits an angle to the deployment's servo range.
func ClampAngle(angle, lo, hi int) (int, error) {
	if lo >= hi {
		return 0, fmt.Errorf("wire: invalid servo range [%d, %d]", lo, hi)
	}
	if angle < lo {
		return lo, nil
	}
	if angle > hi {
		return hi, nil
	}
	return angle, nil
}
