package wire

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ArityError is returned when a line does not carry the expected
// number of delimited fields.
type ArityError struct {
	Want, Got int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wire: expected %d fields, got %d", e.Want, e.Got)
}

// ParseError is returned when a field cannot be parsed as a finite
// number.
type ParseError struct {
	Field int
	Token string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wire: field %d: invalid value %q", e.Field, e.Token)
}

func (e *ParseError) Unwrap() error { return e.cause }

// recordPrecision is the per-field decimal precision on the wire,
// matching each field's physical resolution.
var recordPrecision = [FieldCount]int{2, 1, 1, 2, 1, 1, 3, 3, 3, 3, 3, 3}

// EncodeRecord serializes a record to a delimited line without a
// trailing line terminator. Framing is left to the transport.
func EncodeRecord(r Record) string {
	fields := r.fields()

	var sb strings.Builder
	for i, v := range fields {
		if i > 0 {
			sb.WriteString(Delimiter)
		}
		sb.WriteString(strconv.FormatFloat(v, 'f', recordPrecision[i], 64))
	}
	return sb.String()
}

// DecodeRecord parses a delimited line into a Record. A trailing "\n"
// or "\r\n" is tolerated. Lines with the wrong field count fail with
// ArityError; non-numeric or non-finite fields fail with ParseError.
// NaN and infinities are rejected even though strconv accepts them,
// so downstream consumers never see them.
func DecodeRecord(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")

	tokens := strings.Split(line, Delimiter)
	if len(tokens) != FieldCount {
		return Record{}, &ArityError{Want: FieldCount, Got: len(tokens)}
	}

	var fields [FieldCount]float64
	for i, token := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return Record{}, &ParseError{Field: i, Token: token, cause: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, &ParseError{Field: i, Token: token}
		}
		fields[i] = v
	}

	return Record{
		ElapsedSeconds: fields[0],
		Humidity:       fields[1],
		Temperature:    fields[2],
		Pressure:       fields[3],
		Altitude:       fields[4],
		GasPPM:         fields[5],
		GyroX:          fields[6],
		GyroY:          fields[7],
		GyroZ:          fields[8],
		AccelX:         fields[9],
		AccelY:         fields[10],
		AccelZ:         fields[11],
	}, nil
}

// Fields returns the record values in wire order.
func (r Record) Fields() []float64 {
	f := r.fields()
	return f[:]
}

// Strings returns the record values formatted at wire precision, one
// string per field, for CSV persistence.
func (r Record) Strings() []string {
	fields := r.fields()
	out := make([]string, FieldCount)
	for i, v := range fields {
		out[i] = strconv.FormatFloat(v, 'f', recordPrecision[i], 64)
	}
	return out
}

func (r Record) fields() [FieldCount]float64 {
	return [FieldCount]float64{
		r.ElapsedSeconds,
		r.Humidity,
		r.Temperature,
		r.Pressure,
		r.Altitude,
		r.GasPPM,
		r.GyroX,
		r.GyroY,
		r.GyroZ,
		r.AccelX,
		r.AccelY,
		r.AccelZ,
	}
}
