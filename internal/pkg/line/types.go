// Package line normalizes Asian handicap and goal line values as the odds site prints them.
// Every displayed or compared line in the service goes through Parse/Format so that
// "0/0.5", "0.25" and " 0.25 " all end up as the same number and the same string.
package line

import (
	"encoding/json"
	"strconv"
)

// Line is a normalized handicap or goal line. The zero value is the "no line" marker
// (placeholder, empty or unparseable input).
type Line struct {
	Value float64
	Valid bool
}

// Of wraps a known numeric value.
func Of(v float64) Line {
	return Line{Value: v, Valid: true}
}

// String returns the display form, "-" for an invalid line.
func (l Line) String() string {
	if !l.Valid {
		return Placeholder
	}
	return FormatValue(l.Value)
}

// MarshalJSON encodes an invalid line as null so renderers see an explicit marker.
func (l Line) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(l.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts null or a number.
func (l *Line) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = Line{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = Of(v)
	return nil
}
