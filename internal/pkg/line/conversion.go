package line

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder is the display string for a missing line.
const Placeholder = "-"

// IsPlaceholder reports whether s is one of the site's "no line" markers.
func IsPlaceholder(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "-", "?", "N/A":
		return true
	}
	return false
}

// Parse converts a raw handicap or goal line into its signed numeric value.
// It never fails loudly: anything it cannot read becomes an invalid Line.
func Parse(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	s := strings.ReplaceAll(trimmed, " ", "")
	if s == "" || s == "-" || s == "?" {
		return Line{}
	}
	startsWithMinus := strings.HasPrefix(trimmed, "-")

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 2 {
			return Line{}
		}
		v1, ok1 := parseFloat(parts[0])
		v2, ok2 := parseFloat(parts[1])
		if !ok1 || !ok2 {
			return Line{}
		}
		secondSigned := strings.HasPrefix(parts[1], "-")
		if v1 < 0 && !secondSigned && v2 > 0 {
			v2 = -math.Abs(v2)
		} else if startsWithMinus && v1 == 0 && !secondSigned && v2 > 0 {
			v2 = -math.Abs(v2)
		}
		return Of((v1 + v2) / 2)
	}

	v, ok := parseFloat(s)
	if !ok {
		return Line{}
	}
	return Of(v)
}

// Normalize parses raw and snaps the value to the display granularity, so the number used in
// comparisons is exactly the one the user sees.
func Normalize(raw string) Line {
	l := Parse(raw)
	if !l.Valid {
		return l
	}
	return Of(Round(l.Value))
}

// Round snaps v to integers, halves and quarters.
func Round(v float64) float64 {
	if v == 0 {
		return 0
	}
	sign := 1.0
	if v < 0 {
		sign = -1
	}
	abs := math.Abs(v)
	floor := math.Floor(abs)
	mod := math.Mod(abs, 1)

	var rounded float64
	switch {
	case mod == 0, mod == 0.5:
		rounded = abs
	case mod == 0.25:
		rounded = floor + 0.25
	case mod == 0.75:
		rounded = floor + 0.75
	case mod < 0.25:
		rounded = floor
	case mod < 0.75:
		rounded = floor + 0.5
	default:
		rounded = math.Ceil(abs)
	}
	return sign * rounded
}

// Format returns the canonical display string of a raw line.
func Format(raw string) string {
	l := Parse(raw)
	if !l.Valid {
		t := strings.TrimSpace(raw)
		if t == "-" || t == "?" {
			return t
		}
		return Placeholder
	}
	return FormatValue(l.Value)
}

// FormatValue returns the canonical display string of a numeric line:
// "1", "-0.5", "0.25", "-1.75".
func FormatValue(v float64) string {
	if v == 0 {
		return "0"
	}
	final := Round(v)
	if final == 0 {
		return "0"
	}
	if math.Abs(math.Mod(final, 1)) < 1e-9 {
		return strconv.Itoa(int(final))
	}
	if math.Abs(final-(math.Floor(final)+0.5)) < 1e-9 {
		return fmt.Sprintf("%.1f", final)
	}
	return fmt.Sprintf("%.2f", final)
}

// decimalRe is the plain decimal notation the site prints. strconv alone would also take hex
// floats and underscores.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func parseFloat(s string) (float64, bool) {
	if !decimalRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
