package util

import (
	"math"
	"strconv"
	"strings"
)

// ToInt coerces an API value to an integer. Fractions are truncated and
// anything unparsable (including the "unknown" sentinel) yields 0.
func ToInt(value string) int {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}
	if parsed, err := strconv.Atoi(s); err == nil {
		return parsed
	}
	f := ToFloat(s)
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int(f)
}

// ToFloat coerces an API value to a float, keeping fractional prices.
// NaN and infinities are treated as unparsable.
func ToFloat(value string) float64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// FormatNumber renders a decoded JSON number without exponent or trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
