// Package timefmt renders and parses the clock-style timestamps used for
// clip bounds and durations.
package timefmt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmpty   = errors.New("empty time")
	ErrInvalid = errors.New("invalid time format")
)

// Format renders seconds as mm:ss, mm:ss.mmm or hh:mm:ss[.mmm].
// Fractional digits are rounded to milliseconds and trailing zeros trimmed.
// Negative and NaN values render as 00:00.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if math.IsInf(seconds, 1) {
		seconds = math.MaxInt32
	}
	totalMs := int64(math.Round(seconds * 1000))
	ms := totalMs % 1000
	s := totalMs / 1000
	h := s / 3600
	m := (s % 3600) / 60
	s %= 60

	var out string
	if h > 0 {
		out = fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	} else {
		out = fmt.Sprintf("%02d:%02d", m, s)
	}
	if ms > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%03d", ms), "0")
		out += "." + frac
	}
	return out
}

// Parse reads "ss", "mm:ss" or "hh:mm:ss" (each part may carry a fraction)
// into seconds. Blank input returns ErrEmpty.
func Parse(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return 0, ErrEmpty
	}
	parts := strings.Split(cleaned, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	total := 0.0
	mult := 1.0
	for i := len(parts) - 1; i >= 0; i-- {
		p := strings.TrimSpace(parts[i])
		if p == "" {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, text)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, text)
		}
		total += v * mult
		mult *= 60
	}
	return total, nil
}
