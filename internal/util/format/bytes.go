// Package format renders sizes and rates for status lines.
package format

import (
	"strconv"
	"time"
)

var byteUnits = []string{"KB", "MB", "GB", "TB", "PB"}

// HumanizeBytes converts a byte count into a binary-unit string ("1.5 MB").
// Negative counts render as "0 B".
func HumanizeBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < len(byteUnits)-1; n /= unit {
		div *= unit
		exp++
	}
	var buf [24]byte
	s := strconv.AppendFloat(buf[:0], float64(b)/float64(div), 'f', 1, 64)
	return string(s) + " " + byteUnits[exp]
}

// HumanizeBitrate renders bits per second with decimal units, the way
// encoders report them ("320 kb/s", "14.0 Mb/s").
func HumanizeBitrate(bps int64) string {
	switch {
	case bps <= 0:
		return "0 b/s"
	case bps < 1000:
		return strconv.FormatInt(bps, 10) + " b/s"
	case bps < 1_000_000:
		return strconv.FormatInt(bps/1000, 10) + " kb/s"
	default:
		return strconv.FormatFloat(float64(bps)/1e6, 'f', 1, 64) + " Mb/s"
	}
}

// ETA renders a remaining-time estimate compactly ("1h02m", "3m05s", "42s").
func ETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return strconv.Itoa(h) + "h" + pad2(m) + "m"
	case m > 0:
		return strconv.Itoa(m) + "m" + pad2(s) + "s"
	default:
		return strconv.Itoa(s) + "s"
	}
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
