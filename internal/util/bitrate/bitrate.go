package bitrate

import (
	"math"
	"strconv"
)

const (
	// AudioBps is the audio share subtracted from the total bitrate budget.
	AudioBps = 320_000
	// MinVideoBps is the lowest video bitrate the estimator works with.
	MinVideoBps = 800_000
	// HeadroomPercent compensates for encoder overshoot (1.15x).
	HeadroomPercent = 115
	// MinMbit is the floor of the final target.
	MinMbit = 4

	// Caps the total so video*HeadroomPercent stays within int64. At this
	// rate the result already saturates at math.MaxInt32 megabits.
	maxTotalBps = 1e16
)

// VideoMbit estimates the target video bitrate, in whole megabits, for
// re-encoding a source of sizeBytes lasting durationSec seconds.
// A duration of zero or less is treated as one second.
func VideoMbit(sizeBytes int64, durationSec float64) int {
	if !(durationSec > 0) || math.IsInf(durationSec, 0) {
		durationSec = 1
	}
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	totalF := math.Floor(float64(sizeBytes) * 8 / durationSec)
	if totalF > maxTotalBps {
		totalF = maxTotalBps
	}
	total := int64(totalF)
	video := total - AudioBps
	if video < MinVideoBps {
		video = MinVideoBps
	}
	headroom := video * HeadroomPercent / 100
	mbit := int((headroom + 999_999) / 1_000_000)
	return Clamp(mbit, MinMbit, math.MaxInt32)
}

// Flag renders a megabit value the way the transcoder expects, e.g. "14M".
func Flag(mbit int) string {
	return strconv.Itoa(mbit) + "M"
}

// Clamp returns v constrained to [min, max].
func Clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SafeAudioKbps keeps the audio bitrate within what AAC encoders accept.
func SafeAudioKbps(v int) int {
	if v <= 0 {
		return AudioBps / 1000
	}
	return Clamp(v, 64, 512)
}
