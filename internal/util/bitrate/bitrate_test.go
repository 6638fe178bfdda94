package bitrate

import (
	"math"
	"testing"
)

func TestVideoMbit(t *testing.T) {
	tests := []struct {
		name        string
		sizeBytes   int64
		durationSec float64
		want        int
	}{
		{
			name:        "900MB over ten minutes",
			sizeBytes:   900_000_000,
			durationSec: 600,
			want:        14, // 12_000_000 - 320_000 = 11_680_000; *1.15 = 13_432_000; ceil -> 14
		},
		{
			name:        "tiny file floors at minimum",
			sizeBytes:   1_000_000,
			durationSec: 1000,
			want:        4, // video clamps to 800k; *1.15 = 920k; ceil -> 1; floor 4
		},
		{
			name:        "zero duration treated as one second",
			sizeBytes:   1_000_000,
			durationSec: 0,
			want:        9, // 8_000_000 - 320_000 = 7_680_000; *1.15 = 8_832_000 -> 9
		},
		{
			name:        "negative duration treated as one second",
			sizeBytes:   1_000_000,
			durationSec: -30,
			want:        9,
		},
		{
			name:        "NaN duration treated as one second",
			sizeBytes:   1_000_000,
			durationSec: math.NaN(),
			want:        9,
		},
		{
			name:        "zero size",
			sizeBytes:   0,
			durationSec: 120,
			want:        4,
		},
		{
			name:        "negative size",
			sizeBytes:   -5,
			durationSec: 120,
			want:        4,
		},
		{
			name:        "ten megabit source",
			sizeBytes:   1_000_000_000,
			durationSec: 800,
			want:        12, // 10_000_000 - 320_000 = 9_680_000; *1.15 = 11_132_000 -> 12
		},
		{
			name:        "fractional duration",
			sizeBytes:   50_000_000,
			durationSec: 12.5,
			want:        37, // 32_000_000 - 320_000 = 31_680_000; *1.15 = 36_432_000 -> 37
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VideoMbit(tt.sizeBytes, tt.durationSec)
			if got != tt.want {
				t.Errorf("VideoMbit(%d, %v) = %d, want %d", tt.sizeBytes, tt.durationSec, got, tt.want)
			}
		})
	}
}

func TestVideoMbitNeverBelowFloor(t *testing.T) {
	sizes := []int64{0, 1, 1_000, 1_000_000, 123_456_789, 5_000_000_000}
	durations := []float64{-1, 0, 0.001, 1, 59.9, 600, 86_400}
	for _, s := range sizes {
		for _, d := range durations {
			if got := VideoMbit(s, d); got < MinMbit {
				t.Errorf("VideoMbit(%d, %v) = %d, below floor %d", s, d, got, MinMbit)
			}
		}
	}
}

func TestFlag(t *testing.T) {
	if got := Flag(14); got != "14M" {
		t.Errorf("Flag(14) = %q, want 14M", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		v    int
		min  int
		max  int
		want int
	}{
		{name: "value in range", v: 50, min: 0, max: 100, want: 50},
		{name: "value below min", v: -10, min: 0, max: 100, want: 0},
		{name: "value above max", v: 150, min: 0, max: 100, want: 100},
		{name: "value equals min", v: 0, min: 0, max: 100, want: 0},
		{name: "value equals max", v: 100, min: 0, max: 100, want: 100},
		{name: "single value range", v: 50, min: 42, max: 42, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.v, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("Clamp(%d, %d, %d) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestSafeAudioKbps(t *testing.T) {
	tests := []struct {
		name string
		v    int
		want int
	}{
		{name: "zero uses default", v: 0, want: 320},
		{name: "negative uses default", v: -10, want: 320},
		{name: "below minimum", v: 32, want: 64},
		{name: "in range", v: 192, want: 192},
		{name: "above maximum", v: 1000, want: 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeAudioKbps(tt.v)
			if got != tt.want {
				t.Errorf("SafeAudioKbps(%d) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestVideoMbitHugeInputsSaturate(t *testing.T) {
	if got := VideoMbit(math.MaxInt64, 1e-9); got != math.MaxInt32 {
		t.Errorf("VideoMbit(max, tiny) = %d, want %d", got, math.MaxInt32)
	}
}

func TestVideoMbitMonotonicForLargeSizes(t *testing.T) {
	sizes := []int64{1e9, 1e12, 1e15, 1e16, 2e16, 1e17, 1e18, math.MaxInt64}
	prev := 0
	for _, size := range sizes {
		got := VideoMbit(size, 1)
		if got < prev {
			t.Errorf("VideoMbit(%d, 1) = %d, smaller than %d for a smaller size", size, got, prev)
		}
		prev = got
	}
	if prev != math.MaxInt32 {
		t.Errorf("VideoMbit(MaxInt64, 1) = %d, want %d", prev, math.MaxInt32)
	}
}
