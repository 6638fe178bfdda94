package format

import (
	"testing"
	"time"
)

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "single byte", bytes: 1, want: "1 B"},
		{name: "under 1KB", bytes: 1023, want: "1023 B"},
		{name: "exactly 1KB", bytes: 1024, want: "1.0 KB"},
		{name: "1.5 KB", bytes: 1536, want: "1.5 KB"},
		{name: "exactly 1MB", bytes: 1024 * 1024, want: "1.0 MB"},
		{name: "50 MB", bytes: 50 * 1024 * 1024, want: "50.0 MB"},
		{name: "exactly 1GB", bytes: 1024 * 1024 * 1024, want: "1.0 GB"},
		{name: "1.5 GB", bytes: 1536 * 1024 * 1024, want: "1.5 GB"},
		{name: "exactly 1TB", bytes: 1024 * 1024 * 1024 * 1024, want: "1.0 TB"},
		{name: "large value", bytes: 5 * 1024 * 1024 * 1024, want: "5.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HumanizeBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
func TestHumanizeBytesEdges(t *testing.T) {
	if got := HumanizeBytes(-5); got != "0 B" {
		t.Errorf("negative = %q", got)
	}
	if got := HumanizeBytes(3 << 50); got != "3.0 PB" {
		t.Errorf("petabytes = %q", got)
	}
}

func TestHumanizeBitrate(t *testing.T) {
	tests := map[int64]string{
		0:          "0 b/s",
		-1:         "0 b/s",
		999:        "999 b/s",
		320_000:    "320 kb/s",
		14_000_000: "14.0 Mb/s",
		1_260_000:  "1.3 Mb/s",
	}
	for in, want := range tests {
		if got := HumanizeBitrate(in); got != want {
			t.Errorf("HumanizeBitrate(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestETA(t *testing.T) {
	tests := map[time.Duration]string{
		0:                         "--",
		42 * time.Second:          "42s",
		185 * time.Second:         "3m05s",
		time.Hour + 2*time.Minute: "1h02m",
		1500 * time.Millisecond:   "2s",
	}
	for in, want := range tests {
		if got := ETA(in); got != want {
			t.Errorf("ETA(%v) = %q, want %q", in, got, want)
		}
	}
}
