package media

import (
	"testing"
	"time"
)

func TestJobDirName(t *testing.T) {
	now := time.Date(2024, 3, 9, 7, 5, 2, 42_000, time.UTC)
	if got, want := JobDirName(now, "ab12cd34"), "DL_2024-03-09_07-05-02_000042_ab12cd34"; got != want {
		t.Errorf("JobDirName() = %q, want %q", got, want)
	}
}

func TestFinalName(t *testing.T) {
	if got := FinalName(`a/b: "c"`); got != "a_b_ _c_.mp4" {
		t.Errorf("FinalName() = %q", got)
	}
	if got := FinalName("   "); got != "video.mp4" {
		t.Errorf("FinalName(blank) = %q", got)
	}
}

func TestIsSourceFile(t *testing.T) {
	tests := map[string]bool{
		"source.mp4":      true,
		"source.webm":     true,
		"source.MKV":      true,
		"source.%(ext)s":  false,
		"source.mp4.part": false,
		"source.part":     false,
		"source.ytdl":     false,
		"source":          false,
		"other.mp4":       false,
		"source.f137.mp4": false,
	}
	for name, want := range tests {
		if got := IsSourceFile(name); got != want {
			t.Errorf("IsSourceFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle(" Clip ", "u", "i"); got != "Clip" {
		t.Errorf("got %q", got)
	}
	if got := DisplayTitle("", "https://x", "i"); got != "https://x" {
		t.Errorf("got %q", got)
	}
	if got := DisplayTitle("", "", "i"); got != "i" {
		t.Errorf("got %q", got)
	}
}
