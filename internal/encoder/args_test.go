package encoder

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildTranscodeArgs(t *testing.T) {
	got := BuildTranscodeArgs("source.webm", "Clip.mp4", Params{Mbit: 14, Preset: "slow", AudioKbps: 320}, false)
	want := []string{
		"-hide_banner", "-y", "-i", "source.webm",
		"-c:v", "libx264", "-preset", "slow", "-pix_fmt", "yuv420p",
		"-b:v", "14M", "-minrate", "14M", "-maxrate", "14M", "-bufsize", "100M",
		"-profile:v", "high", "-c:a", "aac", "-b:a", "320k",
		"-movflags", "+faststart", "Clip.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildTranscodeArgs() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildTranscodeArgsVariants(t *testing.T) {
	tests := []struct {
		name            string
		p               Params
		includeProgress bool
		wantContains    []string
		wantNotContains []string
	}{
		{
			name:         "defaults fill preset and audio",
			p:            Params{Mbit: 4},
			wantContains: []string{"-preset slow", "-b:a 320k", "-b:v 4M"},
		},
		{
			name:         "zero bitrate floors at one megabit",
			p:            Params{Mbit: 0},
			wantContains: []string{"-b:v 1M -minrate 1M -maxrate 1M"},
		},
		{
			name:            "with progress",
			p:               Params{Mbit: 8, Preset: "veryfast", AudioKbps: 192},
			includeProgress: true,
			wantContains:    []string{"-preset veryfast", "-b:a 192k", "-progress pipe:1 -nostats out.mp4"},
		},
		{
			name:            "without progress",
			p:               Params{Mbit: 8},
			wantNotContains: []string{"-progress", "-nostats"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildTranscodeArgs("in.mkv", "out.mp4", tt.p, tt.includeProgress)
			argsStr := strings.Join(args, " ")
			for _, want := range tt.wantContains {
				if !strings.Contains(argsStr, want) {
					t.Errorf("args missing %q, got: %v", want, args)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(argsStr, notWant) {
					t.Errorf("args should not contain %q, got: %v", notWant, args)
				}
			}
			if args[len(args)-1] != "out.mp4" {
				t.Errorf("last arg = %v, want out.mp4", args[len(args)-1])
			}
		})
	}
}

func TestBuildRemuxArgs(t *testing.T) {
	got := strings.Join(BuildRemuxArgs("source.mp4", "Clip.mp4", true), " ")
	want := "-hide_banner -y -i source.mp4 -c:v copy -c:a copy -movflags +faststart -progress pipe:1 -nostats Clip.mp4"
	if got != want {
		t.Errorf("BuildRemuxArgs() = %q", got)
	}
	if strings.Contains(got, "libx264") {
		t.Errorf("remux must not re-encode")
	}
}
