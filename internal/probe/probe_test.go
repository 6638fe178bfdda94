package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubeshift/internal/model"
	"tubeshift/internal/util"
)

// fakeFFprobe answers by selector, like the real tool would for one file.
type fakeFFprobe struct {
	video, audio, duration string
	fail                   bool
	calls                  int
}

func (f *fakeFFprobe) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.calls++
	if f.fail {
		return util.CmdResult{Code: 1, Stderr: []byte("moov atom not found\n")}, errors.New("exit status 1")
	}
	args := strings.Join(spec.Args, " ")
	switch {
	case strings.Contains(args, "v:0"):
		return util.CmdResult{Stdout: []byte(f.video)}, nil
	case strings.Contains(args, "a:0"):
		return util.CmdResult{Stdout: []byte(f.audio)}, nil
	case strings.Contains(args, "format=duration"):
		return util.CmdResult{Stdout: []byte(f.duration)}, nil
	}
	return util.CmdResult{}, nil
}

func writeSource(t *testing.T, size int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "source.webm")
	if err := os.WriteFile(p, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCodecs(t *testing.T) {
	tests := []struct {
		name      string
		fake      fakeFFprobe
		wantVideo string
		wantAudio string
		wantErr   error
	}{
		{name: "h264 aac", fake: fakeFFprobe{video: "h264\n", audio: "aac\n"}, wantVideo: "h264", wantAudio: "aac"},
		{name: "first line wins", fake: fakeFFprobe{video: "\nvp9\nh264\n", audio: "opus"}, wantVideo: "vp9", wantAudio: "opus"},
		{name: "no audio", fake: fakeFFprobe{video: "h264"}, wantVideo: "h264", wantAudio: UnknownCodec},
		{name: "no video", fake: fakeFFprobe{audio: "aac"}, wantErr: ErrNoVideoStream},
		{name: "tool fails", fake: fakeFFprobe{fail: true}, wantErr: ErrProbe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := tt.fake
			p := New("ffprobe", &fake, nil)
			v, a, err := p.Codecs(context.Background(), "src")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if v != tt.wantVideo || a != tt.wantAudio {
				t.Errorf("Codecs() = %q, %q", v, a)
			}
		})
	}
}

func TestNoVideoStreamIsProbeError(t *testing.T) {
	p := New("ffprobe", &fakeFFprobe{audio: "aac"}, nil)
	_, _, err := p.Codecs(context.Background(), "src")
	if !errors.Is(err, ErrProbe) {
		t.Errorf("err = %v, want ErrProbe too", err)
	}
}

func TestDuration(t *testing.T) {
	tests := map[string]float64{
		"600.000000\n": 600,
		"12.5":         12.5,
		"N/A":          1,
		"":             1,
		"0":            1,
		"-4":           1,
		"nan":          1,
	}
	for raw, want := range tests {
		p := New("ffprobe", &fakeFFprobe{duration: raw}, nil)
		got, err := p.Duration(context.Background(), "src")
		if err != nil || got != want {
			t.Errorf("Duration(%q) = %v, %v, want %v", raw, got, err, want)
		}
	}
}

func TestProbe(t *testing.T) {
	src := writeSource(t, 2048)
	fake := &fakeFFprobe{video: "vp9", audio: "opus", duration: "10"}
	p := New("ffprobe", fake, nil)

	res, err := p.Probe(context.Background(), src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.SizeBytes != 2048 || res.DurationSec != 0 || fake.calls != 2 {
		t.Errorf("without duration: %+v, calls=%d", res, fake.calls)
	}

	var seen model.ProbeResult
	res, err = p.Probe(context.Background(), src, func(r model.ProbeResult) bool {
		seen = r
		return r.VideoCodec != "h264"
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.DurationSec != 10 || res.VideoCodec != "vp9" || res.AudioCodec != "opus" {
		t.Errorf("with duration: %+v", res)
	}
	if seen.VideoCodec != "vp9" || seen.SizeBytes != 2048 {
		t.Errorf("predicate saw %+v, want codecs and size", seen)
	}

	fake.video, fake.audio, fake.calls = "h264", "aac", 0
	res, err = p.Probe(context.Background(), src, func(r model.ProbeResult) bool { return r.VideoCodec != "h264" })
	if err != nil {
		t.Fatal(err)
	}
	if res.DurationSec != 0 || fake.calls != 2 {
		t.Errorf("compatible source probed duration: %+v, calls=%d", res, fake.calls)
	}

	if _, err := p.Probe(context.Background(), filepath.Join(t.TempDir(), "missing"), nil); !errors.Is(err, ErrProbe) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestStreamArgs(t *testing.T) {
	got := strings.Join(StreamArgs("a:0", "in.mkv"), " ")
	want := "-v error -select_streams a:0 -show_entries stream=codec_name -of default=nw=1:nk=1 in.mkv"
	if got != want {
		t.Errorf("StreamArgs() = %q", got)
	}
}
