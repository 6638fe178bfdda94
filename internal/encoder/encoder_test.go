package encoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
	"tubeshift/internal/util"
)

type fakeFFmpeg struct {
	fail bool
}

// Run writes the last argument like ffmpeg would and replays a short
// -progress block on stdout.
func (f fakeFFmpeg) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	out := spec.Args[len(spec.Args)-1]
	if err := os.WriteFile(out, []byte("partial-or-complete"), 0o644); err != nil {
		return util.CmdResult{Code: 1}, err
	}
	for _, l := range []string{"out_time_ms=5000000", "speed=2x", "progress=continue", "out_time_ms=10000000", "progress=end"} {
		spec.StdoutLine(l)
	}
	spec.StderrLine("frame=  250 fps=50")
	if f.fail {
		return util.CmdResult{Code: 1, Stderr: []byte("Conversion failed!\n")}, errors.New("exit status 1")
	}
	return util.CmdResult{}, nil
}

type updates struct {
	progress.Nop
	got []progress.Update
}

func (u *updates) Update(x progress.Update) { u.got = append(u.got, x) }

func TestRun(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "Clip.mp4")
	rep := &updates{}
	out, err := Run(context.Background(), BuildTranscodeArgs("source.webm", dst, Params{Mbit: 4}, true), Options{
		FFmpegPath:  "ffmpeg",
		OutputPath:  dst,
		DurationSec: 10,
		Runner:      fakeFFmpeg{},
		Reporter:    rep,
		JobID:       "j",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.Path != dst || out.Bytes != int64(len("partial-or-complete")) {
		t.Errorf("Output = %+v", out)
	}
	if len(rep.got) != 2 || rep.got[0].Percent != 50 || rep.got[1].Percent != 100 {
		t.Fatalf("updates = %+v", rep.got)
	}
	if rep.got[0].Stage != model.StatusTranscoding {
		t.Errorf("default stage = %v", rep.got[0].Stage)
	}
}

func TestRunFailureRemovesPartialOutput(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "Clip.mp4")
	_, err := Run(context.Background(), BuildRemuxArgs("source.mp4", dst, true), Options{
		FFmpegPath: "ffmpeg",
		OutputPath: dst,
		Runner:     fakeFFmpeg{fail: true},
	})
	if !errors.Is(err, ErrTranscode) || !strings.Contains(err.Error(), "Conversion failed!") {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Errorf("partial output not removed")
	}
}

func TestRunRequiresPaths(t *testing.T) {
	if _, err := Run(context.Background(), nil, Options{OutputPath: "x"}); err == nil {
		t.Error("missing ffmpeg path accepted")
	}
	if _, err := Run(context.Background(), nil, Options{FFmpegPath: "ffmpeg"}); err == nil {
		t.Error("missing output path accepted")
	}
}
