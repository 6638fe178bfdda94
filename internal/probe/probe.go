// Package probe asks ffprobe about a downloaded source.
package probe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"tubeshift/internal/model"
	"tubeshift/internal/util"
)

var (
	// ErrProbe wraps every failed prober invocation.
	ErrProbe = errors.New("probe failed")
	// ErrNoVideoStream means the source has no decodable video stream.
	ErrNoVideoStream = errors.New("no video stream found")
)

// UnknownCodec is reported for a missing audio stream.
const UnknownCodec = "unknown"

// Prober runs ffprobe through a CmdRunner.
type Prober struct {
	Path   string
	Runner util.CmdRunner
	Logger *log.Logger
}

// New returns a Prober for the ffprobe binary at path.
func New(path string, runner util.CmdRunner, logger *log.Logger) *Prober {
	if runner == nil {
		runner = util.NewDefaultRunner(logger)
	}
	return &Prober{Path: path, Runner: runner, Logger: logger}
}

// StreamArgs returns the arguments that print the codec of the first stream
// matching selector ("v:0" or "a:0").
func StreamArgs(selector, path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", selector,
		"-show_entries", "stream=codec_name",
		"-of", "default=nw=1:nk=1",
		path,
	}
}

// DurationArgs returns the arguments that print the container duration.
func DurationArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nw=1:nk=1",
		path,
	}
}

// Codecs returns the video and audio codec names of path. A missing audio
// stream yields UnknownCodec; a missing video stream is an error.
func (p *Prober) Codecs(ctx context.Context, path string) (video, audio string, err error) {
	video, err = p.firstLine(ctx, StreamArgs("v:0", path))
	if err != nil {
		return "", "", err
	}
	if video == "" {
		return "", "", fmt.Errorf("%w: %w in %s", ErrProbe, ErrNoVideoStream, path)
	}
	audio, err = p.firstLine(ctx, StreamArgs("a:0", path))
	if err != nil {
		return "", "", err
	}
	if audio == "" {
		audio = UnknownCodec
	}
	return video, audio, nil
}

// Duration returns the container duration in seconds. Output that does not
// parse as a positive number yields 1, so the bitrate estimate stays finite.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	line, err := p.firstLine(ctx, DurationArgs(path))
	if err != nil {
		return 0, err
	}
	d, perr := strconv.ParseFloat(line, 64)
	if perr != nil || math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		if p.Logger != nil {
			p.Logger.Debug("unusable duration, assuming 1s", "path", path, "raw", line)
		}
		return 1, nil
	}
	return d, nil
}

// Probe gathers codecs and size, then the duration when needDuration
// reports it is wanted for that result. A nil needDuration skips it.
func (p *Prober) Probe(ctx context.Context, path string, needDuration func(model.ProbeResult) bool) (model.ProbeResult, error) {
	v, a, err := p.Codecs(ctx, path)
	if err != nil {
		return model.ProbeResult{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return model.ProbeResult{}, fmt.Errorf("%w: %v", ErrProbe, err)
	}
	res := model.ProbeResult{VideoCodec: v, AudioCodec: a, SizeBytes: st.Size()}
	if needDuration != nil && needDuration(res) {
		if res.DurationSec, err = p.Duration(ctx, path); err != nil {
			return model.ProbeResult{}, err
		}
	}
	return res, nil
}

func (p *Prober) firstLine(ctx context.Context, args []string) (string, error) {
	if p.Path == "" {
		return "", fmt.Errorf("%w: ffprobe path is required", ErrProbe)
	}
	res, err := p.Runner.Run(ctx, util.CmdSpec{Path: p.Path, Args: args, CaptureStdout: true})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if tail := res.StderrTail(2); tail != "" {
			return "", fmt.Errorf("%w: %v: %s", ErrProbe, err, tail)
		}
		return "", fmt.Errorf("%w: %v", ErrProbe, err)
	}
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s, nil
		}
	}
	return "", nil
}
