package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
	"tubeshift/internal/util"
)

// ErrTranscode wraps every failed transcoder invocation.
var ErrTranscode = errors.New("transcode failed")

// Options control ffmpeg execution.
type Options struct {
	FFmpegPath  string
	OutputPath  string  // must match the last argument
	DurationSec float64 // source duration, for percentages; 0 if unknown
	Stage       model.Status
	Label       string // progress message, e.g. "Remuxing"

	Runner   util.CmdRunner
	Reporter progress.Reporter
	Logger   *log.Logger
	JobID    string
}

// Output describes the produced file.
type Output struct {
	Path  string
	Bytes int64
}

// Run executes ffmpeg with args, translating -progress output into updates.
// A partial output file is removed when ffmpeg fails or is cancelled.
func Run(ctx context.Context, args []string, opts Options) (Output, error) {
	if opts.FFmpegPath == "" {
		return Output{}, errors.New("ffmpeg path is required")
	}
	if opts.OutputPath == "" {
		return Output{}, errors.New("output path is required")
	}
	if err := util.EnsureDir(filepath.Dir(opts.OutputPath)); err != nil {
		return Output{}, fmt.Errorf("ensure output dir: %w", err)
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner(opts.Logger)
	}
	var rep progress.Reporter = progress.Nop{}
	if opts.Reporter != nil {
		rep = opts.Reporter
	}
	stage := opts.Stage
	if stage == "" {
		stage = model.StatusTranscoding
	}

	ps := ProgressState{Label: opts.Label}
	res, runErr := runner.Run(ctx, util.CmdSpec{
		Path: opts.FFmpegPath,
		Args: args,
		Dir:  filepath.Dir(opts.OutputPath),
		StdoutLine: func(line string) {
			if u, ok := ps.UpdateFromLine(line, opts.JobID, opts.DurationSec, stage); ok {
				rep.Update(u)
			}
		},
		StderrLine: func(line string) {
			rep.Log(progress.Log{JobID: opts.JobID, Stream: progress.StreamStderr, Line: line})
		},
	})
	if runErr != nil {
		_ = util.RemoveIfExists(opts.OutputPath)
		if ctx.Err() != nil {
			return Output{}, ctx.Err()
		}
		if tail := res.StderrTail(3); tail != "" {
			return Output{}, fmt.Errorf("%w: %v: %s", ErrTranscode, runErr, tail)
		}
		return Output{}, fmt.Errorf("%w: %v", ErrTranscode, runErr)
	}

	fi, err := os.Stat(opts.OutputPath)
	if err != nil {
		return Output{}, fmt.Errorf("%w: output missing: %v", ErrTranscode, err)
	}
	return Output{Path: opts.OutputPath, Bytes: fi.Size()}, nil
}
