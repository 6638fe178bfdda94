package downloader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
	"tubeshift/internal/util"
	"tubeshift/internal/util/media"
	"tubeshift/internal/util/timefmt"
)

var (
	// ErrDownload wraps every failed downloader invocation.
	ErrDownload = errors.New("download failed")
	// ErrMissingSource means the downloader exited cleanly but left no source file.
	ErrMissingSource = errors.New("downloaded file not found in job directory")
)

// DefaultFragments is the -N value used when Options.Fragments is unset.
const DefaultFragments = 8

// Options controls downloader behavior.
type Options struct {
	DownloaderPath string // Path to yt-dlp or youtube-dl
	WorkDir        string // Job directory; the source lands here
	TempDir        string // Scratch directory for fragments
	Fragments      int    // Concurrent fragment downloads
	Clip           model.Clip

	Runner   util.CmdRunner
	Reporter progress.Reporter
	Logger   *log.Logger
	JobID    string
}

func (o Options) runner() util.CmdRunner {
	if o.Runner != nil {
		return o.Runner
	}
	return util.NewDefaultRunner(o.Logger)
}

func (o Options) reporter() progress.Reporter {
	if o.Reporter != nil {
		return o.Reporter
	}
	return progress.Nop{}
}

// Args builds the downloader command line for url.
func Args(opts Options, url string) []string {
	n := opts.Fragments
	if n <= 0 {
		n = DefaultFragments
	}
	args := []string{
		"-f", "bv*+ba/b",
		"-S", "res,fps,br",
		"--hls-prefer-ffmpeg",
		"-N", strconv.Itoa(n),
		"--newline",
		"--no-playlist",
		"-P", opts.WorkDir,
		"--paths", "temp:" + opts.TempDir,
		"-o", media.SourceTemplate,
	}
	args = append(args, ClipArgs(opts.Clip)...)
	return append(args, url)
}

// ClipArgs returns the arguments that make the downloader fetch only the
// clipped segment through ffmpeg, or nil when no clip is requested.
func ClipArgs(c model.Clip) []string {
	if !c.Requested() {
		return nil
	}
	var parts []string
	if s := c.StartSec(); s > 0 {
		parts = append(parts, "-ss "+timefmt.Format(s))
	}
	if c.End != nil {
		parts = append(parts, "-to "+timefmt.Format(*c.End))
	}
	return []string{
		"--downloader", "ffmpeg",
		"--downloader-args", "ffmpeg_i:" + strings.Join(parts, " "),
	}
}

// Download runs the downloader for url inside opts.WorkDir and returns the
// path of the produced source file.
func Download(ctx context.Context, url string, opts Options) (string, error) {
	if opts.DownloaderPath == "" {
		return "", errors.New("downloader path is required")
	}
	if opts.WorkDir == "" || opts.TempDir == "" {
		return "", errors.New("work and temp directories are required")
	}
	rep := opts.reporter()

	res, err := opts.runner().Run(ctx, util.CmdSpec{
		Path: opts.DownloaderPath,
		Args: Args(opts, url),
		Dir:  opts.WorkDir,
		StdoutLine: func(line string) {
			if u, ok := ParseProgress(line, opts.JobID); ok {
				rep.Update(u)
				return
			}
			rep.Log(progress.Log{JobID: opts.JobID, Stream: progress.StreamStdout, Line: line})
		},
		StderrLine: func(line string) {
			rep.Log(progress.Log{JobID: opts.JobID, Stream: progress.StreamStderr, Line: line})
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if tail := res.StderrTail(3); tail != "" {
			return "", fmt.Errorf("%w: %v: %s", ErrDownload, err, tail)
		}
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	return SelectSourceFile(opts.WorkDir)
}
