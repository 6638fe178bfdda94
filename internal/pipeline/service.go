// Package pipeline runs one job through download, probe, transcode and cleanup.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"tubeshift/internal/downloader"
	"tubeshift/internal/encoder"
	"tubeshift/internal/model"
	"tubeshift/internal/probe"
	"tubeshift/internal/progress"
	"tubeshift/internal/util"
	"tubeshift/internal/util/format"
	"tubeshift/internal/util/media"
	"tubeshift/internal/util/timefmt"
)

// Failure classes, usable with errors.Is on RunJob errors.
var (
	ErrInvalidURL    = util.ErrInvalidURL
	ErrInvalidClip   = errors.New("invalid clip range")
	ErrDownload      = downloader.ErrDownload
	ErrMissingSource = downloader.ErrMissingSource
	ErrBadMetadata   = downloader.ErrBadMetadata
	ErrProbe         = probe.ErrProbe
	ErrTranscode     = encoder.ErrTranscode
)

// Service orchestrates the download → probe → transcode → cleanup workflow.
// A Service holds no per-job state and may run many jobs concurrently.
type Service struct {
	dlPath      string
	ffmpegPath  string
	ffprobePath string
	settings    model.Settings
	runner      util.CmdRunner
	reporter    progress.Reporter
	logger      *log.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSettings sets the configuration applied to every job.
func WithSettings(st model.Settings) Option {
	return func(s *Service) {
		s.settings = st
	}
}

// WithDownloaderPath sets the downloader (yt-dlp/youtube-dl) binary path.
func WithDownloaderPath(p string) Option {
	return func(s *Service) {
		s.dlPath = p
	}
}

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithFFprobePath sets the ffprobe binary path.
func WithFFprobePath(p string) Option {
	return func(s *Service) {
		s.ffprobePath = p
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches the progress reporter.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock overrides time.Now, which names job directories.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service, filling defaults for anything unset.
func NewService(opts ...Option) *Service {
	s := &Service{settings: model.DefaultSettings()}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner(s.logger)
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Settings returns the configuration the service applies to jobs.
func (s *Service) Settings() model.Settings { return s.settings }

// Result is the outcome of RunJob.
type Result struct {
	JobID      string
	URL        string
	Title      string
	Status     model.Status
	WorkDir    string
	OutputPath string
	Bytes      int64
	Probe      model.ProbeResult
	Decision   model.BitrateDecision
}

// RunJob executes the full pipeline for one job. Stages run strictly in
// order and every status change is reported. The terminal status is done,
// failed or cancelled (when ctx is cancelled), and exactly one
// progress.Result is emitted.
func (s *Service) RunJob(ctx context.Context, job model.Job) (Result, error) {
	jr := &jobRun{
		svc:    s,
		job:    job,
		status: model.StatusQueued,
		logger: s.logger.With("job", job.ShortID()),
		res:    Result{JobID: job.ID, URL: job.URL, Title: job.Title},
	}
	err := jr.run(ctx)
	jr.finish(ctx, err)
	return jr.res, err
}

// jobRun holds the mutable state of one RunJob call.
type jobRun struct {
	svc    *Service
	job    model.Job
	status model.Status
	logger *log.Logger
	res    Result

	workDir string
	tempDir string
	source  string
	final   string
}

func (r *jobRun) run(ctx context.Context) error {
	s := r.svc
	st := s.settings

	url, err := util.ValidateURL(r.job.URL)
	if err != nil {
		if errors.Is(err, util.ErrEmptyURL) {
			return fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		return err
	}
	r.job.URL = url
	r.res.URL = url
	if err := r.job.Clip.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidClip, err)
	}
	if s.dlPath == "" || s.ffmpegPath == "" || s.ffprobePath == "" {
		return errors.New("downloader, ffmpeg and ffprobe paths are required")
	}
	r.logger = r.logger.With("url", url, "platform", util.DetectPlatform(url))

	if err := util.EnsureDir(st.OutDir); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}
	r.workDir = util.UniquePath(filepath.Join(st.OutDir, media.JobDirName(s.now(), r.job.ShortID())))
	r.tempDir = filepath.Join(r.workDir, media.TempDirName)
	if err := util.EnsureDir(r.tempDir); err != nil {
		return fmt.Errorf("create job directory: %w", err)
	}
	r.res.WorkDir = r.workDir
	r.logf("Job folder: %s", r.workDir)
	r.advance(model.StatusDownloading, "Fetching metadata")
	if err := ctx.Err(); err != nil {
		return err
	}

	title := r.job.Title
	if title == "" {
		pv, err := downloader.FetchMetadata(ctx, url, downloader.Options{
			DownloaderPath: s.dlPath,
			Runner:         s.runner,
			Logger:         r.logger,
		})
		switch {
		case errors.Is(err, downloader.ErrBadMetadata):
			r.logger.Warn("metadata unreadable, using default title", "err", err)
		case err != nil:
			return err
		}
		title = pv.Title
	}
	if title == "" {
		title = "video"
	}
	r.res.Title = title
	r.svc.reporter.Update(progress.Update{
		JobID: r.job.ID, Stage: r.status, Percent: -1, Title: title, URL: url, Message: "Downloading",
	})
	r.logf("Title: %s", title)
	if r.job.Clip.Requested() {
		end := "end"
		if r.job.Clip.End != nil {
			end = timefmt.Format(*r.job.Clip.End)
		}
		r.logf("Segment: %s - %s", timefmt.Format(r.job.Clip.StartSec()), end)
	}

	src, err := downloader.Download(ctx, url, downloader.Options{
		DownloaderPath: s.dlPath,
		WorkDir:        r.workDir,
		TempDir:        r.tempDir,
		Fragments:      st.ConcurrentFragments,
		Clip:           r.job.Clip,
		Runner:         s.runner,
		Reporter:       s.reporter,
		Logger:         r.logger,
		JobID:          r.job.ID,
	})
	if err != nil {
		return err
	}
	r.source = src
	r.logger.Info("downloaded", "source", filepath.Base(src))

	r.advance(model.StatusProbing, "Probing codecs")
	pr := probe.New(s.ffprobePath, s.runner, r.logger)
	info, err := pr.Probe(ctx, src, func(got model.ProbeResult) bool {
		return needsDuration(st, got)
	})
	if err != nil {
		return err
	}
	r.res.Probe = info
	r.logf("Codecs: video=%s audio=%s", info.VideoCodec, info.AudioCodec)

	decision := Decide(st, info, r.job.Clip.Requested())
	r.res.Decision = decision
	r.final = filepath.Join(r.workDir, media.FinalName(title))
	if decision.Mode != model.ModePassthrough || r.final != src {
		r.final = util.UniquePath(r.final)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch decision.Mode {
	case model.ModePassthrough:
		r.advance(model.StatusSkippingTranscode, "Already H.264/AAC, skipping transcode")
		if err := os.Rename(src, r.final); err != nil {
			return fmt.Errorf("rename source: %w", err)
		}
	case model.ModeRemux:
		r.advance(model.StatusTranscoding, "Copying streams")
		if err := r.encode(ctx, encoder.BuildRemuxArgs(src, r.final, true), "Remuxing", info.DurationSec); err != nil {
			return err
		}
	default:
		r.logf("Target bitrate: %s (%s)", format.HumanizeBitrate(int64(decision.TargetMbit)*1_000_000), decision.Mode)
		r.advance(model.StatusTranscoding, "Transcoding")
		args := encoder.BuildTranscodeArgs(src, r.final, encoder.Params{
			Mbit:      decision.TargetMbit,
			Preset:    st.Preset,
			AudioKbps: st.AudioBitrateKbps,
		}, true)
		if err := r.encode(ctx, args, "Transcoding", info.DurationSec); err != nil {
			return err
		}
	}

	r.advance(model.StatusCleaningUp, "Cleaning up")
	if r.source != r.final {
		if err := util.RemoveIfExists(r.source); err != nil {
			r.logger.Warn("remove source", "err", err)
		}
	}
	if !st.KeepTemp {
		if err := os.RemoveAll(r.tempDir); err != nil {
			r.logger.Warn("remove temp dir", "err", err)
		}
	}
	if st.FolderMode == model.FolderShared {
		if err := r.moveToShared(); err != nil {
			return err
		}
	}

	fi, err := os.Stat(r.final)
	if err != nil {
		return fmt.Errorf("stat final file: %w", err)
	}
	r.res.OutputPath = r.final
	r.res.Bytes = fi.Size()
	return nil
}

func (r *jobRun) encode(ctx context.Context, args []string, label string, durationSec float64) error {
	s := r.svc
	_, err := encoder.Run(ctx, args, encoder.Options{
		FFmpegPath:  s.ffmpegPath,
		OutputPath:  r.final,
		DurationSec: durationSec,
		Stage:       model.StatusTranscoding,
		Label:       label,
		Runner:      s.runner,
		Reporter:    s.reporter,
		Logger:      r.logger,
		JobID:       r.job.ID,
	})
	return err
}

func (r *jobRun) moveToShared() error {
	st := r.svc.settings
	shared := filepath.Join(st.OutDir, model.SharedFolderName)
	if err := util.EnsureDir(shared); err != nil {
		return fmt.Errorf("create shared folder: %w", err)
	}
	dst := util.UniquePath(filepath.Join(shared, filepath.Base(r.final)))
	if err := util.MoveFile(r.final, dst); err != nil {
		return fmt.Errorf("move to shared folder: %w", err)
	}
	r.final = dst
	if !st.KeepTemp {
		if err := os.RemoveAll(r.workDir); err != nil {
			r.logger.Warn("remove job dir", "err", err)
		}
	}
	return nil
}

// finish settles the terminal status, applies the retention policy and
// emits the single Result for the job.
func (r *jobRun) finish(ctx context.Context, err error) {
	st := r.svc.settings
	switch {
	case err == nil:
		r.advance(model.StatusDone, "Saved: "+filepath.Base(r.res.OutputPath)+" ("+format.HumanizeBytes(r.res.Bytes)+")")
		r.logf("Done: %s", r.res.OutputPath)
		r.logger.Info("job done", "output", r.res.OutputPath, "bytes", r.res.Bytes, "mode", r.res.Decision.Mode)
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		r.advance(model.StatusCancelled, "Cancelled")
		r.logf("Cancelled")
		r.logger.Info("job cancelled")
		if r.workDir != "" {
			_ = os.RemoveAll(r.workDir)
		}
	default:
		r.advance(model.StatusFailed, err.Error())
		r.logf("Error: %v", err)
		r.logger.Error("job failed", "err", err)
		if r.workDir != "" {
			if !st.KeepTemp {
				_ = os.RemoveAll(r.tempDir)
			}
			if !st.KeepFailed {
				_ = os.RemoveAll(r.workDir)
			}
		}
	}
	r.res.Status = r.status

	r.svc.reporter.Result(progress.Result{
		JobID:      r.job.ID,
		URL:        r.res.URL,
		Title:      r.res.Title,
		Status:     r.status,
		OutputPath: r.res.OutputPath,
		Bytes:      r.res.Bytes,
		Decision:   r.res.Decision,
		Err:        err,
	})
}

// advance moves the job to status to, ignoring backwards transitions.
func (r *jobRun) advance(to model.Status, msg string) {
	if !model.CanAdvance(r.status, to) {
		r.logger.Warn("ignored status transition", "from", r.status, "to", to)
		return
	}
	r.status = to
	percent := -1.0
	if to == model.StatusDone {
		percent = 100
	}
	r.logger.Debug("status", "status", to)
	r.svc.reporter.Update(progress.Update{
		JobID:   r.job.ID,
		Stage:   to,
		Percent: percent,
		Message: msg,
		URL:     r.res.URL,
	})
}

// logf emits a human-readable line for the job's log panel.
func (r *jobRun) logf(msg string, args ...any) {
	r.svc.reporter.Log(progress.Log{
		JobID:  r.job.ID,
		Stream: progress.StreamApp,
		Line:   fmt.Sprintf(msg, args...),
	})
}
