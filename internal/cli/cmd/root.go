package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"tubeshift/internal/config"
	"tubeshift/internal/dirs"
	"tubeshift/internal/logging"
	"tubeshift/internal/model"
	"tubeshift/internal/pipeline"
)

const (
	ExitOK             = 0
	ExitCLIError       = 1
	ExitMissingDep     = 2
	ExitDownloadError  = 3
	ExitTranscodeError = 4
	ExitProbeError     = 5
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCodeFor maps a job error onto the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, pipeline.ErrDownload), errors.Is(err, pipeline.ErrMissingSource),
		errors.Is(err, pipeline.ErrBadMetadata):
		return ExitDownloadError
	case errors.Is(err, pipeline.ErrTranscode):
		return ExitTranscodeError
	case errors.Is(err, pipeline.ErrProbe):
		return ExitProbeError
	default:
		return ExitCLIError
	}
}

// app holds what the persistent pre-run resolves for every subcommand.
type app struct {
	v          *viper.Viper
	configFile string

	settings model.Settings
	runtime  config.Runtime

	logger   *log.Logger
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "tubeshift [urls...]",
		Short: "Download videos and make them play everywhere",
		Long: "tubeshift downloads videos with yt-dlp, checks their codecs with ffprobe and, " +
			"only when needed, re-encodes them to H.264/AAC MP4 with ffmpeg. Jobs run in a " +
			"small worker pool; in a terminal an interactive queue is shown.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: a.preRun,
		PersistentPostRun: func(*cobra.Command, []string) { a.shutdown() },
		RunE: func(cmd *cobra.Command, args []string) error {
			noUI, _ := cmd.Flags().GetBool("no-ui")
			if len(args) == 0 && (noUI || !isTerminal()) {
				_ = cmd.Help()
				return &ExitError{Code: ExitCLIError, Err: errors.New("no URLs given")}
			}
			return a.runExecute(cmd, args, runMode{ForceTUI: false})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default: <config dir>/config.yaml)")
	pf.StringP("out-dir", "o", "", "Root output directory")
	pf.String("bitrate-mode", "", "Re-encode bitrate: dynamic or fixed")
	pf.Int("fixed-bitrate", 0, "Video bitrate in Mbit/s for --bitrate-mode fixed")
	pf.Int("audio-bitrate", 0, "AAC bitrate in kbit/s")
	pf.String("preset", "", "x264 preset, e.g. slow, medium, fast")
	pf.String("folder-mode", "", "per-job keeps each job folder; shared collects files in one folder")
	pf.Bool("keep-temp", false, "Keep the downloader's temp folder")
	pf.Bool("keep-failed", true, "Keep the job folder of failed jobs")
	pf.IntP("jobs", "j", 0, "Concurrent jobs")
	pf.IntP("fragments", "N", 0, "Concurrent fragment downloads per job")
	pf.String("dl-binary", "", "Path to yt-dlp or youtube-dl")
	pf.String("ffmpeg-binary", "", "Path to ffmpeg")
	pf.String("ffprobe-binary", "", "Path to ffprobe")
	pf.BoolP("verbose", "v", false, "Show subprocess output")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	bindRunFlags(root.Flags())

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newTuiCmd(a))
	root.AddCommand(newPreviewCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newDoctorCmd(a))
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.String("start", "", "Clip start, e.g. 1:30 or 90")
	fs.String("end", "", "Clip end, e.g. 2:45.5")
	fs.Bool("no-ui", false, "Disable the interactive queue; print plain progress")
}

// preRun resolves configuration for every command.
func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	if err := config.Init(a.v, cmd.Flags(), a.configFile); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	s, err := config.Load(a.v)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	a.settings = s
	a.runtime = config.LoadRuntime(a.v)
	return nil
}

// initLogger opens the debug log in the state dir. Console output is off in
// the TUI so it cannot tear the screen.
func (a *app) initLogger(console bool) error {
	if a.logger != nil {
		return nil
	}
	opts := logging.Options{Level: a.runtime.LogLevel, Verbose: a.settings.Verbose}
	if console {
		opts.Stderr = os.Stderr
	}
	if p, err := dirs.LogFile(); err == nil {
		opts.File = p
	}
	logger, closeFn, err := logging.New(opts)
	if err != nil && opts.File != "" {
		// Fall back to console-only logging when the state dir is not writable.
		opts.File = ""
		logger, closeFn, err = logging.New(opts)
	}
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	a.logger, a.closeLog = logger, closeFn
	return nil
}

func (a *app) shutdown() {
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func wrapCLI(format string, err error) error {
	return &ExitError{Code: ExitCLIError, Err: fmt.Errorf(format, err)}
}
