package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
	"tubeshift/internal/ui"
	"tubeshift/internal/util"
	"tubeshift/internal/util/deps"
	"tubeshift/internal/util/timefmt"
)

type runMode struct {
	ForceTUI bool
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run <urls...>",
		Short:         "Download and convert URLs with plain progress output",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExecute(cmd, args, runMode{})
		},
	}
	bindRunFlags(cmd.Flags())
	if f := cmd.Flags().Lookup("no-ui"); f != nil {
		_ = cmd.Flags().Set("no-ui", "true")
		f.Hidden = true
	}
	return cmd
}

// buildJobs validates the URLs and the clip flags and creates one job per URL.
func buildJobs(cmd *cobra.Command, args []string) ([]model.Job, error) {
	clip, err := clipFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	jobs := make([]model.Job, 0, len(args))
	for _, raw := range args {
		url, err := util.ValidateURL(raw)
		if err != nil {
			return nil, err
		}
		j := model.NewJob(url)
		j.Clip = clip
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func clipFromFlags(cmd *cobra.Command) (model.Clip, error) {
	var clip model.Clip
	for _, side := range []struct {
		flag string
		dst  **float64
	}{
		{"start", &clip.Start},
		{"end", &clip.End},
	} {
		raw, _ := cmd.Flags().GetString(side.flag)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		sec, err := timefmt.Parse(raw)
		if err != nil {
			return model.Clip{}, fmt.Errorf("invalid --%s %q: %w", side.flag, raw, err)
		}
		*side.dst = &sec
	}
	if err := clip.Validate(); err != nil {
		return model.Clip{}, fmt.Errorf("invalid clip: %w", err)
	}
	return clip, nil
}

func (a *app) runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	jobs, err := buildJobs(cmd, args)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	noUI, _ := cmd.Flags().GetBool("no-ui")
	useTUI := mode.ForceTUI || (!noUI && isTerminal())
	if useTUI && !isTerminal() {
		return &ExitError{Code: ExitCLIError, Err: errors.New("the interactive queue needs a terminal; use 'tubeshift run'")}
	}

	if err := a.initLogger(!useTUI && a.settings.Verbose); err != nil {
		return err
	}

	paths, err := deps.FindAll(a.runtime.Tools.Downloader, a.runtime.Tools.FFmpeg, a.runtime.Tools.FFprobe)
	if err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}
	if err := util.EnsureDir(a.settings.OutDir); err != nil {
		return wrapCLI("create output dir: %w", err)
	}
	a.logger.Debug("starting", "jobs", len(jobs), "workers", a.settings.Jobs, "out", a.settings.OutDir, "tui", useTUI)

	if useTUI {
		return a.runTUI(cmd, jobs, paths)
	}
	return a.runPlain(cmd, jobs, paths)
}

func (a *app) runTUI(cmd *cobra.Command, jobs []model.Job, paths deps.Paths) error {
	s := a.newSession(cmd.Context(), paths)
	opts := ui.Options{
		Queue:     s.pool,
		Events:    s.events,
		Previewer: s.preview,
		Settings:  a.settings,
		Initial:   jobs,
		Logger:    a.logger,
	}
	if s.store != nil {
		opts.History = s.store
	}
	err := ui.Run(cmd.Context(), opts)
	s.pool.CancelAll()
	s.drainAndClose()
	if errors.Is(err, ui.ErrJobsFailed) {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return &ExitError{Code: ExitCLIError}
	}
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return nil
}

func (a *app) runPlain(cmd *cobra.Command, jobs []model.Job, paths deps.Paths) error {
	s := a.newSession(cmd.Context(), paths)
	p := newPrinter(cmd.OutOrStdout(), a.settings.Verbose)

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for ev := range s.events {
			progress.Dispatch(ev, p)
		}
	}()

	for _, j := range jobs {
		if err := s.pool.Submit(j); err != nil {
			a.logger.Error("submit", "url", j.URL, "err", err)
		}
	}
	s.pool.Close()
	_ = s.pool.Wait()
	close(s.events)
	<-consumed
	s.stopMetrics()

	// The first failure in submission order decides the exit code.
	for _, j := range jobs {
		res, ok := p.results[j.ID]
		if !ok || res.Status == model.StatusDone {
			continue
		}
		if res.Status == model.StatusCancelled {
			return &ExitError{Code: ExitCLIError, Err: errors.New("cancelled")}
		}
		return &ExitError{Code: exitCodeFor(res.Err)}
	}
	return nil
}
