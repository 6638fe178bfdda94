package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tubeshift/internal/dirs"
	"tubeshift/internal/util"
	"tubeshift/internal/util/deps"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Check yt-dlp, ffmpeg and ffprobe and show resolved paths",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.initLogger(a.settings.Verbose); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tools := []struct {
				name    string
				find    func(string) (string, error)
				custom  string
				version []string
			}{
				{"Downloader", deps.FindDownloader, a.runtime.Tools.Downloader, []string{"--version"}},
				{"FFmpeg", deps.FindFFmpeg, a.runtime.Tools.FFmpeg, []string{"-hide_banner", "-version"}},
				{"FFprobe", deps.FindFFprobe, a.runtime.Tools.FFprobe, []string{"-hide_banner", "-version"}},
			}
			var missing []error
			for _, t := range tools {
				p, err := t.find(t.custom)
				if err != nil {
					fmt.Fprintf(out, "%-11s missing (%v)\n", t.name+":", err)
					missing = append(missing, err)
					continue
				}
				fmt.Fprintf(out, "%-11s %s", t.name+":", p)
				if v := toolVersion(cmd.Context(), a, p, t.version); v != "" {
					fmt.Fprintf(out, "  [%s]", v)
				}
				fmt.Fprintln(out)
			}
			printPaths(out, a)
			if err := errors.Join(missing...); err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			return nil
		},
	}
}

// toolVersion returns the first line of the tool's version output.
func toolVersion(ctx context.Context, a *app, path string, args []string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := util.Run(ctx, util.CmdSpec{Path: path, Args: args, CaptureStdout: true}, a.logger)
	if err != nil {
		a.logger.Debug("version check failed", "tool", path, "err", err)
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	return strings.TrimSpace(line)
}

func printPaths(out io.Writer, a *app) {
	if f := a.v.ConfigFileUsed(); f != "" {
		fmt.Fprintf(out, "%-11s %s\n", "Config:", f)
	}
	fmt.Fprintf(out, "%-11s %s\n", "Output:", a.settings.OutDir)
	if p, err := dirs.HistoryFile(); err == nil {
		fmt.Fprintf(out, "%-11s %s\n", "History:", p)
	}
	if p, err := dirs.LogFile(); err == nil {
		fmt.Fprintf(out, "%-11s %s\n", "Log:", p)
	}
}
