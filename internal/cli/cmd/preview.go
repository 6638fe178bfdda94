package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"tubeshift/internal/preview"
	"tubeshift/internal/util/deps"
	"tubeshift/internal/util/timefmt"
)

func newPreviewCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:           "preview <url>",
		Short:         "Show title, duration and thumbnail without downloading",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initLogger(a.settings.Verbose); err != nil {
				return err
			}
			dl, err := deps.FindDownloader(a.runtime.Tools.Downloader)
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			res := preview.New(dl, a.logger).Fetch(cmd.Context(), args[0])
			if res.Err != nil {
				return &ExitError{Code: exitCodeFor(res.Err), Err: res.Err}
			}
			out := cmd.OutOrStdout()
			p := res.Preview
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"id":           p.ID,
					"title":        p.Title,
					"uploader":     p.Uploader,
					"thumbnail":    p.Thumbnail,
					"duration":     p.DurationSec,
					"duration_str": previewDuration(p.DurationSec, p.DurationString),
					"webpage_url":  p.WebpageURL,
				})
			}
			fmt.Fprintf(out, "Title:     %s\n", p.Title)
			if p.Uploader != "" {
				fmt.Fprintf(out, "Uploader:  %s\n", p.Uploader)
			}
			if d := previewDuration(p.DurationSec, p.DurationString); d != "" {
				fmt.Fprintf(out, "Duration:  %s\n", d)
			}
			if p.Thumbnail != "" {
				fmt.Fprintf(out, "Thumbnail: %s\n", p.Thumbnail)
			}
			if p.WebpageURL != "" {
				fmt.Fprintf(out, "URL:       %s\n", p.WebpageURL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func previewDuration(sec float64, fallback string) string {
	if sec > 0 {
		return timefmt.Format(sec)
	}
	return fallback
}
