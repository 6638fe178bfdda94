package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tubeshift/internal/dirs"
	"tubeshift/internal/history"
)

func newHistoryCmd(_ *app) *cobra.Command {
	var (
		asJSON   bool
		clearAll bool
		remove   string
	)
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List, prune or clear finished jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := dirs.HistoryFile()
			if err != nil {
				return wrapCLI("history: %w", err)
			}
			store, err := history.Open(p)
			if err != nil {
				return wrapCLI("history: %w", err)
			}
			out := cmd.OutOrStdout()

			switch {
			case clearAll:
				n, err := store.Clear()
				if err != nil {
					return wrapCLI("clear history: %w", err)
				}
				fmt.Fprintf(out, "Removed %d entries\n", n)
				return nil
			case remove != "":
				ok, err := store.Remove(resolveID(store.Items(), remove))
				if err != nil {
					return wrapCLI("remove: %w", err)
				}
				if !ok {
					return wrapCLI("remove: %w", fmt.Errorf("no finished job %q", remove))
				}
				fmt.Fprintf(out, "Removed %s\n", remove)
				return nil
			}

			items := store.Items()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No jobs yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tSTATUS\tCREATED\tTITLE\tRESULT")
			for _, r := range items {
				result := r.Path
				if r.Error != "" {
					result = r.Error
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.Seq, shortID(r.TaskID), r.Status, r.CreatedAt.Local().Format(time.DateTime), truncateRunes(r.Title, 50), result)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all finished jobs")
	cmd.Flags().StringVar(&remove, "remove", "", "Remove one finished job by ID")
	cmd.MarkFlagsMutuallyExclusive("clear", "remove", "json")
	return cmd
}

// resolveID expands a unique ID prefix, such as the short form the table
// prints, to the full task ID.
func resolveID(items []history.Record, id string) string {
	match := ""
	for _, r := range items {
		if r.TaskID == id {
			return id
		}
		if strings.HasPrefix(r.TaskID, id) {
			if match != "" {
				return id
			}
			match = r.TaskID
		}
	}
	if match == "" {
		return id
	}
	return match
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
