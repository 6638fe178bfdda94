package cmd

import (
	"github.com/spf13/cobra"
)

func newTuiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tui [urls...]",
		Short:         "Open the interactive queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExecute(cmd, args, runMode{ForceTUI: true})
		},
	}
	bindRunFlags(cmd.Flags())
	if f := cmd.Flags().Lookup("no-ui"); f != nil {
		f.Hidden = true
	}
	return cmd
}
