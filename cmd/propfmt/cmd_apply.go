package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/propfmt/step"
)

func newApplyCmd() *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "apply [file...]",
		Short: "Format the project's .properties files in place",
		Long: `Format .properties files in place.

Without arguments every file matched by the project's include and exclude
patterns is formatted. Files whose content and options are unchanged since
the last run are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd, step.KindApply, &flags, args)
		},
	}
	flags.register(cmd)

	return cmd
}
