package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/propfmt/step"
)

func newCheckCmd() *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Report .properties files that are not formatted",
		Long: `Report .properties files that are not formatted, with a diff of the
changes apply would make. Exits with status 1 if any file would change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd, step.KindCheck, &flags, args)
		},
	}
	flags.register(cmd)

	return cmd
}
