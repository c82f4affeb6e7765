package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/propfmt/codebase"
	"github.com/dhamidi/propfmt/project"
	"github.com/dhamidi/propfmt/step"
)

func newWatchCmd() *cobra.Command {
	var flags taskFlags
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Format .properties files whenever they change",
		Long: `Run the apply task once, then poll the project's .properties files and
format each one again after it is modified. Stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Load()
			if err != nil {
				return err
			}
			opts, err := proj.FormatOptions()
			if err != nil {
				return err
			}

			if err := runTask(cmd, step.KindApply, &flags, nil); err != nil {
				log.Warningf("initial run: %s", err)
			}

			runner := step.NewRunner(step.WithJobs(flags.jobs))
			w := codebase.NewFileWatcher(proj.Files, func(ctx context.Context, paths []string) {
				result, err := runner.Run(ctx, step.NewApplyTask(paths, opts))
				printResult(cmd.OutOrStdout(), proj, result)
				if err != nil {
					log.Errorf("%s", err)
				}
			})
			w.SetInterval(interval)

			log.Noticef("watching %s", proj.RootDir)
			return w.Run(cmd.Context())
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "polling interval")

	return cmd
}
