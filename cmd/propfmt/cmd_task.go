package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dhamidi/propfmt/project"
	"github.com/dhamidi/propfmt/step"
)

var (
	outcomeSuccess = color.New(color.FgGreen, color.Bold)
	outcomeSkipped = color.New(color.FgYellow)
	outcomeFailed  = color.New(color.FgRed, color.Bold)
	diffAdded      = color.New(color.FgGreen)
	diffRemoved    = color.New(color.FgRed)
	diffHeader     = color.New(color.Bold)
)

type taskFlags struct {
	jobs    int
	noCache bool
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "files formatted in parallel (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "ignore the up-to-date cache")
}

// runTask runs kind over args, or over every project file when args is
// empty, and prints the outcome.
func runTask(cmd *cobra.Command, kind step.Kind, flags *taskFlags, args []string) error {
	proj, err := project.Load()
	if err != nil {
		return err
	}
	opts, err := proj.FormatOptions()
	if err != nil {
		return err
	}

	files, err := taskFiles(proj, args)
	if err != nil {
		return err
	}

	runnerOpts := []step.RunnerOption{step.WithJobs(flags.jobs)}
	if !flags.noCache {
		cache, err := step.OpenCache(proj.RootDir)
		if err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, step.WithCache(cache))
	}

	task := step.NewApplyTask(files, opts)
	if kind == step.KindCheck {
		task = step.NewCheckTask(files, opts)
	}

	result, err := step.NewRunner(runnerOpts...).Run(cmd.Context(), task)
	printResult(cmd.OutOrStdout(), proj, result)
	return err
}

func taskFiles(proj *project.Project, args []string) ([]string, error) {
	if len(args) == 0 {
		return proj.Files()
	}
	files := make([]string, len(args))
	for i, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		files[i] = abs
	}
	return files, nil
}

func printResult(w io.Writer, proj *project.Project, result *step.Result) {
	for _, f := range result.Changed() {
		if f.Diff != "" {
			printDiff(w, f.Diff)
		}
	}
	for _, f := range result.Failed() {
		fmt.Fprintf(w, "%s %s\n", outcomeFailed.Sprint("error:"), f.Err)
	}

	var c *color.Color
	switch result.Outcome {
	case step.OutcomeSuccess:
		c = outcomeSuccess
	case step.OutcomeFailed:
		c = outcomeFailed
	default:
		c = outcomeSkipped
	}
	fmt.Fprintf(w, "> Task :%s %s\n", result.Task, c.Sprint(result.Outcome))

	if changed := result.Changed(); len(changed) > 0 {
		verb := "formatted"
		if result.Task == step.CheckTaskName {
			verb = "not formatted"
		}
		for _, f := range changed {
			fmt.Fprintf(w, "  %s: %s\n", verb, proj.Rel(f.Path))
		}
	}
}

func printDiff(w io.Writer, diff string) {
	for _, line := range splitLines(diff) {
		switch {
		case len(line) >= 3 && (line[:3] == "---" || line[:3] == "+++"):
			diffHeader.Fprint(w, line)
		case len(line) > 0 && line[0] == '+':
			diffAdded.Fprint(w, line)
		case len(line) > 0 && line[0] == '-':
			diffRemoved.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

// splitLines keeps the line terminators.
func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:]+"\n")
	}
	return lines
}
