package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/propfmt/project"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show project configuration and files",
		Long:  `Display the detected project root, its configuration and the .properties files it covers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runProject(w io.Writer) error {
	proj, err := project.Load()
	if err != nil {
		return err
	}
	opts, err := proj.FormatOptions()
	if err != nil {
		return err
	}

	config := proj.ConfigPath
	if config == "" {
		config = "(defaults)"
	}
	fmt.Fprintf(w, "Root:      %s\n", proj.RootDir)
	fmt.Fprintf(w, "Config:    %s\n", config)
	fmt.Fprintf(w, "Separator: %q\n", opts.Separator)
	fmt.Fprintf(w, "Charset:   %s\n", opts.Charset)
	fmt.Fprintf(w, "Sort keys: %t\n", opts.SortKeys)

	files, err := proj.Files()
	if err != nil {
		fmt.Fprintf(w, "\nFiles: error: %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "\nFiles (%d):\n", len(files))
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", proj.Rel(f))
	}

	return nil
}
