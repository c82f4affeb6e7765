package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/propfmt/format"
	"github.com/dhamidi/propfmt/project"
	"github.com/dhamidi/propfmt/step"
)

func newFmtCmd() *cobra.Command {
	var fmtOverwrite bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Format a .properties file to stdout",
		Long: `Format a .properties file to stdout.

If no file is provided, reads from stdin. Options come from the propfmt.toml
nearest to the file (or to the working directory for stdin), or the
defaults when there is none.

Use -w to overwrite the file in place (requires a file argument).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source []byte
			var err error
			var filename string
			dir := "."

			if len(args) == 0 {
				if fmtOverwrite {
					return fmt.Errorf("-w requires a file argument")
				}
				source, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			} else {
				filename = args[0]
				if ext := filepath.Ext(filename); ext != ".properties" {
					return fmt.Errorf("expected .properties file, got %q", ext)
				}
				source, err = os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
				dir = filepath.Dir(filename)
			}

			proj, err := project.LoadFrom(dir)
			if err != nil {
				return err
			}
			opts, err := proj.FormatOptions()
			if err != nil {
				return err
			}

			output, err := format.FormatPropertiesFile(source, filename, opts)
			if err != nil {
				return fmt.Errorf("format: %w", err)
			}

			if fmtOverwrite {
				return step.WriteFileAtomic(filename, output)
			}
			_, err = cmd.OutOrStdout().Write(output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")

	return cmd
}
