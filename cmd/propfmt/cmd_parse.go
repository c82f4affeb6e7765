package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/propfmt/format"
	"github.com/dhamidi/propfmt/project"
	"github.com/dhamidi/propfmt/properties"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var charset string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a .properties file and dump its key/value pairs",
		Long: `Parse a .properties file, or stdin, and print the decoded key/value pairs
in file order. A key defined twice keeps its first position and its last
value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoder, ok := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if !ok {
				return fmt.Errorf("unknown format: %s (expected line, json or yaml)", outputFormat)
			}

			cs, err := parseCharset(charset)
			if err != nil {
				return err
			}

			var data []byte
			var filename string
			if len(args) == 0 {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			} else {
				filename = args[0]
				data, err = os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
			}

			doc, err := properties.ParseBytes(data, filename, cs)
			if err != nil {
				return err
			}
			if err := encoder.Encode(doc); err != nil {
				return fmt.Errorf("encode %s: %w", outputFormat, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "line", "output format (line, json, yaml)")
	cmd.Flags().StringVar(&charset, "charset", "", "file charset (default from propfmt.toml)")

	return cmd
}

// parseCharset resolves an explicit charset name, falling back to the
// project's configured charset.
func parseCharset(name string) (properties.Charset, error) {
	if name != "" {
		return properties.ParseCharset(name)
	}
	proj, err := project.Load()
	if err != nil {
		return properties.UTF8, err
	}
	opts, err := proj.FormatOptions()
	if err != nil {
		return properties.UTF8, err
	}
	return opts.Charset, nil
}
