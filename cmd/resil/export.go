package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <scenario-id>",
		Short: "Export a scenario's last result",
		Long:  "Exports a scenario's stored simulation result as JSON, CSV, or a markdown report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", handlers.ExportJSON, "Output format ("+strings.Join(handlers.ValidExportFormats, ", ")+")")
	cmd.Flags().StringVar(&flags.output, "output", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, id string, flags exportFlags) error {
	if flags.format != "md" && !slices.Contains(handlers.ValidExportFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, handlers.ValidExportFormats)
	}

	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		w, closeFn, err := openOutput(cmd.OutOrStdout(), flags.output)
		if err != nil {
			return err
		}

		if err := d.Exports.Handle(ctx, id, flags.format, w); err != nil {
			_ = closeFn()
			return fmt.Errorf("exporting scenario: %w", err)
		}
		if err := closeFn(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}

		if flags.output != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported scenario %s to %s\n", id, flags.output)
		}
		return nil
	})
}

// openOutput returns the file at path, or stdout when path is empty.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return file, file.Close, nil
}
