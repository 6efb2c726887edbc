package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
)

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import dependencies, relationships and metrics",
		Long: `Imports a dependency graph from a structured file. JSON and YAML documents
may carry dependencies, relationships and metric readings. A CSV file carries one
kind of row, chosen by its header.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, yaml, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	if flags.onConflict != "skip" && flags.onConflict != "overwrite" {
		return fmt.Errorf("invalid --on-conflict value %q (valid: skip, overwrite)", flags.onConflict)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withDeps(func(d *Deps) error {
		opts := handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: flags.onConflict,
		}

		fmt.Fprintf(out, "Importing %s...\n", filePath)

		result, err := d.Imports.Handle(ctx, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Fprintf(out, "\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s\n", e.Error())
			}
		}

		fmt.Fprintln(out)
		verb := "Imported"
		if flags.dryRun {
			verb = "Dry run, would import"
		}
		fmt.Fprintf(out, "%s: %d dependencies, %d relationships, %d metric readings",
			verb, result.Dependencies, result.Relationships, result.MetricPoints)

		if result.Skipped > 0 {
			fmt.Fprintf(out, ", %d skipped (already exist)", result.Skipped)
		}
		if len(result.Errors) > 0 {
			fmt.Fprintf(out, ", %d errors", len(result.Errors))
		}
		fmt.Fprintln(out)

		return nil
	})
}
