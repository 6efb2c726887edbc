package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
)

type relationsFlags struct {
	relType string
	depth   int
	format  string
}

func newRelationsCmd() *cobra.Command {
	var flags relationsFlags

	cmd := &cobra.Command{
		Use:   "relations <dependency>",
		Short: "List relationships for a dependency",
		Long: `Shows the relationships connected to a dependency, with optional filtering.
With --depth above 1 the dependencies reachable within that many hops are listed too.

Examples:
  resil relations Payments
  resil relations Payments --type feeds_into
  resil relations "Core banking" --depth 3 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelations(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.relType, "type", "", "Filter by relationship type")
	cmd.Flags().IntVar(&flags.depth, "depth", 1, "Traversal depth (1-5)")
	cmd.Flags().StringVar(&flags.format, "format", "tree", "Output format: tree, list, json")

	return cmd
}

func runRelations(cmd *cobra.Command, ref string, flags relationsFlags) error {
	if flags.depth < 1 || flags.depth > MaxRelationsDepth {
		return fmt.Errorf("depth must be between 1 and %d", MaxRelationsDepth)
	}
	if !slices.Contains(validRelationsFormats, flags.format) {
		return fmt.Errorf("invalid format: %s (valid: %s)", flags.format, strings.Join(validRelationsFormats, ", "))
	}

	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		result, err := d.Relationships.HandleList(ctx, ref, handlers.ListOptions{
			Type:  flags.relType,
			Depth: flags.depth,
		})
		if err != nil {
			return fmt.Errorf("listing relationships: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Relationships) == 0 && flags.format != "json" {
			fmt.Fprintf(out, "No relationships found for dependency: %s\n", result.Dependency.Name)
			return nil
		}

		return printRelations(out, result, flags.format)
	})
}

func printRelations(w io.Writer, result *handlers.ListResult, format string) error {
	switch format {
	case "json":
		return printRelationsJSON(w, result)
	case "list":
		printRelationsList(w, result)
	default:
		printRelationsTree(w, result)
	}
	return nil
}

func printRelationsJSON(w io.Writer, result *handlers.ListResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printRelationsList(w io.Writer, result *handlers.ListResult) {
	fmt.Fprintf(w, "Relationships for %s:\n", result.Dependency.Name)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, info := range result.Relationships {
		rel := info.Relationship
		fmt.Fprintf(w, "%s -> [%s] -> %s  (likelihood %g, delay %gm)  %s\n",
			info.SourceName, rel.Type, info.TargetName, rel.Likelihood, rel.DelayMinutes, rel.ID)
	}
	printRelated(w, result)
}

func printRelationsTree(w io.Writer, result *handlers.ListResult) {
	root := result.Dependency
	fmt.Fprintf(w, "%s\n", root.Name)

	for i, info := range result.Relationships {
		rel := info.Relationship

		prefix := "+-"
		if i == len(result.Relationships)-1 {
			prefix = "\\-"
		}

		// Outgoing edges point away from the root, incoming edges toward it.
		if rel.SourceID == root.ID {
			fmt.Fprintf(w, "%s %s -> %s\n", prefix, rel.Type, info.TargetName)
		} else {
			fmt.Fprintf(w, "%s %s <- %s\n", prefix, rel.Type, info.SourceName)
		}
	}
	printRelated(w, result)
}

func printRelated(w io.Writer, result *handlers.ListResult) {
	if len(result.Related) == 0 {
		return
	}
	names := make([]string, 0, len(result.Related))
	for _, dep := range result.Related {
		names = append(names, dep.Name)
	}
	fmt.Fprintf(w, "\nReachable (%d): %s\n", len(names), strings.Join(names, ", "))
}
