package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
)

func newRelateCmd() *cobra.Command {
	var opts handlers.RelationOptions

	cmd := &cobra.Command{
		Use:   "relate <source> <type> <target>",
		Short: "Create a relationship between two dependencies",
		Long: `Creates a directed edge: a failure of the source can spread to the target.
Both dependencies must already exist. Use quotes for names with spaces.

Valid relationship types:
  - ` + strings.Join(handlers.ValidRelationTypes, ", ") + `

Examples:
  resil relate "Core banking" feeds_into Payments --likelihood 0.9 --delay 15
  resil relate "Card processor" supports Payments --likelihood 0.5 --strength strong`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelate(cmd, args, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.Likelihood, "likelihood", 1.0, "Probability the failure spreads (0-1)")
	cmd.Flags().Float64Var(&opts.DelayMinutes, "delay", 0, "Minutes before the target is affected")
	cmd.Flags().StringVar(&opts.Strength, "strength", "", "Coupling label: weak, medium, strong, critical")

	cmd.AddCommand(newRelateUpdateCmd(), newRelateDeleteCmd())

	return cmd
}

func runRelate(cmd *cobra.Command, args []string, opts handlers.RelationOptions) error {
	ctx := cmd.Context()
	source, relType, target := args[0], args[1], args[2]

	return withDeps(func(d *Deps) error {
		rel, err := d.Relationships.HandleCreate(ctx, source, relType, target, opts)
		if err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created relationship: %s\n", rel.ID)
		fmt.Fprintf(out, "  %s -[%s]-> %s\n", source, rel.Type, target)
		fmt.Fprintf(out, "  likelihood %g, delay %gm\n", rel.Likelihood, rel.DelayMinutes)
		return nil
	})
}

func newRelateUpdateCmd() *cobra.Command {
	var (
		likelihood, delay float64
		strength          string
	)

	cmd := &cobra.Command{
		Use:   "update <relationship-id>",
		Short: "Update a relationship's likelihood, delay or strength",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd handlers.RelationUpdate
			if cmd.Flags().Changed("likelihood") {
				upd.Likelihood = &likelihood
			}
			if cmd.Flags().Changed("delay") {
				upd.DelayMinutes = &delay
			}
			if cmd.Flags().Changed("strength") {
				upd.Strength = &strength
			}

			return withDeps(func(d *Deps) error {
				rel, err := d.Relationships.HandleUpdate(cmd.Context(), args[0], upd)
				if err != nil {
					return fmt.Errorf("updating relationship: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated relationship: %s (likelihood %g, delay %gm)\n",
					rel.ID, rel.Likelihood, rel.DelayMinutes)
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&likelihood, "likelihood", 0, "Probability the failure spreads (0-1)")
	cmd.Flags().Float64Var(&delay, "delay", 0, "Minutes before the target is affected")
	cmd.Flags().StringVar(&strength, "strength", "", "Coupling label: weak, medium, strong, critical")

	return cmd
}

func newRelateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <relationship-id>",
		Short: "Delete a relationship",
		Long:  "Deletes an existing relationship by its ID.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelateDelete,
	}
}

func runRelateDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	relID := args[0]

	return withDeps(func(d *Deps) error {
		if err := d.Relationships.HandleDelete(ctx, relID); err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted relationship: %s\n", relID)
		return nil
	})
}
