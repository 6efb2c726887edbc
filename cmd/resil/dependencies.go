package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deps",
		Aliases: []string{"dependencies"},
		Short:   "Manage dependencies",
		Long: `Dependencies are the vendors, systems, staff, data and locations a
business function relies on. Reference a dependency by its ID or its name.`,
	}

	cmd.AddCommand(
		newDepsAddCmd(),
		newDepsListCmd(),
		newDepsShowCmd(),
		newDepsUpdateCmd(),
		newDepsStatusCmd(),
		newDepsDeleteCmd(),
	)

	return cmd
}

func newDepsAddCmd() *cobra.Command {
	var in handlers.DependencyInput

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a dependency",
		Long: `Registers a dependency.

Examples:
  resil deps add "Core banking" --kind system --criticality critical --mtd 4
  resil deps add "Card processor" --kind vendor --function payments --redundancy basic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			return withDeps(func(d *Deps) error {
				dep, err := d.Dependencies.HandleAdd(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("adding dependency: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", dep.Name, dep.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&in.Kind, "kind", "k", "", "Kind: "+strings.Join(handlers.ValidKinds, ", "))
	cmd.Flags().StringVarP(&in.Criticality, "criticality", "c", string(entities.CriticalityMedium), "Criticality: critical, high, medium, low")
	cmd.Flags().StringVar(&in.BusinessFunction, "function", "", "Business function the dependency serves")
	cmd.Flags().StringVar(&in.Redundancy, "redundancy", "", "Redundancy: none, basic, full, distributed")
	cmd.Flags().Float64Var(&in.MaxTolerableDowntimeHours, "mtd", 0, "Maximum tolerable downtime in hours")
	cmd.Flags().Float64Var(&in.RecoveryTimeObjectiveHours, "rto", 0, "Recovery time objective in hours")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func newDepsListCmd() *cobra.Command {
	var (
		function string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				deps, err := d.Dependencies.HandleList(cmd.Context(), function, limit, offset)
				if err != nil {
					return fmt.Errorf("listing dependencies: %w", err)
				}
				printDependencies(cmd.OutOrStdout(), deps)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&function, "function", "", "Filter by business function")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of dependencies to display")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of dependencies to skip")

	return cmd
}

func printDependencies(w io.Writer, deps []*entities.Dependency) {
	if len(deps) == 0 {
		fmt.Fprintln(w, "No dependencies found.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-24s %-9s %-9s %-9s %s\n", "ID", "NAME", "KIND", "TIER", "STATUS", "FUNCTION")
	for _, dep := range deps {
		fmt.Fprintf(w, "%-36s  %-24s %-9s %-9s %-9s %s\n",
			dep.ID, truncate(dep.Name, 24), dep.Kind, dep.Criticality, dep.Status, dep.BusinessFunction)
	}
}

func newDepsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <dependency>",
		Short: "Show a dependency and its direct relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				detail, err := d.Dependencies.HandleShow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printDependencyDetail(cmd.OutOrStdout(), detail)
				return nil
			})
		},
	}
}

func printDependencyDetail(w io.Writer, detail *handlers.DependencyDetail) {
	dep := detail.Dependency
	fmt.Fprintf(w, "%s\n", dep.Name)
	fmt.Fprintf(w, "  ID:          %s\n", dep.ID)
	fmt.Fprintf(w, "  Kind:        %s\n", dep.Kind)
	fmt.Fprintf(w, "  Criticality: %s\n", dep.Criticality)
	fmt.Fprintf(w, "  Status:      %s\n", dep.Status)
	if dep.BusinessFunction != "" {
		fmt.Fprintf(w, "  Function:    %s\n", dep.BusinessFunction)
	}
	if dep.Redundancy != "" {
		fmt.Fprintf(w, "  Redundancy:  %s\n", dep.Redundancy)
	}
	if dep.MaxTolerableDowntimeHours > 0 {
		fmt.Fprintf(w, "  MTD:         %gh\n", dep.MaxTolerableDowntimeHours)
	}
	if dep.RecoveryTimeObjectiveHours > 0 {
		fmt.Fprintf(w, "  RTO:         %gh\n", dep.RecoveryTimeObjectiveHours)
	}

	if len(detail.Relationships) == 0 {
		return
	}
	fmt.Fprintf(w, "  Relationships (%d):\n", len(detail.Relationships))
	for _, rel := range detail.Relationships {
		direction := "->"
		other := rel.TargetID
		if rel.TargetID == dep.ID {
			direction = "<-"
			other = rel.SourceID
		}
		fmt.Fprintf(w, "    %s %s %s (likelihood %g, delay %gm) [%s]\n",
			direction, rel.Type, other, rel.Likelihood, rel.DelayMinutes, rel.ID)
	}
}

func newDepsUpdateCmd() *cobra.Command {
	var (
		name, function, kind, criticality, redundancy string
		mtd, rto                                      float64
	)

	cmd := &cobra.Command{
		Use:   "update <dependency>",
		Short: "Update a dependency's attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var upd handlers.DependencyUpdate
			if flags.Changed("name") {
				upd.Name = &name
			}
			if flags.Changed("function") {
				upd.BusinessFunction = &function
			}
			if flags.Changed("kind") {
				upd.Kind = &kind
			}
			if flags.Changed("criticality") {
				upd.Criticality = &criticality
			}
			if flags.Changed("redundancy") {
				upd.Redundancy = &redundancy
			}
			if flags.Changed("mtd") {
				upd.MaxTolerableDowntimeHours = &mtd
			}
			if flags.Changed("rto") {
				upd.RecoveryTimeObjectiveHours = &rto
			}

			return withDeps(func(d *Deps) error {
				dep, err := d.Dependencies.HandleUpdate(cmd.Context(), args[0], upd)
				if err != nil {
					return fmt.Errorf("updating dependency: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", dep.Name, dep.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&function, "function", "", "Business function")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Kind")
	cmd.Flags().StringVarP(&criticality, "criticality", "c", "", "Criticality")
	cmd.Flags().StringVar(&redundancy, "redundancy", "", "Redundancy")
	cmd.Flags().Float64Var(&mtd, "mtd", 0, "Maximum tolerable downtime in hours")
	cmd.Flags().Float64Var(&rto, "rto", 0, "Recovery time objective in hours")

	return cmd
}

func newDepsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <dependency> <active|degraded|inactive>",
		Short: "Set a dependency's operational status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				dep, err := d.Dependencies.HandleSetStatus(cmd.Context(), args[0], args[1])
				if err != nil {
					return fmt.Errorf("setting status: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", dep.Name, dep.Status)
				return nil
			})
		},
	}
}

func newDepsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <dependency>",
		Short: "Delete a dependency",
		Long:  "Deletes a dependency. Dependencies that relationships or scenarios still reference are refused.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if err := d.Dependencies.HandleDelete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("deleting dependency: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted dependency: %s\n", args[0])
				return nil
			})
		},
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
