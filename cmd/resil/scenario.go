package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scenario",
		Aliases: []string{"scenarios"},
		Short:   "Manage and run disruption scenarios",
	}

	cmd.AddCommand(
		newScenarioCreateCmd(),
		newScenarioListCmd(),
		newScenarioShowCmd(),
		newScenarioDeleteCmd(),
		newScenarioRunCmd(),
	)

	return cmd
}

func newScenarioCreateCmd() *cobra.Command {
	var req handlers.ScenarioRequest

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a scenario",
		Long: `Creates a named disruption scenario triggered by the failure of one dependency.

Categories: ` + strings.Join(handlers.ValidCategories, ", ") + `

Examples:
  resil scenario create "Data centre flood" --trigger "Primary DC" --category natural_disaster --severity critical`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			return withDeps(func(d *Deps) error {
				scenario, err := d.Scenarios.HandleCreate(cmd.Context(), req)
				if err != nil {
					return fmt.Errorf("creating scenario: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created scenario %q (%s)\n", scenario.Name, scenario.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Trigger, "trigger", "t", "", "Dependency whose failure starts the scenario")
	cmd.Flags().StringVarP(&req.Category, "category", "c", string(entities.CategoryOperational), "Scenario category")
	cmd.Flags().StringVarP(&req.Severity, "severity", "s", entities.SeverityHigh.String(), "Severity: low, medium, high, critical")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "Free-text description")
	_ = cmd.MarkFlagRequired("trigger")

	return cmd
}

func newScenarioListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				scenarios, err := d.Scenarios.HandleList(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing scenarios: %w", err)
				}
				printScenarios(cmd.OutOrStdout(), scenarios)
				return nil
			})
		},
	}
}

func printScenarios(w io.Writer, scenarios []*entities.Scenario) {
	if len(scenarios) == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-28s %-18s %-9s %s\n", "ID", "NAME", "CATEGORY", "SEVERITY", "LAST RUN")
	for _, s := range scenarios {
		lastRun := "never"
		if s.Results != nil {
			lastRun = fmt.Sprintf("%s (%d affected)", s.Results.SimulatedAt.Format("2006-01-02 15:04"), s.Results.TotalAffected)
		}
		fmt.Fprintf(w, "%-36s  %-28s %-18s %-9s %s\n", s.ID, truncate(s.Name, 28), s.Category, s.Severity, lastRun)
	}
}

func newScenarioShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <scenario-id>",
		Short: "Show a scenario and its last result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				scenario, err := d.Scenarios.HandleShow(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n", scenario.Name)
				fmt.Fprintf(out, "  ID:       %s\n", scenario.ID)
				fmt.Fprintf(out, "  Trigger:  %s\n", scenario.TriggerID)
				fmt.Fprintf(out, "  Category: %s\n", scenario.Category)
				fmt.Fprintf(out, "  Severity: %s\n", scenario.Severity)
				if scenario.Description != "" {
					fmt.Fprintf(out, "  %s\n", scenario.Description)
				}
				if scenario.Results == nil {
					fmt.Fprintln(out, "\nNot run yet. Use 'resil scenario run' to simulate it.")
					return nil
				}
				fmt.Fprintf(out, "\nLast run %s\n", scenario.Results.SimulatedAt.Format("2006-01-02 15:04:05"))
				printResult(out, scenario.Results)
				return nil
			})
		},
	}
}

func newScenarioDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scenario-id>",
		Short: "Delete a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if err := d.Scenarios.HandleDelete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("deleting scenario: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted scenario: %s\n", args[0])
				return nil
			})
		},
	}
}

// runFlags are shared by scenario run and simulate.
type runFlags struct {
	seed int64
	runs int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed for a reproducible run")
	cmd.Flags().IntVarP(&f.runs, "runs", "n", 0, "Monte-Carlo runs to aggregate (0 or 1 runs once)")
}

func (f *runFlags) request(cmd *cobra.Command) handlers.RunRequest {
	req := handlers.RunRequest{Runs: f.runs}
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		req.Seed = &seed
	}
	return req
}

func newScenarioRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <scenario-id>",
		Short: "Simulate a scenario and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				outcome, err := d.Scenarios.HandleRun(cmd.Context(), args[0], flags.request(cmd))
				if err != nil {
					return fmt.Errorf("running scenario: %w", err)
				}
				printOutcome(cmd.OutOrStdout(), outcome)
				return nil
			})
		},
	}

	flags.register(cmd)

	return cmd
}
