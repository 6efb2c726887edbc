package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func newSimulateCmd() *cobra.Command {
	var (
		flags    runFlags
		severity string
	)

	cmd := &cobra.Command{
		Use:   "simulate <trigger>",
		Short: "Simulate a failure without saving a scenario",
		Long: `Runs the propagation simulator from a trigger dependency. Nothing is stored.

Examples:
  resil simulate "Core banking" --severity critical
  resil simulate "Core banking" --severity high --runs 1000 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				outcome, err := d.Scenarios.HandleSimulate(cmd.Context(), args[0], severity, flags.request(cmd))
				if err != nil {
					return fmt.Errorf("simulating: %w", err)
				}
				printOutcome(cmd.OutOrStdout(), outcome)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&severity, "severity", "s", entities.SeverityHigh.String(), "Severity: low, medium, high, critical")
	flags.register(cmd)

	return cmd
}
