// Package main provides the entry point for the resil CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0-dev"
	globalOrg string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "resil",
		Short:         "Operational resilience modelling: failure propagation and KRI forecasting",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalOrg, "org", "o", "", "Organization to operate on (required)")

	rootCmd.AddCommand(
		newOrgsCmd(),
		newDepsCmd(),
		newRelateCmd(),
		newRelationsCmd(),
		newScenarioCmd(),
		newSimulateCmd(),
		newForecastCmd(),
		newMetricsCmd(),
		newImportCmd(),
		newExportCmd(),
		newSearchCmd(),
		newBriefCmd(),
		newServeCmd(),
	)

	return rootCmd
}
