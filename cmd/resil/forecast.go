package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func newForecastCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "forecast [metric]",
		Short: "Project a key risk indicator forward",
		Long: `Fits a linear trend to a metric's readings and projects it forward.
With --all, or without a metric, every recorded metric is forecast.

Examples:
  resil forecast incidents
  resil forecast --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 && !all {
					f, err := d.Forecasts.HandleForecast(cmd.Context(), args[0])
					if err != nil {
						return fmt.Errorf("forecasting: %w", err)
					}
					printForecast(out, *f)
					return nil
				}

				forecasts, err := d.Forecasts.HandleForecastAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("forecasting: %w", err)
				}
				if len(forecasts) == 0 {
					fmt.Fprintln(out, "No metrics recorded.")
					return nil
				}
				for i, f := range forecasts {
					if i > 0 {
						fmt.Fprintln(out)
					}
					printForecast(out, f)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Forecast every recorded metric")

	return cmd
}

func printForecast(w io.Writer, f entities.Forecast) {
	fmt.Fprintf(w, "%s (%d samples, confidence %.0f%%)\n", f.Metric, f.SampleCount, f.Confidence*100)
	fmt.Fprintf(w, "  Current: %g\n", f.CurrentValue)
	fmt.Fprintf(w, "  Trend:   %s (%+.3f per step)\n", f.Trend, f.Slope)

	horizons := make([]int, 0, len(f.Predictions))
	for h := range f.Predictions {
		horizons = append(horizons, h)
	}
	sort.Ints(horizons)
	if len(horizons) == 0 {
		fmt.Fprintf(w, "  +30:     %.2f\n", f.Predicted30Days)
		fmt.Fprintf(w, "  +90:     %.2f\n", f.Predicted90Days)
		return
	}
	for _, h := range horizons {
		fmt.Fprintf(w, "  %-8s %.2f\n", "+"+strconv.Itoa(h)+":", f.Predictions[h])
	}
}

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Record and inspect metric readings",
	}

	cmd.AddCommand(newMetricsRecordCmd(), newMetricsShowCmd())

	return cmd
}

func newMetricsRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <metric> <date> <value>",
		Short: "Record one reading",
		Long: `Records a dated reading, replacing any reading for the same date.
Dates are YYYY-MM-DD or RFC 3339.

Examples:
  resil metrics record incidents 2026-03-31 14`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[2], err)
			}

			return withDeps(func(d *Deps) error {
				point, err := d.Forecasts.HandleRecord(cmd.Context(), args[0], args[1], value)
				if err != nil {
					return fmt.Errorf("recording metric: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s = %g on %s\n",
					point.Metric, point.Value, point.Date.Format("2006-01-02"))
				return nil
			})
		},
	}
}

func newMetricsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <metric>",
		Short: "Show a metric's readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				points, err := d.Forecasts.HandleSeries(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(points) == 0 {
					fmt.Fprintf(out, "No readings for %s.\n", args[0])
					return nil
				}
				for _, p := range points {
					fmt.Fprintf(out, "%s  %g\n", p.Date.Format("2006-01-02"), p.Value)
				}
				return nil
			})
		},
	}
}
