package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// maxHitsShown bounds the per-dependency frequency table of a Monte-Carlo summary.
const maxHitsShown = 10

func printOutcome(w io.Writer, outcome *services.RunOutcome) {
	if outcome.Scenario != nil {
		fmt.Fprintf(w, "Scenario: %s (%s)\n", outcome.Scenario.Name, outcome.Scenario.ID)
	}
	printResult(w, outcome.Result)
	if outcome.Summary != nil {
		fmt.Fprintln(w)
		printSummary(w, outcome.Summary)
	}
}

func printResult(w io.Writer, result *entities.SimulationResult) {
	fmt.Fprintf(w, "Affected: %d dependencies, %g hours estimated downtime\n",
		result.TotalAffected, result.EstimatedTotalDowntimeHours)
	if result.Seed != nil {
		fmt.Fprintf(w, "Seed: %d\n", *result.Seed)
	}

	fmt.Fprintln(w, "\nPropagation path:")
	printImpacts(w, result.PropagationPath)

	if len(result.CriticalPath) > 0 {
		names := make([]string, 0, len(result.CriticalPath))
		for _, rec := range result.CriticalPath {
			names = append(names, rec.DependencyName)
		}
		fmt.Fprintf(w, "\nCritical path: %s\n", strings.Join(names, " -> "))
	}

	if len(result.RecoverySequence) > 0 {
		fmt.Fprintln(w, "\nRecovery sequence:")
		for i, rec := range result.RecoverySequence {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec.DependencyName)
		}
	}
}

func printImpacts(w io.Writer, records []entities.ImpactRecord) {
	fmt.Fprintf(w, "  %-4s %-28s %10s %-9s %s\n", "#", "DEPENDENCY", "AT (MIN)", "SEVERITY", "DOWNTIME (H)")
	for i, rec := range records {
		fmt.Fprintf(w, "  %-4d %-28s %10g %-9s %g\n",
			i+1, truncate(rec.DependencyName, 28), rec.AffectedAtMinutes, rec.Severity, rec.EstimatedDowntimeHours)
	}
}

func printSummary(w io.Writer, summary *entities.SimulationSummary) {
	fmt.Fprintf(w, "Across %d runs:\n", summary.Runs)
	fmt.Fprintf(w, "  Mean affected:   %.2f (max %d)\n", summary.MeanAffected, summary.MaxAffected)
	fmt.Fprintf(w, "  Mean downtime:   %.2fh\n", summary.MeanDowntimeHours)
	fmt.Fprintf(w, "  P95 downtime:    %.2fh\n", summary.P95DowntimeHours)

	hits := summary.Hits
	if len(hits) > maxHitsShown {
		hits = hits[:maxHitsShown]
	}
	if len(hits) == 0 {
		return
	}
	fmt.Fprintln(w, "  Most often affected:")
	for _, hit := range hits {
		fmt.Fprintf(w, "    %-28s %5.1f%%\n", truncate(hit.DependencyName, 28), hit.Frequency*100)
	}
}
