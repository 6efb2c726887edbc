package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// Export formats.
const (
	ExportJSON     = "json"
	ExportCSV      = "csv"
	ExportMarkdown = "markdown"
)

// ValidExportFormats lists the supported export formats.
var ValidExportFormats = []string{ExportJSON, ExportCSV, ExportMarkdown}

// ExportHandler writes a scenario's latest results in a report format.
type ExportHandler struct {
	scenarios *services.ScenarioService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(scenarios *services.ScenarioService) *ExportHandler {
	return &ExportHandler{scenarios: scenarios}
}

// Handle writes the scenario identified by id to w.
func (h *ExportHandler) Handle(ctx context.Context, id, format string, w io.Writer) error {
	format = normalize(format)
	if format == "" {
		format = ExportJSON
	}
	if format == "md" {
		format = ExportMarkdown
	}

	scenario, err := h.scenarios.Get(ctx, id)
	if err != nil {
		return err
	}
	if scenario.Results == nil {
		return fmt.Errorf("scenario %s has not been run", scenario.Name)
	}

	switch format {
	case ExportJSON:
		return writeScenarioJSON(w, scenario)
	case ExportCSV:
		return writeScenarioCSV(w, scenario.Results)
	case ExportMarkdown:
		return writeScenarioMarkdown(w, scenario)
	default:
		return invalidEnum("format", format, ValidExportFormats)
	}
}

func writeScenarioJSON(w io.Writer, scenario *entities.Scenario) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scenario); err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	return nil
}

var csvHeader = []string{"order", "dependency_id", "dependency_name", "affected_at_minutes", "severity", "estimated_downtime_hours", "on_critical_path"}

func writeScenarioCSV(w io.Writer, result *entities.SimulationResult) error {
	onCritical := make(map[string]bool, len(result.CriticalPath))
	for _, rec := range result.CriticalPath {
		onCritical[rec.DependencyID] = true
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	for i, rec := range result.PropagationPath {
		row := []string{
			strconv.Itoa(i + 1),
			rec.DependencyID,
			rec.DependencyName,
			formatFloat(rec.AffectedAtMinutes),
			rec.Severity.String(),
			formatFloat(rec.EstimatedDowntimeHours),
			strconv.FormatBool(onCritical[rec.DependencyID]),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func writeScenarioMarkdown(w io.Writer, scenario *entities.Scenario) error {
	r := scenario.Results
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", scenario.Name)
	fmt.Fprintf(&b, "- Category: %s\n", scenario.Category)
	fmt.Fprintf(&b, "- Severity: %s\n", scenario.Severity)
	if scenario.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", scenario.Description)
	}
	fmt.Fprintf(&b, "- Simulated: %s\n\n", r.SimulatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Impact\n\n")
	fmt.Fprintf(&b, "%d dependencies affected, %s hours estimated total downtime.\n\n", r.TotalAffected, formatFloat(r.EstimatedTotalDowntimeHours))

	b.WriteString("## Propagation path\n\n")
	writeImpactTable(&b, r.PropagationPath)

	if len(r.CriticalPath) > 0 {
		b.WriteString("\n## Critical path\n\n")
		for i, rec := range r.CriticalPath {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, rec.DependencyName, rec.Severity)
		}
	}

	if len(r.RecoverySequence) > 0 {
		b.WriteString("\n## Recovery sequence\n\n")
		for i, rec := range r.RecoverySequence {
			fmt.Fprintf(&b, "%d. %s at %s min\n", i+1, rec.DependencyName, formatFloat(rec.AffectedAtMinutes))
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

func writeImpactTable(b *strings.Builder, records []entities.ImpactRecord) {
	b.WriteString("| # | Dependency | Affected at (min) | Severity | Downtime (h) |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for i, rec := range records {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s |\n",
			i+1,
			strings.ReplaceAll(rec.DependencyName, "|", "\\|"),
			formatFloat(rec.AffectedAtMinutes),
			rec.Severity,
			formatFloat(rec.EstimatedDowntimeHours),
		)
	}
}
