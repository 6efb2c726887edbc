package entities

import "time"

// ImpactRecord describes one dependency reached during a propagation walk.
type ImpactRecord struct {
	DependencyID           string   `json:"dependency_id" yaml:"dependency_id"`
	DependencyName         string   `json:"dependency_name" yaml:"dependency_name"`
	AffectedAtMinutes      float64  `json:"affected_at_minutes" yaml:"affected_at_minutes"`
	Severity               Severity `json:"severity" yaml:"severity"`
	EstimatedDowntimeHours float64  `json:"estimated_downtime_hours" yaml:"estimated_downtime_hours"`
}

// SimulationResult is the outcome of one propagation walk.
type SimulationResult struct {
	// PropagationPath holds records in the order the walk reached them.
	PropagationPath             []ImpactRecord `json:"propagation_path" yaml:"propagation_path"`
	TotalAffected               int            `json:"total_affected" yaml:"total_affected"`
	EstimatedTotalDowntimeHours float64        `json:"estimated_total_downtime_hours" yaml:"estimated_total_downtime_hours"`
	CriticalPath                []ImpactRecord `json:"critical_path" yaml:"critical_path"`
	RecoverySequence            []ImpactRecord `json:"recovery_sequence" yaml:"recovery_sequence"`
	SimulatedAt                 time.Time      `json:"simulated_at" yaml:"simulated_at"`
	Seed                        *int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	Iterations                  int            `json:"iterations" yaml:"iterations"`
}

// Affected reports whether the dependency appears in the propagation path.
func (r *SimulationResult) Affected(dependencyID string) bool {
	for _, rec := range r.PropagationPath {
		if rec.DependencyID == dependencyID {
			return true
		}
	}
	return false
}

// DependencyHit counts how often one dependency was affected across many runs.
type DependencyHit struct {
	DependencyID   string  `json:"dependency_id"`
	DependencyName string  `json:"dependency_name"`
	Hits           int     `json:"hits"`
	Frequency      float64 `json:"frequency"`
}

// SimulationSummary aggregates repeated runs of the same scenario.
type SimulationSummary struct {
	Runs              int             `json:"runs"`
	MeanAffected      float64         `json:"mean_affected"`
	MeanDowntimeHours float64         `json:"mean_downtime_hours"`
	P95DowntimeHours  float64         `json:"p95_downtime_hours"`
	MaxAffected       int             `json:"max_affected"`
	Hits              []DependencyHit `json:"hits"`
	Seed              *int64          `json:"seed,omitempty"`
	SimulatedAt       time.Time       `json:"simulated_at"`
}
