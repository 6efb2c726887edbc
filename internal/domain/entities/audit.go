package entities

import "time"

// Audit actions.
const (
	ActionDependencyRegistered = "dependency_registered"
	ActionDependencyDeleted    = "dependency_deleted"
	ActionStatusChanged        = "status_changed"
	ActionRelationshipDeleted  = "relationship_deleted"
	ActionScenarioDeleted      = "scenario_deleted"
	ActionSimulationRun        = "simulation_run"
	ActionImport               = "import"
)

// AuditEntry represents a logged action in the system.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	SubjectID string         `json:"subject_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
