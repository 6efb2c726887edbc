package ports

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// RelationalDB defines the interface for the dependency, scenario and
// metric store. Lookups return nil, nil when a record does not exist.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Dependency operations

	// SaveDependency saves or updates a dependency.
	SaveDependency(ctx context.Context, dep *entities.Dependency) error

	// FindDependencyByID finds a dependency by its ID.
	FindDependencyByID(ctx context.Context, id string) (*entities.Dependency, error)

	// FindDependencyByName finds a dependency by name (case-insensitive).
	FindDependencyByName(ctx context.Context, name string) (*entities.Dependency, error)

	// ListDependencies lists dependencies ordered by name. An empty
	// businessFunction lists all of them; limit <= 0 means no limit.
	ListDependencies(ctx context.Context, businessFunction string, limit, offset int) ([]*entities.Dependency, error)

	// CountDependencies returns the total number of dependencies.
	CountDependencies(ctx context.Context) (int, error)

	// DeleteDependency deletes a dependency by ID.
	DeleteDependency(ctx context.Context, id string) error

	// Relationship operations

	// SaveRelationship saves or updates a relationship.
	SaveRelationship(ctx context.Context, rel *entities.Relationship) error

	// FindRelationshipByID finds a relationship by its ID.
	FindRelationshipByID(ctx context.Context, id string) (*entities.Relationship, error)

	// FindOutgoingRelationships finds relationships whose source is the dependency.
	FindOutgoingRelationships(ctx context.Context, dependencyID string) ([]entities.Relationship, error)

	// FindIncomingRelationships finds relationships whose target is the dependency.
	FindIncomingRelationships(ctx context.Context, dependencyID string) ([]entities.Relationship, error)

	// ListRelationships lists every relationship in creation order.
	ListRelationships(ctx context.Context) ([]entities.Relationship, error)

	// FindRelationshipBetween finds a direct edge from source to target.
	FindRelationshipBetween(ctx context.Context, sourceID, targetID string) (*entities.Relationship, error)

	// FindRelatedDependencies finds dependency IDs reachable from the given
	// dependency in either direction, up to depth hops.
	FindRelatedDependencies(ctx context.Context, dependencyID string, depth int) ([]string, error)

	// DeleteRelationship deletes a relationship by ID.
	DeleteRelationship(ctx context.Context, id string) error

	// DeleteRelationshipsByDependency deletes all relationships touching a dependency.
	DeleteRelationshipsByDependency(ctx context.Context, dependencyID string) error

	// CountRelationships returns the total number of relationships.
	CountRelationships(ctx context.Context) (int, error)

	// Scenario operations

	// SaveScenario saves or updates a scenario, including its results.
	SaveScenario(ctx context.Context, scenario *entities.Scenario) error

	// FindScenarioByID finds a scenario by its ID.
	FindScenarioByID(ctx context.Context, id string) (*entities.Scenario, error)

	// ListScenarios lists all scenarios ordered by name.
	ListScenarios(ctx context.Context) ([]*entities.Scenario, error)

	// FindScenariosByTrigger lists scenarios triggered by the dependency.
	FindScenariosByTrigger(ctx context.Context, dependencyID string) ([]*entities.Scenario, error)

	// SaveScenarioResults replaces a scenario's last results and bumps its update time.
	SaveScenarioResults(ctx context.Context, scenarioID string, result *entities.SimulationResult) error

	// DeleteScenario deletes a scenario by ID.
	DeleteScenario(ctx context.Context, id string) error

	// Metric operations

	// SaveMetricPoints stores readings, replacing any existing reading for
	// the same metric and date.
	SaveMetricPoints(ctx context.Context, points []entities.MetricPoint) error

	// ListMetricSeries returns a metric's readings ordered by date.
	ListMetricSeries(ctx context.Context, metric string) ([]entities.MetricPoint, error)

	// ListMetricNames returns every metric with at least one reading.
	ListMetricNames(ctx context.Context) ([]string, error)

	// Audit operations

	// LogAction logs an action to the audit log.
	LogAction(ctx context.Context, action string, subjectID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a subject.
	FindAuditLog(ctx context.Context, subjectID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit log entries by action type.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
