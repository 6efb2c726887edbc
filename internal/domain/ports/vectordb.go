package ports

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// ScenarioIndex stores scenario embeddings for similarity search.
type ScenarioIndex interface {
	// IndexScenario stores or replaces the scenario's embedding.
	IndexScenario(ctx context.Context, scenario *entities.Scenario, embedding []float32) error

	// SearchScenarios returns the scenarios closest to the embedding.
	// An empty category searches all categories.
	SearchScenarios(ctx context.Context, embedding []float32, category entities.ScenarioCategory, limit int) ([]entities.ScenarioMatch, error)

	// DeleteScenario removes a scenario's embedding.
	DeleteScenario(ctx context.Context, scenarioID string) error
}
