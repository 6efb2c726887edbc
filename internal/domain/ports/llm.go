package ports

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// Briefer writes narrative briefings of simulation results.
type Briefer interface {
	// BriefScenario summarizes the scenario's simulation result.
	BriefScenario(ctx context.Context, scenario *entities.Scenario, result *entities.SimulationResult) (*entities.Briefing, error)
}
