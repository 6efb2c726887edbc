package mocks

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// Briefer is a mock implementation of ports.Briefer.
type Briefer struct {
	Briefing *entities.Briefing
	Err      error

	LastScenario *entities.Scenario
	LastResult   *entities.SimulationResult
}

// BriefScenario returns the configured briefing or error.
func (m *Briefer) BriefScenario(_ context.Context, scenario *entities.Scenario, result *entities.SimulationResult) (*entities.Briefing, error) {
	m.LastScenario = scenario
	m.LastResult = result
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Briefing, nil
}
