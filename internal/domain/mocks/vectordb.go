package mocks

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// ScenarioIndex is a mock implementation of ports.ScenarioIndex.
type ScenarioIndex struct {
	Indexed map[string][]float32
	Matches []entities.ScenarioMatch
	Err     error

	// Call tracking
	IndexCallCount    int
	SearchCallCount   int
	LastSearchLimit   int
	LastCategory      entities.ScenarioCategory
	DeletedScenarioID string
}

// NewScenarioIndex creates an empty mock index.
func NewScenarioIndex() *ScenarioIndex {
	return &ScenarioIndex{Indexed: make(map[string][]float32)}
}

// IndexScenario records the embedding.
func (m *ScenarioIndex) IndexScenario(_ context.Context, scenario *entities.Scenario, embedding []float32) error {
	m.IndexCallCount++
	if m.Err != nil {
		return m.Err
	}
	if m.Indexed == nil {
		m.Indexed = make(map[string][]float32)
	}
	m.Indexed[scenario.ID] = embedding
	return nil
}

// SearchScenarios returns the configured matches, truncated to limit.
func (m *ScenarioIndex) SearchScenarios(_ context.Context, _ []float32, category entities.ScenarioCategory, limit int) ([]entities.ScenarioMatch, error) {
	m.SearchCallCount++
	m.LastSearchLimit = limit
	m.LastCategory = category
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.ScenarioMatch
	for _, match := range m.Matches {
		if category != "" && match.Category != category {
			continue
		}
		result = append(result, match)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DeleteScenario removes the recorded embedding.
func (m *ScenarioIndex) DeleteScenario(_ context.Context, scenarioID string) error {
	m.DeletedScenarioID = scenarioID
	if m.Err != nil {
		return m.Err
	}
	delete(m.Indexed, scenarioID)
	return nil
}
