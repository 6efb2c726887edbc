package services

import (
	"context"
	"fmt"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/ports"
)

// BriefingService writes narrative briefings of scenario results.
type BriefingService struct {
	relationalDB ports.RelationalDB
	briefer      ports.Briefer
}

// NewBriefingService creates a new BriefingService.
func NewBriefingService(relationalDB ports.RelationalDB, briefer ports.Briefer) *BriefingService {
	return &BriefingService{relationalDB: relationalDB, briefer: briefer}
}

// Brief summarizes the scenario's most recent simulation result.
func (s *BriefingService) Brief(ctx context.Context, scenarioID string) (*entities.Briefing, error) {
	scenario, err := s.relationalDB.FindScenarioByID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("finding scenario: %w", err)
	}
	if scenario == nil {
		return nil, &entities.NotFoundError{Kind: "scenario", ID: scenarioID}
	}
	if scenario.Results == nil {
		return nil, fmt.Errorf("scenario %q has not been run yet", scenario.Name)
	}

	briefing, err := s.briefer.BriefScenario(ctx, scenario, scenario.Results)
	if err != nil {
		return nil, fmt.Errorf("writing briefing: %w", err)
	}
	briefing.ScenarioID = scenario.ID
	return briefing, nil
}
