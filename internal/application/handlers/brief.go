package handlers

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// BriefHandler handles executive briefings.
type BriefHandler struct {
	service *services.BriefingService
}

// NewBriefHandler creates a new BriefHandler.
func NewBriefHandler(service *services.BriefingService) *BriefHandler {
	return &BriefHandler{service: service}
}

// Handle writes a briefing for a scenario's latest results.
func (h *BriefHandler) Handle(ctx context.Context, scenarioID string) (*entities.Briefing, error) {
	return h.service.Brief(ctx, scenarioID)
}
