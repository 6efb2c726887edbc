package handlers

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// SearchHandler handles scenario similarity search.
type SearchHandler struct {
	service *services.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *services.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// HandleSimilar finds scenarios similar to text. An empty category searches all.
func (h *SearchHandler) HandleSimilar(ctx context.Context, text, category string, limit int) ([]entities.ScenarioMatch, error) {
	c, err := parseOptionalCategory(category)
	if err != nil {
		return nil, err
	}
	return h.service.Similar(ctx, text, c, limit)
}

// HandleReindex rebuilds the similarity index from stored scenarios.
func (h *SearchHandler) HandleReindex(ctx context.Context) (int, error) {
	return h.service.Reindex(ctx)
}
