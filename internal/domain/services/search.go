package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/ports"
)

// DefaultSearchLimit is used when a search gives no limit.
const DefaultSearchLimit = 5

// SearchService finds scenarios similar to free text.
type SearchService struct {
	embedder     ports.Embedder
	index        ports.ScenarioIndex
	relationalDB ports.RelationalDB
}

// NewSearchService creates a new SearchService.
func NewSearchService(embedder ports.Embedder, index ports.ScenarioIndex, relationalDB ports.RelationalDB) *SearchService {
	return &SearchService{
		embedder:     embedder,
		index:        index,
		relationalDB: relationalDB,
	}
}

// Similar returns scenarios whose descriptions are closest to text.
func (s *SearchService) Similar(ctx context.Context, text string, category entities.ScenarioCategory, limit int) ([]entities.ScenarioMatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &entities.ValidationError{Field: "query", Message: "is required"}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generating embedding: %w", err)
	}

	matches, err := s.index.SearchScenarios(ctx, embedding, category, limit)
	if err != nil {
		return nil, fmt.Errorf("searching scenarios: %w", err)
	}
	return matches, nil
}

// Reindex embeds every stored scenario and writes it to the index. It
// returns the number of scenarios indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	scenarios, err := s.relationalDB.ListScenarios(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		return 0, nil
	}

	texts := make([]string, len(scenarios))
	for i, sc := range scenarios {
		texts[i] = sc.IndexText()
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("generating embeddings: %w", err)
	}

	for i, sc := range scenarios {
		if err := s.index.IndexScenario(ctx, sc, embeddings[i]); err != nil {
			return i, fmt.Errorf("indexing scenario %s: %w", sc.ID, err)
		}
	}
	return len(scenarios), nil
}
