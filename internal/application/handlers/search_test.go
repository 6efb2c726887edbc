package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/mocks"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

func TestSearchHandler_HandleSimilar(t *testing.T) {
	ctx := context.Background()
	index := mocks.NewScenarioIndex()
	index.Matches = []entities.ScenarioMatch{
		{ScenarioID: "s1", Name: "Ransomware", Category: entities.CategoryCyber, Score: 0.9},
		{ScenarioID: "s2", Name: "Flood", Category: entities.CategoryNaturalDisaster, Score: 0.4},
	}
	embedder := &mocks.Embedder{EmbeddingResult: []float32{0.1}}
	handler := NewSearchHandler(services.NewSearchService(embedder, index, mocks.NewRelationalDB()))

	matches, err := handler.HandleSimilar(ctx, "encrypted file shares", "Cyber", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "s1", matches[0].ScenarioID)
	assert.Equal(t, services.DefaultSearchLimit, index.LastSearchLimit)

	matches, err = handler.HandleSimilar(ctx, "outage", "", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = handler.HandleSimilar(ctx, "outage", "meteor", 10)
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestSearchHandler_HandleReindex(t *testing.T) {
	env := newTestEnv(t)
	env.seedChain(t)
	createScenario(t, env)

	index := mocks.NewScenarioIndex()
	handler := NewSearchHandler(services.NewSearchService(&mocks.Embedder{EmbeddingResult: []float32{1}}, index, env.db))

	n, err := handler.HandleReindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, index.Indexed, 1)
}

func TestBriefHandler_Handle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)
	scenario := runScenario(t, env)

	briefer := &mocks.Briefer{Briefing: &entities.Briefing{Summary: "Payments halt within ten minutes."}}
	handler := NewBriefHandler(services.NewBriefingService(env.db, briefer))

	briefing, err := handler.Handle(ctx, scenario.ID)
	require.NoError(t, err)
	assert.Equal(t, scenario.ID, briefing.ScenarioID)
	assert.Equal(t, 2, briefer.LastResult.TotalAffected)

	failing := NewBriefHandler(services.NewBriefingService(env.db, &mocks.Briefer{Err: errors.New("quota exceeded")}))
	_, err = failing.Handle(ctx, scenario.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
