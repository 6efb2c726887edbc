package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
	"github.com/ersonp/resilience-core/internal/domain/simulation"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
	embedder "github.com/ersonp/resilience-core/internal/infrastructure/embedder/openai"
	"github.com/ersonp/resilience-core/internal/infrastructure/relationaldb/sqlite"
)

func newScenario(name string, category entities.ScenarioCategory, description string) *entities.Scenario {
	now := time.Now().UTC()
	return &entities.Scenario{
		ID:          uuid.New().String(),
		Name:        name,
		TriggerID:   uuid.New().String(),
		Category:    category,
		Severity:    entities.SeverityHigh,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func indexScenario(t *testing.T, s *entities.Scenario) {
	t.Helper()
	v, err := wordEmbedder{}.Embed(context.Background(), s.IndexText())
	require.NoError(t, err)
	require.NoError(t, testIndex.IndexScenario(context.Background(), s, v))
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	resetCollection(t)

	count, err := testIndex.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// EnsureCollection is idempotent
	err = testIndex.EnsureCollection(ctx, uint64(embedder.VectorSize))
	require.NoError(t, err)
}

func TestIndexAndSearchScenarios(t *testing.T) {
	ctx := context.Background()
	resetCollection(t)

	flood := newScenario("Data centre flood", entities.CategoryNaturalDisaster, "river flood takes the primary data centre offline")
	ransom := newScenario("Payments ransomware", entities.CategoryCyber, "ransomware encrypts the payments platform")
	vendor := newScenario("Card processor insolvency", entities.CategoryVendorFailure, "card processor stops settling payments")
	for _, s := range []*entities.Scenario{flood, ransom, vendor} {
		indexScenario(t, s)
	}

	count, err := testIndex.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	query, err := wordEmbedder{}.Embed(ctx, "ransomware attack on payments")
	require.NoError(t, err)

	matches, err := testIndex.SearchScenarios(ctx, query, "", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, ransom.ID, matches[0].ScenarioID)
	assert.Equal(t, "Payments ransomware", matches[0].Name)
	assert.Equal(t, entities.CategoryCyber, matches[0].Category)
	assert.Equal(t, entities.SeverityHigh, matches[0].Severity)

	matches, err = testIndex.SearchScenarios(ctx, query, entities.CategoryVendorFailure, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, vendor.ID, matches[0].ScenarioID)
}

func TestReindexReplacesPoint(t *testing.T) {
	ctx := context.Background()
	resetCollection(t)

	s := newScenario("Staff strike", entities.CategoryOperational, "operations staff strike")
	indexScenario(t, s)

	s.Name = "Operations staff strike"
	indexScenario(t, s)

	count, err := testIndex.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, testIndex.DeleteScenario(ctx, s.ID))
	count, err = testIndex.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestScenarioServiceIndexesAndSearchFinds(t *testing.T) {
	ctx := context.Background()
	resetCollection(t)

	db, err := sqlite.NewRepository(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "resil.db")})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))

	deps := services.NewDependencyService(db, nil)
	dc, err := deps.Register(ctx, &entities.Dependency{Name: "Primary DC", Kind: entities.KindLocation, Criticality: entities.CriticalityCritical})
	require.NoError(t, err)

	scenarios := services.NewScenarioService(db, simulation.DefaultConfig(), nil, services.WithScenarioIndex(testIndex, wordEmbedder{}))
	created, err := scenarios.Create(ctx, services.ScenarioInput{
		Name:        "Primary DC flood",
		TriggerRef:  dc.ID,
		Category:    entities.CategoryNaturalDisaster,
		Severity:    entities.SeverityCritical,
		Description: "river flood reaches the primary data centre",
	})
	require.NoError(t, err)

	search := services.NewSearchService(wordEmbedder{}, testIndex, db)
	matches, err := search.Similar(ctx, "flood at the data centre", "", 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, created.ID, matches[0].ScenarioID)

	// Reindex from the store after dropping the collection.
	resetCollection(t)
	n, err := search.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, scenarios.Delete(ctx, created.ID))
	count, err := testIndex.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
