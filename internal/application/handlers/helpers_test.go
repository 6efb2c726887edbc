package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/mocks"
	"github.com/ersonp/resilience-core/internal/domain/services"
	"github.com/ersonp/resilience-core/internal/domain/simulation"
)

// zeroSource propagates along every edge with non-zero likelihood.
type zeroSource struct{}

func (zeroSource) Float64() float64 { return 0 }

type testEnv struct {
	db        *mocks.RelationalDB
	deps      *DependencyHandler
	rels      *RelationshipHandler
	scenarios *ScenarioHandler
	export    *ExportHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := mocks.NewRelationalDB()
	depSvc := services.NewDependencyService(db, nil)
	relSvc := services.NewRelationshipService(db, nil)
	scnSvc := services.NewScenarioService(db, simulation.DefaultConfig(), nil, services.WithRandomSource(zeroSource{}))

	return &testEnv{
		db:        db,
		deps:      NewDependencyHandler(depSvc, relSvc),
		rels:      NewRelationshipHandler(relSvc, depSvc),
		scenarios: NewScenarioHandler(scnSvc),
		export:    NewExportHandler(scnSvc),
	}
}

// seedChain stores Core -(1.0, 10m)-> Payments -(0.0, 5m)-> Ledger.
func (e *testEnv) seedChain(t *testing.T) map[string]*entities.Dependency {
	t.Helper()
	ctx := context.Background()
	nodes := make(map[string]*entities.Dependency)
	for _, in := range []DependencyInput{
		{Name: "Core", Kind: "system", Criticality: "critical", MaxTolerableDowntimeHours: 4},
		{Name: "Payments", Kind: "system", Criticality: "high", MaxTolerableDowntimeHours: 2},
		{Name: "Ledger", Kind: "data", Criticality: "medium", MaxTolerableDowntimeHours: 1},
	} {
		dep, err := e.deps.HandleAdd(ctx, in)
		require.NoError(t, err)
		nodes[in.Name] = dep
	}

	_, err := e.rels.HandleCreate(ctx, "Core", "feeds_into", "Payments", RelationOptions{Likelihood: 1.0, DelayMinutes: 10})
	require.NoError(t, err)
	_, err = e.rels.HandleCreate(ctx, "Payments", "feeds_into", "Ledger", RelationOptions{Likelihood: 0.0, DelayMinutes: 5})
	require.NoError(t, err)
	return nodes
}

func ptr[T any](v T) *T {
	return &v
}
