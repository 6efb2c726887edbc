package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func createScenario(t *testing.T, env *testEnv) *entities.Scenario {
	t.Helper()
	scenario, err := env.scenarios.HandleCreate(context.Background(), ScenarioRequest{
		Name:        "Core outage",
		Trigger:     "Core",
		Category:    "operational",
		Severity:    "Critical",
		Description: "primary data centre loses power",
	})
	require.NoError(t, err)
	return scenario
}

func TestScenarioHandler_HandleCreate(t *testing.T) {
	env := newTestEnv(t)
	nodes := env.seedChain(t)

	scenario := createScenario(t, env)
	assert.Equal(t, nodes["Core"].ID, scenario.TriggerID)
	assert.Equal(t, entities.SeverityCritical, scenario.Severity)
	assert.Equal(t, entities.CategoryOperational, scenario.Category)
}

func TestScenarioHandler_HandleCreate_Invalid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)

	_, err := env.scenarios.HandleCreate(ctx, ScenarioRequest{Name: "X", Trigger: "Core", Category: "meteor", Severity: "high"})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.scenarios.HandleCreate(ctx, ScenarioRequest{Name: "X", Trigger: "Core", Category: "cyber", Severity: "apocalyptic"})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestScenarioHandler_HandleRun(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	nodes := env.seedChain(t)
	scenario := createScenario(t, env)

	outcome, err := env.scenarios.HandleRun(ctx, scenario.ID, RunRequest{})
	require.NoError(t, err)
	require.Len(t, outcome.Result.PropagationPath, 2)
	assert.Equal(t, nodes["Payments"].ID, outcome.Result.PropagationPath[1].DependencyID)

	shown, err := env.scenarios.HandleShow(ctx, scenario.ID)
	require.NoError(t, err)
	require.NotNil(t, shown.Results)
	assert.Equal(t, 2, shown.Results.TotalAffected)
}

func TestScenarioHandler_HandleRun_Runs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)
	scenario := createScenario(t, env)

	outcome, err := env.scenarios.HandleRun(ctx, scenario.ID, RunRequest{Seed: ptr(int64(7)), Runs: 10})
	require.NoError(t, err)
	require.NotNil(t, outcome.Summary)
	assert.Equal(t, 10, outcome.Summary.Runs)

	_, err = env.scenarios.HandleRun(ctx, scenario.ID, RunRequest{Runs: MaxRuns + 1})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.scenarios.HandleRun(ctx, scenario.ID, RunRequest{Runs: -1})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestScenarioHandler_HandleSimulate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)

	outcome, err := env.scenarios.HandleSimulate(ctx, "Core", "high", RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, entities.SeverityHigh, outcome.Result.PropagationPath[0].Severity)
	assert.Empty(t, env.db.Scenarios)

	_, err = env.scenarios.HandleSimulate(ctx, "", "high", RunRequest{})
	require.Error(t, err)

	_, err = env.scenarios.HandleSimulate(ctx, "Core", "huge", RunRequest{})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.scenarios.HandleSimulate(ctx, "Mainframe", "high", RunRequest{})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestScenarioHandler_HandleListAndDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)
	scenario := createScenario(t, env)

	list, err := env.scenarios.HandleList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, env.scenarios.HandleDelete(ctx, scenario.ID))
	assert.Empty(t, env.db.Scenarios)

	err = env.scenarios.HandleDelete(ctx, scenario.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
