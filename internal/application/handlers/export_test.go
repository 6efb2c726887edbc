package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func runScenario(t *testing.T, env *testEnv) *entities.Scenario {
	t.Helper()
	scenario := createScenario(t, env)
	_, err := env.scenarios.HandleRun(context.Background(), scenario.ID, RunRequest{})
	require.NoError(t, err)
	return scenario
}

func TestExportHandler_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.seedChain(t)
	scenario := runScenario(t, env)

	var buf bytes.Buffer
	require.NoError(t, env.export.Handle(context.Background(), scenario.ID, "", &buf))

	var decoded entities.Scenario
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, scenario.ID, decoded.ID)
	require.NotNil(t, decoded.Results)
	assert.Equal(t, 2, decoded.Results.TotalAffected)
}

func TestExportHandler_CSV(t *testing.T) {
	env := newTestEnv(t)
	env.seedChain(t)
	scenario := runScenario(t, env)

	var buf bytes.Buffer
	require.NoError(t, env.export.Handle(context.Background(), scenario.ID, "CSV", &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Core", records[1][2])
	assert.Equal(t, "0", records[1][3])
	assert.Equal(t, "critical", records[1][4])
	assert.Equal(t, "Payments", records[2][2])
	assert.Equal(t, "10", records[2][3])
}

func TestExportHandler_Markdown(t *testing.T) {
	env := newTestEnv(t)
	env.seedChain(t)
	scenario := runScenario(t, env)

	var buf bytes.Buffer
	require.NoError(t, env.export.Handle(context.Background(), scenario.ID, "md", &buf))

	out := buf.String()
	assert.Contains(t, out, "# Core outage\n")
	assert.Contains(t, out, "- Severity: critical\n")
	assert.Contains(t, out, "2 dependencies affected, 6 hours estimated total downtime.")
	assert.Contains(t, out, "| 2 | Payments | 10 |")
	assert.Contains(t, out, "## Recovery sequence")
}

func TestExportHandler_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)
	scenario := createScenario(t, env)

	err := env.export.Handle(ctx, scenario.ID, "json", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been run")

	_, err = env.scenarios.HandleRun(ctx, scenario.ID, RunRequest{})
	require.NoError(t, err)

	err = env.export.Handle(ctx, scenario.ID, "pdf", &bytes.Buffer{})
	assert.ErrorIs(t, err, entities.ErrValidation)

	err = env.export.Handle(ctx, "missing", "json", &bytes.Buffer{})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
