package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func TestRelationshipHandler_HandleCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	nodes := env.seedChain(t)

	rel, err := env.rels.HandleCreate(ctx, "Core", "depends_on", "Ledger", RelationOptions{
		Likelihood:   0.5,
		DelayMinutes: 30,
		Strength:     "Strong",
	})
	require.NoError(t, err)
	assert.Equal(t, nodes["Core"].ID, rel.SourceID)
	assert.Equal(t, nodes["Ledger"].ID, rel.TargetID)
	assert.Equal(t, entities.StrengthStrong, rel.Strength)
}

func TestRelationshipHandler_HandleCreate_Errors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)

	tests := []struct {
		name   string
		source string
		typ    string
		target string
		opts   RelationOptions
		errMsg string
	}{
		{name: "bad type", source: "Core", typ: "loves", target: "Ledger", errMsg: "type"},
		{name: "bad strength", source: "Core", typ: "supports", target: "Ledger", opts: RelationOptions{Strength: "mighty"}, errMsg: "strength"},
		{name: "bad likelihood", source: "Core", typ: "supports", target: "Ledger", opts: RelationOptions{Likelihood: 1.5}, errMsg: "likelihood"},
		{name: "self loop", source: "Core", typ: "supports", target: "Core", errMsg: "must differ"},
		{name: "duplicate", source: "Core", typ: "supports", target: "Payments", opts: RelationOptions{Likelihood: 0.1}, errMsg: "already exists"},
		{name: "unknown target", source: "Core", typ: "supports", target: "Mainframe", errMsg: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.rels.HandleCreate(ctx, tt.source, tt.typ, tt.target, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRelationshipHandler_HandleUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)

	list, err := env.rels.HandleList(ctx, "Core", ListOptions{})
	require.NoError(t, err)
	require.Len(t, list.Relationships, 1)
	id := list.Relationships[0].Relationship.ID

	rel, err := env.rels.HandleUpdate(ctx, id, RelationUpdate{Likelihood: ptr(0.25), Strength: ptr("weak")})
	require.NoError(t, err)
	assert.Equal(t, 0.25, rel.Likelihood)
	assert.Equal(t, 10.0, rel.DelayMinutes)
	assert.Equal(t, entities.StrengthWeak, rel.Strength)

	_, err = env.rels.HandleUpdate(ctx, id, RelationUpdate{Strength: ptr("mighty")})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.rels.HandleUpdate(ctx, "missing", RelationUpdate{})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRelationshipHandler_HandleList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	nodes := env.seedChain(t)

	result, err := env.rels.HandleList(ctx, "payments", ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, nodes["Payments"].ID, result.Dependency.ID)
	require.Len(t, result.Relationships, 2)
	assert.Equal(t, "Payments", result.Relationships[0].SourceName)
	assert.Equal(t, "Ledger", result.Relationships[0].TargetName)
	assert.Equal(t, "Core", result.Relationships[1].SourceName)
	assert.Nil(t, result.Related)
}

func TestRelationshipHandler_HandleList_FilterAndDepth(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)
	_, err := env.deps.HandleAdd(ctx, DependencyInput{Name: "Branch", Kind: "location", Criticality: "low"})
	require.NoError(t, err)
	_, err = env.rels.HandleCreate(ctx, "Core", "supports", "Branch", RelationOptions{Likelihood: 0.3})
	require.NoError(t, err)

	result, err := env.rels.HandleList(ctx, "Core", ListOptions{Type: "supports"})
	require.NoError(t, err)
	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "Branch", result.Relationships[0].TargetName)

	result, err = env.rels.HandleList(ctx, "Core", ListOptions{Depth: 2})
	require.NoError(t, err)
	names := make([]string, 0, len(result.Related))
	for _, d := range result.Related {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"Payments", "Ledger", "Branch"}, names)

	_, err = env.rels.HandleList(ctx, "Core", ListOptions{Type: "bogus"})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestRelationshipHandler_HandleDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedChain(t)

	list, err := env.rels.HandleList(ctx, "Core", ListOptions{})
	require.NoError(t, err)
	require.NoError(t, env.rels.HandleDelete(ctx, list.Relationships[0].Relationship.ID))
	assert.Len(t, env.db.Relationships, 1)
}
