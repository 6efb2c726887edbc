package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/mocks"
	"github.com/ersonp/resilience-core/internal/infrastructure/parsers"
)

func ptr(v float64) *float64 { return &v }

func sampleDocument() *parsers.Document {
	return &parsers.Document{
		Dependencies: []parsers.RawDependency{
			{Name: "Core banking", Kind: "system", Criticality: "critical", MaxTolerableDowntimeHours: ptr(4), LineNum: 1},
			{Name: "Card processor", Kind: "vendor", Criticality: "high", LineNum: 2},
		},
		Relationships: []parsers.RawRelationship{
			{Source: "Core banking", Target: "card processor", Type: "feeds_into", Likelihood: ptr(0.7), DelayMinutes: ptr(15), LineNum: 1},
		},
		Metrics: []parsers.RawMetricPoint{
			{Metric: "incidents", Date: "2024-01-01", Value: ptr(3), LineNum: 1},
			{Metric: "incidents", Date: "2024-01-02T00:00:00Z", Value: ptr(4), LineNum: 2},
		},
	}
}

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()
	db := mocks.NewRelationalDB()
	svc := NewImportService(db, nil)

	result, err := svc.Import(ctx, sampleDocument(), ImportOptions{OnConflict: ConflictSkip})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Dependencies)
	assert.Equal(t, 1, result.Relationships)
	assert.Equal(t, 2, result.MetricPoints)
	assert.Equal(t, 5, result.Imported())

	assert.Len(t, db.Dependencies, 2)
	assert.Len(t, db.Relationships, 1)
	assert.Len(t, db.Metrics["incidents"], 2)

	core, err := db.FindDependencyByName(ctx, "Core banking")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusActive, core.Status)
	assert.Equal(t, 4.0, core.MaxTolerableDowntimeHours)

	entries, err := db.FindAuditLogByAction(ctx, entities.ActionImport, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestImportService_Import_DryRun(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewImportService(db, nil)

	result, err := svc.Import(context.Background(), sampleDocument(), ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Imported())
	assert.Empty(t, result.Errors)
	assert.Empty(t, db.Dependencies)
	assert.Empty(t, db.Relationships)
	assert.Empty(t, db.Metrics)
	assert.Empty(t, db.Audit)
}

func TestImportService_Import_Conflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("skip keeps existing", func(t *testing.T) {
		db := mocks.NewRelationalDB()
		svc := NewImportService(db, nil)
		_, err := svc.Import(ctx, sampleDocument(), ImportOptions{OnConflict: ConflictSkip})
		require.NoError(t, err)

		doc := sampleDocument()
		doc.Dependencies[0].Criticality = "low"
		result, err := svc.Import(ctx, doc, ImportOptions{OnConflict: ConflictSkip})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Skipped)
		assert.Zero(t, result.Dependencies)

		core, err := db.FindDependencyByName(ctx, "Core banking")
		require.NoError(t, err)
		assert.Equal(t, entities.CriticalityCritical, core.Criticality)
	})

	t.Run("overwrite replaces and keeps ids", func(t *testing.T) {
		db := mocks.NewRelationalDB()
		svc := NewImportService(db, nil)
		_, err := svc.Import(ctx, sampleDocument(), ImportOptions{OnConflict: ConflictSkip})
		require.NoError(t, err)
		before, err := db.FindDependencyByName(ctx, "Core banking")
		require.NoError(t, err)

		doc := sampleDocument()
		doc.Dependencies[0].Criticality = "low"
		doc.Relationships[0].Likelihood = ptr(0.2)
		result, err := svc.Import(ctx, doc, ImportOptions{OnConflict: ConflictOverwrite})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Dependencies)
		assert.Equal(t, 1, result.Relationships)

		after, err := db.FindDependencyByName(ctx, "Core banking")
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, entities.CriticalityLow, after.Criticality)
		assert.Len(t, db.Relationships, 1)
		for _, rel := range db.Relationships {
			assert.Equal(t, 0.2, rel.Likelihood)
		}
	})
}

func TestImportService_Import_RowErrors(t *testing.T) {
	doc := &parsers.Document{
		Dependencies: []parsers.RawDependency{
			{Name: "", Kind: "system", Criticality: "high", LineNum: 3},
			{Name: "Robot", Kind: "robot", Criticality: "high", LineNum: 4},
			{Name: "Negative", Kind: "system", Criticality: "high", MaxTolerableDowntimeHours: ptr(-1), LineNum: 5},
			{Name: "Good", Kind: "data", Criticality: "low", LineNum: 6},
		},
		Relationships: []parsers.RawRelationship{
			{Source: "Good", Target: "Ghost", Type: "supports", Likelihood: ptr(0.5), LineNum: 7},
			{Source: "Good", Target: "Good", Type: "supports", Likelihood: ptr(0.5), LineNum: 8},
			{Source: "Good", Target: "Other", Type: "supports", Likelihood: ptr(1.5), LineNum: 9},
			{Source: "Good", Target: "Other", Type: "supports", LineNum: 10},
		},
		Metrics: []parsers.RawMetricPoint{
			{Metric: "kri", Date: "01/02/2024", Value: ptr(1), LineNum: 11},
		},
	}

	result, err := NewImportService(mocks.NewRelationalDB(), nil).Import(context.Background(), doc, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dependencies)
	assert.Zero(t, result.Relationships)
	assert.Zero(t, result.MetricPoints)

	require.Len(t, result.Errors, 8)
	expected := []struct {
		line  int
		field string
	}{
		{3, "name"},
		{4, "kind"},
		{5, "max_tolerable_downtime_hours"},
		{7, "target"},
		{8, "target"},
		{9, "likelihood"},
		{10, "likelihood"},
		{11, "date"},
	}
	for i, want := range expected {
		assert.Equal(t, want.line, result.Errors[i].Line, "error %d", i)
		assert.Equal(t, want.field, result.Errors[i].Field, "error %d", i)
	}
	assert.Equal(t, "relationships line 7: target: unknown dependency", result.Errors[3].Error())
}
