package qdrant

import (
	"testing"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
)

func TestNewRepository_RequiresCollection(t *testing.T) {
	_, err := NewRepository(config.QdrantConfig{Host: "localhost", Port: 6334})
	require.Error(t, err)
}

func TestNewRepository_LazyConnect(t *testing.T) {
	// grpc.NewClient does not dial until the first call.
	repo, err := NewRepository(config.QdrantConfig{Host: "localhost", Port: 6334, Collection: "resil_test", APIKey: "secret"})
	require.NoError(t, err)
	defer repo.Close()
	assert.Equal(t, "resil_test", repo.Collection())
}

func TestScenarioPoint(t *testing.T) {
	scenario := &entities.Scenario{
		ID:          "4b1c2f0e-8f5e-4e7a-9d0c-1f2e3d4c5b6a",
		Name:        "Ransomware",
		TriggerID:   "dep-1",
		Category:    entities.CategoryCyber,
		Severity:    entities.SeverityCritical,
		Description: "file servers encrypted",
		UpdatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	point := scenarioPoint(scenario, []float32{0.1, 0.2})

	assert.Equal(t, scenario.ID, point.Id.GetUuid())
	assert.Equal(t, []float32{0.1, 0.2}, point.Vectors.GetVector().GetData())
	assert.Equal(t, "cyber", point.Payload["category"].GetStringValue())
	assert.Equal(t, "critical", point.Payload["severity"].GetStringValue())
	assert.Equal(t, "dep-1", point.Payload["trigger_id"].GetStringValue())
	assert.Equal(t, "2024-01-02T03:04:05Z", point.Payload["updated_at"].GetStringValue())
}

func TestCategoryFilter(t *testing.T) {
	assert.Nil(t, categoryFilter(""))

	filter := categoryFilter(entities.CategoryNaturalDisaster)
	require.NotNil(t, filter)
	require.Len(t, filter.Must, 1)
	field := filter.Must[0].GetField()
	assert.Equal(t, "category", field.Key)
	assert.Equal(t, "natural_disaster", field.Match.GetKeyword())
}

func TestScoredPointsToMatches(t *testing.T) {
	points := []*pb.ScoredPoint{
		{
			Id:    &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "s1"}},
			Score: 0.87,
			Payload: map[string]*pb.Value{
				"name":     {Kind: &pb.Value_StringValue{StringValue: "Flood"}},
				"category": {Kind: &pb.Value_StringValue{StringValue: "natural_disaster"}},
				"severity": {Kind: &pb.Value_StringValue{StringValue: "high"}},
			},
		},
		{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "s2"}},
			Score:   0.5,
			Payload: map[string]*pb.Value{},
		},
	}

	matches := scoredPointsToMatches(points)
	require.Len(t, matches, 2)
	assert.Equal(t, entities.ScenarioMatch{
		ScenarioID: "s1",
		Name:       "Flood",
		Category:   entities.CategoryNaturalDisaster,
		Severity:   entities.SeverityHigh,
		Score:      0.87,
	}, matches[0])
	assert.Equal(t, "s2", matches[1].ScenarioID)
	assert.Equal(t, entities.SeverityLow, matches[1].Severity)
}
