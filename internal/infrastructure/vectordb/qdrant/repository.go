// Package qdrant provides a ScenarioIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
)

// Repository implements ports.ScenarioIndex and ports.CollectionManager using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// apiKeyInterceptor attaches the Qdrant Cloud api-key header to every call.
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Collection returns the collection name.
func (r *Repository) Collection() string {
	return r.collection
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and all its points.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// IndexScenario stores or replaces the scenario's embedding. The point ID is
// the scenario ID, so re-indexing overwrites.
func (r *Repository) IndexScenario(ctx context.Context, scenario *entities.Scenario, embedding []float32) error {
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           waitForResult(),
		Points:         []*pb.PointStruct{scenarioPoint(scenario, embedding)},
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}
	return nil
}

// SearchScenarios returns the scenarios closest to the embedding. An empty
// category searches all categories.
func (r *Repository) SearchScenarios(ctx context.Context, embedding []float32, category entities.ScenarioCategory, limit int) ([]entities.ScenarioMatch, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         categoryFilter(category),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToMatches(resp.Result), nil
}

// DeleteScenario removes a scenario's embedding.
func (r *Repository) DeleteScenario(ctx context.Context, scenarioID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           waitForResult(),
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: scenarioID}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}

// Count returns the number of indexed scenarios.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// waitForResult makes writes visible to the next search.
func waitForResult() *bool {
	wait := true
	return &wait
}

func scenarioPoint(scenario *entities.Scenario, embedding []float32) *pb.PointStruct {
	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: scenario.ID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: embedding},
			},
		},
		Payload: map[string]*pb.Value{
			"name":        {Kind: &pb.Value_StringValue{StringValue: scenario.Name}},
			"category":    {Kind: &pb.Value_StringValue{StringValue: string(scenario.Category)}},
			"severity":    {Kind: &pb.Value_StringValue{StringValue: scenario.Severity.String()}},
			"trigger_id":  {Kind: &pb.Value_StringValue{StringValue: scenario.TriggerID}},
			"description": {Kind: &pb.Value_StringValue{StringValue: scenario.Description}},
			"updated_at":  {Kind: &pb.Value_StringValue{StringValue: scenario.UpdatedAt.Format(time.RFC3339)}},
		},
	}
}

func categoryFilter(category entities.ScenarioCategory) *pb.Filter {
	if category == "" {
		return nil
	}
	return &pb.Filter{
		Must: []*pb.Condition{
			{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key: "category",
						Match: &pb.Match{
							MatchValue: &pb.Match_Keyword{
								Keyword: string(category),
							},
						},
					},
				},
			},
		},
	}
}

// scoredPointsToMatches converts scored points to scenario matches. Points
// with an unreadable severity keep the zero value.
func scoredPointsToMatches(points []*pb.ScoredPoint) []entities.ScenarioMatch {
	matches := make([]entities.ScenarioMatch, 0, len(points))

	for _, point := range points {
		payload := point.Payload
		severity, _ := entities.ParseSeverity(getStringValue(payload, "severity"))

		matches = append(matches, entities.ScenarioMatch{
			ScenarioID: point.Id.GetUuid(),
			Name:       getStringValue(payload, "name"),
			Category:   entities.ScenarioCategory(getStringValue(payload, "category")),
			Severity:   severity,
			Score:      point.Score,
		})
	}

	return matches
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
