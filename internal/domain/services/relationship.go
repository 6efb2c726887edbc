package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/ports"
)

// RelationshipOptions holds the propagation attributes of a new relationship.
type RelationshipOptions struct {
	Likelihood   float64
	DelayMinutes float64
	Strength     entities.Strength
}

// RelationshipUpdate edits an existing relationship. Nil fields are unchanged.
type RelationshipUpdate struct {
	Likelihood   *float64
	DelayMinutes *float64
	Strength     *entities.Strength
}

// RelationshipService manages edges between dependencies.
type RelationshipService struct {
	relationalDB ports.RelationalDB
	logger       *slog.Logger
}

// NewRelationshipService creates a new RelationshipService. A nil logger uses
// slog.Default().
func NewRelationshipService(relationalDB ports.RelationalDB, logger *slog.Logger) *RelationshipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationshipService{relationalDB: relationalDB, logger: logger}
}

// Create creates a new relationship from source to target.
// It resolves both endpoints, rejects self loops and duplicates, and
// validates the propagation attributes.
func (s *RelationshipService) Create(
	ctx context.Context,
	sourceRef string,
	relType entities.RelationType,
	targetRef string,
	opts RelationshipOptions,
) (*entities.Relationship, error) {
	source, err := resolveDependency(ctx, s.relationalDB, sourceRef)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	target, err := resolveDependency(ctx, s.relationalDB, targetRef)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	now := timeNow()
	rel := &entities.Relationship{
		ID:           uuid.New().String(),
		SourceID:     source.ID,
		TargetID:     target.ID,
		Type:         relType,
		Strength:     opts.Strength,
		Likelihood:   opts.Likelihood,
		DelayMinutes: opts.DelayMinutes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := rel.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.relationalDB.FindRelationshipBetween(ctx, source.ID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("relationship already exists between these dependencies (id: %s)", existing.ID)
	}

	if err := s.relationalDB.SaveRelationship(ctx, rel); err != nil {
		return nil, fmt.Errorf("saving relationship: %w", err)
	}
	return rel, nil
}

// Update edits a relationship's likelihood, delay or strength.
func (s *RelationshipService) Update(ctx context.Context, id string, upd RelationshipUpdate) (*entities.Relationship, error) {
	rel, err := s.relationalDB.FindRelationshipByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding relationship: %w", err)
	}
	if rel == nil {
		return nil, &entities.NotFoundError{Kind: "relationship", ID: id}
	}

	if upd.Likelihood != nil {
		rel.Likelihood = *upd.Likelihood
	}
	if upd.DelayMinutes != nil {
		rel.DelayMinutes = *upd.DelayMinutes
	}
	if upd.Strength != nil {
		rel.Strength = *upd.Strength
	}
	if err := rel.Validate(); err != nil {
		return nil, err
	}

	rel.UpdatedAt = timeNow()
	if err := s.relationalDB.SaveRelationship(ctx, rel); err != nil {
		return nil, fmt.Errorf("saving relationship: %w", err)
	}
	return rel, nil
}

// Delete removes a relationship. Its endpoints are untouched.
func (s *RelationshipService) Delete(ctx context.Context, id string) error {
	if err := s.relationalDB.DeleteRelationship(ctx, id); err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	logAudit(ctx, s.relationalDB, s.logger, entities.ActionRelationshipDeleted, id, nil)
	return nil
}

// List returns the outgoing then incoming relationships of a dependency.
func (s *RelationshipService) List(ctx context.Context, dependencyRef string) ([]entities.Relationship, error) {
	dep, err := resolveDependency(ctx, s.relationalDB, dependencyRef)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.relationalDB.FindOutgoingRelationships(ctx, dep.ID)
	if err != nil {
		return nil, fmt.Errorf("finding outgoing relationships: %w", err)
	}
	incoming, err := s.relationalDB.FindIncomingRelationships(ctx, dep.ID)
	if err != nil {
		return nil, fmt.Errorf("finding incoming relationships: %w", err)
	}
	return append(outgoing, incoming...), nil
}

// ListWithDepth returns dependencies connected to the given one within depth hops.
func (s *RelationshipService) ListWithDepth(ctx context.Context, dependencyRef string, depth int) ([]*entities.Dependency, error) {
	if depth < 1 {
		return []*entities.Dependency{}, nil
	}
	dep, err := resolveDependency(ctx, s.relationalDB, dependencyRef)
	if err != nil {
		return nil, err
	}

	ids, err := s.relationalDB.FindRelatedDependencies(ctx, dep.ID, depth)
	if err != nil {
		return nil, fmt.Errorf("finding related dependencies: %w", err)
	}

	result := make([]*entities.Dependency, 0, len(ids))
	for _, id := range ids {
		related, err := s.relationalDB.FindDependencyByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("finding dependency %s: %w", id, err)
		}
		if related != nil {
			result = append(result, related)
		}
	}
	return result, nil
}

// FindBetween finds a direct relationship between two dependencies.
func (s *RelationshipService) FindBetween(ctx context.Context, sourceID, targetID string) (*entities.Relationship, error) {
	return s.relationalDB.FindRelationshipBetween(ctx, sourceID, targetID)
}

// Count returns the total number of relationships.
func (s *RelationshipService) Count(ctx context.Context) (int, error) {
	return s.relationalDB.CountRelationships(ctx)
}
