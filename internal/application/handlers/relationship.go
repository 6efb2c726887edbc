package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// RelationshipHandler handles relationship operations.
type RelationshipHandler struct {
	service      *services.RelationshipService
	dependencies *services.DependencyService
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService, dependencies *services.DependencyService) *RelationshipHandler {
	return &RelationshipHandler{
		service:      service,
		dependencies: dependencies,
	}
}

// RelationOptions holds the string-typed propagation attributes of an edge.
type RelationOptions struct {
	Likelihood   float64
	DelayMinutes float64
	Strength     string
}

// RelationUpdate edits an edge. Nil fields are unchanged.
type RelationUpdate struct {
	Likelihood   *float64
	DelayMinutes *float64
	Strength     *string
}

// ListOptions configures relationship listing behavior.
type ListOptions struct {
	Type  string // Filter by relationship type (empty = all)
	Depth int    // Graph traversal depth (default 1)
}

// RelationshipInfo is a relationship with its endpoint names.
type RelationshipInfo struct {
	Relationship entities.Relationship `json:"relationship"`
	SourceName   string                `json:"source_name"`
	TargetName   string                `json:"target_name"`
}

// ListResult contains the result of listing relationships.
type ListResult struct {
	Dependency    *entities.Dependency   `json:"dependency"`
	Relationships []RelationshipInfo     `json:"relationships"`
	Related       []*entities.Dependency `json:"related,omitempty"`
}

// HandleCreate creates a new relationship between two dependencies.
func (h *RelationshipHandler) HandleCreate(
	ctx context.Context,
	sourceRef string,
	relType string,
	targetRef string,
	opts RelationOptions,
) (*entities.Relationship, error) {
	rt, err := parseRelationType(relType)
	if err != nil {
		return nil, err
	}
	strength, err := parseStrength(opts.Strength)
	if err != nil {
		return nil, err
	}

	return h.service.Create(ctx, sourceRef, rt, targetRef, services.RelationshipOptions{
		Likelihood:   opts.Likelihood,
		DelayMinutes: opts.DelayMinutes,
		Strength:     strength,
	})
}

// HandleUpdate edits an existing relationship.
func (h *RelationshipHandler) HandleUpdate(ctx context.Context, id string, upd RelationUpdate) (*entities.Relationship, error) {
	svcUpd := services.RelationshipUpdate{
		Likelihood:   upd.Likelihood,
		DelayMinutes: upd.DelayMinutes,
	}
	if upd.Strength != nil {
		strength, err := parseStrength(*upd.Strength)
		if err != nil {
			return nil, err
		}
		svcUpd.Strength = &strength
	}
	return h.service.Update(ctx, id, svcUpd)
}

// HandleDelete removes a relationship by ID.
func (h *RelationshipHandler) HandleDelete(ctx context.Context, id string) error {
	return h.service.Delete(ctx, id)
}

// HandleList returns relationships for a dependency with optional filtering.
// A depth above 1 also returns every dependency within that many hops.
func (h *RelationshipHandler) HandleList(ctx context.Context, ref string, opts ListOptions) (*ListResult, error) {
	var filter entities.RelationType
	if opts.Type != "" {
		rt, err := parseRelationType(opts.Type)
		if err != nil {
			return nil, err
		}
		filter = rt
	}

	dep, err := h.dependencies.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	relationships, err := h.service.List(ctx, dep.ID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	names := map[string]string{dep.ID: dep.Name}
	result := &ListResult{
		Dependency:    dep,
		Relationships: make([]RelationshipInfo, 0, len(relationships)),
	}
	for i := range relationships {
		rel := relationships[i]
		if filter != "" && rel.Type != filter {
			continue
		}
		source, err := h.nameOf(ctx, rel.SourceID, names)
		if err != nil {
			return nil, err
		}
		target, err := h.nameOf(ctx, rel.TargetID, names)
		if err != nil {
			return nil, err
		}
		result.Relationships = append(result.Relationships, RelationshipInfo{
			Relationship: rel,
			SourceName:   source,
			TargetName:   target,
		})
	}

	if opts.Depth > 1 {
		related, err := h.service.ListWithDepth(ctx, dep.ID, opts.Depth)
		if err != nil {
			return nil, fmt.Errorf("traversing graph: %w", err)
		}
		result.Related = related
	}

	return result, nil
}

// nameOf resolves a dependency name, caching lookups in names.
func (h *RelationshipHandler) nameOf(ctx context.Context, id string, names map[string]string) (string, error) {
	if name, ok := names[id]; ok {
		return name, nil
	}
	dep, err := h.dependencies.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", id, err)
	}
	names[id] = dep.Name
	return dep.Name, nil
}
