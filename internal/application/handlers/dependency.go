package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// DependencyHandler handles dependency register operations.
type DependencyHandler struct {
	service       *services.DependencyService
	relationships *services.RelationshipService
}

// NewDependencyHandler creates a new DependencyHandler.
func NewDependencyHandler(service *services.DependencyService, relationships *services.RelationshipService) *DependencyHandler {
	return &DependencyHandler{
		service:       service,
		relationships: relationships,
	}
}

// DependencyInput holds string-typed dependency fields from the CLI or HTTP.
type DependencyInput struct {
	Name                       string
	BusinessFunction           string
	Kind                       string
	Criticality                string
	Redundancy                 string
	MaxTolerableDowntimeHours  float64
	RecoveryTimeObjectiveHours float64
}

// DependencyUpdate edits a dependency. Nil fields are unchanged.
type DependencyUpdate struct {
	Name                       *string
	BusinessFunction           *string
	Kind                       *string
	Criticality                *string
	Redundancy                 *string
	MaxTolerableDowntimeHours  *float64
	RecoveryTimeObjectiveHours *float64
}

// DependencyDetail is a dependency with its direct edges.
type DependencyDetail struct {
	Dependency    *entities.Dependency    `json:"dependency"`
	Relationships []entities.Relationship `json:"relationships"`
}

// HandleAdd registers a new dependency.
func (h *DependencyHandler) HandleAdd(ctx context.Context, in DependencyInput) (*entities.Dependency, error) {
	kind, err := parseKind(in.Kind)
	if err != nil {
		return nil, err
	}
	criticality, err := parseCriticality(in.Criticality)
	if err != nil {
		return nil, err
	}
	redundancy, err := parseRedundancy(in.Redundancy)
	if err != nil {
		return nil, err
	}

	return h.service.Register(ctx, &entities.Dependency{
		Name:                       in.Name,
		BusinessFunction:           in.BusinessFunction,
		Kind:                       kind,
		Criticality:                criticality,
		Redundancy:                 redundancy,
		MaxTolerableDowntimeHours:  in.MaxTolerableDowntimeHours,
		RecoveryTimeObjectiveHours: in.RecoveryTimeObjectiveHours,
	})
}

// HandleList lists dependencies, optionally filtered by business function.
func (h *DependencyHandler) HandleList(ctx context.Context, businessFunction string, limit, offset int) ([]*entities.Dependency, error) {
	return h.service.List(ctx, businessFunction, limit, offset)
}

// HandleShow returns a dependency with its direct relationships.
func (h *DependencyHandler) HandleShow(ctx context.Context, ref string) (*DependencyDetail, error) {
	dep, err := h.service.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	rels, err := h.relationships.List(ctx, dep.ID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	return &DependencyDetail{Dependency: dep, Relationships: rels}, nil
}

// HandleUpdate applies the set fields of upd to a dependency.
func (h *DependencyHandler) HandleUpdate(ctx context.Context, ref string, upd DependencyUpdate) (*entities.Dependency, error) {
	dep, err := h.service.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		dep.Name = *upd.Name
	}
	if upd.BusinessFunction != nil {
		dep.BusinessFunction = *upd.BusinessFunction
	}
	if upd.Kind != nil {
		if dep.Kind, err = parseKind(*upd.Kind); err != nil {
			return nil, err
		}
	}
	if upd.Criticality != nil {
		if dep.Criticality, err = parseCriticality(*upd.Criticality); err != nil {
			return nil, err
		}
	}
	if upd.Redundancy != nil {
		if dep.Redundancy, err = parseRedundancy(*upd.Redundancy); err != nil {
			return nil, err
		}
	}
	if upd.MaxTolerableDowntimeHours != nil {
		dep.MaxTolerableDowntimeHours = *upd.MaxTolerableDowntimeHours
	}
	if upd.RecoveryTimeObjectiveHours != nil {
		dep.RecoveryTimeObjectiveHours = *upd.RecoveryTimeObjectiveHours
	}

	return h.service.Update(ctx, dep)
}

// HandleSetStatus changes a dependency's operational status.
func (h *DependencyHandler) HandleSetStatus(ctx context.Context, ref, status string) (*entities.Dependency, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return h.service.SetStatus(ctx, ref, st)
}

// HandleDelete removes a dependency.
func (h *DependencyHandler) HandleDelete(ctx context.Context, ref string) error {
	return h.service.Delete(ctx, ref)
}
