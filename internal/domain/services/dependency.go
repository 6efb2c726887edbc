package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/ports"
)

// ErrDependencyInUse is returned when deleting a dependency that relationships
// or scenarios still reference.
var ErrDependencyInUse = errors.New("dependency is still referenced")

var timeNow = time.Now

// DependencyService manages the dependency register.
type DependencyService struct {
	relationalDB ports.RelationalDB
	logger       *slog.Logger
}

// NewDependencyService creates a new DependencyService. A nil logger uses
// slog.Default().
func NewDependencyService(relationalDB ports.RelationalDB, logger *slog.Logger) *DependencyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DependencyService{relationalDB: relationalDB, logger: logger}
}

// Register validates and stores a new dependency, assigning its ID and
// timestamps. Status defaults to active and redundancy to none.
func (s *DependencyService) Register(ctx context.Context, dep *entities.Dependency) (*entities.Dependency, error) {
	if dep.Status == "" {
		dep.Status = entities.StatusActive
	}
	if dep.Redundancy == "" {
		dep.Redundancy = entities.RedundancyNone
	}
	if err := dep.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.relationalDB.FindDependencyByName(ctx, dep.Name)
	if err != nil {
		return nil, fmt.Errorf("checking existing dependency: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("dependency %q already exists (id: %s)", dep.Name, existing.ID)
	}

	now := timeNow()
	if dep.ID == "" {
		dep.ID = uuid.New().String()
	}
	dep.CreatedAt = now
	dep.UpdatedAt = now

	if err := s.relationalDB.SaveDependency(ctx, dep); err != nil {
		return nil, fmt.Errorf("saving dependency: %w", err)
	}
	logAudit(ctx, s.relationalDB, s.logger, entities.ActionDependencyRegistered, dep.ID, map[string]any{
		"name":              dep.Name,
		"business_function": dep.BusinessFunction,
	})

	return dep, nil
}

// Get resolves a dependency by ID or, failing that, by name.
func (s *DependencyService) Get(ctx context.Context, ref string) (*entities.Dependency, error) {
	return resolveDependency(ctx, s.relationalDB, ref)
}

// List returns dependencies, optionally filtered by business function.
func (s *DependencyService) List(ctx context.Context, businessFunction string, limit, offset int) ([]*entities.Dependency, error) {
	deps, err := s.relationalDB.ListDependencies(ctx, businessFunction, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	return deps, nil
}

// Update replaces an existing dependency's editable fields.
func (s *DependencyService) Update(ctx context.Context, dep *entities.Dependency) (*entities.Dependency, error) {
	existing, err := resolveDependency(ctx, s.relationalDB, dep.ID)
	if err != nil {
		return nil, err
	}
	if err := dep.Validate(); err != nil {
		return nil, err
	}

	dep.CreatedAt = existing.CreatedAt
	dep.UpdatedAt = timeNow()
	if err := s.relationalDB.SaveDependency(ctx, dep); err != nil {
		return nil, fmt.Errorf("saving dependency: %w", err)
	}
	return dep, nil
}

// SetStatus changes a dependency's operational status and audits the change.
func (s *DependencyService) SetStatus(ctx context.Context, ref string, status entities.DependencyStatus) (*entities.Dependency, error) {
	if !status.IsValid() {
		return nil, &entities.ValidationError{Field: "status", Value: string(status), Message: "must be one of active, degraded, inactive"}
	}
	dep, err := resolveDependency(ctx, s.relationalDB, ref)
	if err != nil {
		return nil, err
	}
	if dep.Status == status {
		return dep, nil
	}

	previous := dep.Status
	dep.Status = status
	dep.UpdatedAt = timeNow()
	if err := s.relationalDB.SaveDependency(ctx, dep); err != nil {
		return nil, fmt.Errorf("saving dependency: %w", err)
	}
	logAudit(ctx, s.relationalDB, s.logger, entities.ActionStatusChanged, dep.ID, map[string]any{
		"from": string(previous),
		"to":   string(status),
	})
	return dep, nil
}

// Delete removes a dependency. It refuses while any relationship or scenario
// still references the dependency.
func (s *DependencyService) Delete(ctx context.Context, ref string) error {
	dep, err := resolveDependency(ctx, s.relationalDB, ref)
	if err != nil {
		return err
	}

	outgoing, err := s.relationalDB.FindOutgoingRelationships(ctx, dep.ID)
	if err != nil {
		return fmt.Errorf("checking relationships: %w", err)
	}
	incoming, err := s.relationalDB.FindIncomingRelationships(ctx, dep.ID)
	if err != nil {
		return fmt.Errorf("checking relationships: %w", err)
	}
	scenarios, err := s.relationalDB.FindScenariosByTrigger(ctx, dep.ID)
	if err != nil {
		return fmt.Errorf("checking scenarios: %w", err)
	}
	if n := len(outgoing) + len(incoming); n > 0 || len(scenarios) > 0 {
		return fmt.Errorf("%w: %s has %d relationship(s) and %d scenario(s)", ErrDependencyInUse, dep.Name, n, len(scenarios))
	}

	if err := s.relationalDB.DeleteDependency(ctx, dep.ID); err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	logAudit(ctx, s.relationalDB, s.logger, entities.ActionDependencyDeleted, dep.ID, map[string]any{"name": dep.Name})
	return nil
}

// Count returns the total number of dependencies.
func (s *DependencyService) Count(ctx context.Context) (int, error) {
	return s.relationalDB.CountDependencies(ctx)
}

// resolveDependency looks a dependency up by ID, then by name.
func resolveDependency(ctx context.Context, db ports.RelationalDB, ref string) (*entities.Dependency, error) {
	if ref == "" {
		return nil, &entities.ValidationError{Field: "dependency", Message: "is required"}
	}
	dep, err := db.FindDependencyByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("finding dependency: %w", err)
	}
	if dep != nil {
		return dep, nil
	}
	dep, err = db.FindDependencyByName(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("finding dependency: %w", err)
	}
	if dep == nil {
		return nil, &entities.NotFoundError{Kind: "dependency", ID: ref}
	}
	return dep, nil
}
