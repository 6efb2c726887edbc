package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/ports"
	"github.com/ersonp/resilience-core/internal/domain/simulation"
)

// ScenarioInput describes a scenario to create. TriggerRef is a dependency
// ID or name.
type ScenarioInput struct {
	Name        string
	TriggerRef  string
	Category    entities.ScenarioCategory
	Severity    entities.Severity
	Description string
}

// RunOptions controls a simulation run.
type RunOptions struct {
	// Seed makes the run reproducible when set.
	Seed *int64
	// Runs > 1 adds a Monte-Carlo summary over that many walks.
	Runs int
}

// RunOutcome is the result of running a scenario.
type RunOutcome struct {
	Scenario *entities.Scenario          `json:"scenario,omitempty"`
	Result   *entities.SimulationResult  `json:"result"`
	Summary  *entities.SimulationSummary `json:"summary,omitempty"`
}

// ScenarioOption configures a ScenarioService.
type ScenarioOption func(*ScenarioService)

// WithScenarioIndex indexes scenario descriptions for similarity search.
func WithScenarioIndex(index ports.ScenarioIndex, embedder ports.Embedder) ScenarioOption {
	return func(s *ScenarioService) {
		s.index = index
		s.embedder = embedder
	}
}

// WithRecorder reports simulation measurements to r.
func WithRecorder(r ports.SimulationRecorder) ScenarioOption {
	return func(s *ScenarioService) {
		s.recorder = r
	}
}

// WithRandomSource replaces the simulator's random source for unseeded runs.
func WithRandomSource(src simulation.RandomSource) ScenarioOption {
	return func(s *ScenarioService) {
		s.rng = src
	}
}

// ScenarioService manages scenarios and runs failure simulations over the
// stored dependency graph.
type ScenarioService struct {
	relationalDB ports.RelationalDB
	simConfig    simulation.Config
	logger       *slog.Logger

	index    ports.ScenarioIndex
	embedder ports.Embedder
	recorder ports.SimulationRecorder
	rng      simulation.RandomSource
}

// NewScenarioService creates a new ScenarioService. A nil logger uses slog.Default().
func NewScenarioService(relationalDB ports.RelationalDB, simConfig simulation.Config, logger *slog.Logger, opts ...ScenarioOption) *ScenarioService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ScenarioService{
		relationalDB: relationalDB,
		simConfig:    simConfig,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new scenario.
func (s *ScenarioService) Create(ctx context.Context, in ScenarioInput) (*entities.Scenario, error) {
	trigger, err := resolveDependency(ctx, s.relationalDB, in.TriggerRef)
	if err != nil {
		return nil, fmt.Errorf("trigger: %w", err)
	}

	now := timeNow()
	scenario := &entities.Scenario{
		ID:          uuid.New().String(),
		Name:        in.Name,
		TriggerID:   trigger.ID,
		Category:    in.Category,
		Severity:    in.Severity,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	if err := s.relationalDB.SaveScenario(ctx, scenario); err != nil {
		return nil, fmt.Errorf("saving scenario: %w", err)
	}
	s.indexScenario(ctx, scenario)

	return scenario, nil
}

// indexScenario adds the scenario to the similarity index when one is
// configured. Index failures are logged, not returned.
func (s *ScenarioService) indexScenario(ctx context.Context, scenario *entities.Scenario) {
	if s.index == nil || s.embedder == nil {
		return
	}
	embedding, err := s.embedder.Embed(ctx, scenario.IndexText())
	if err != nil {
		s.logger.Warn("embedding scenario failed", slog.String("scenario_id", scenario.ID), slog.Any("error", err))
		return
	}
	if err := s.index.IndexScenario(ctx, scenario, embedding); err != nil {
		s.logger.Warn("indexing scenario failed", slog.String("scenario_id", scenario.ID), slog.Any("error", err))
	}
}

// Get returns a scenario by ID.
func (s *ScenarioService) Get(ctx context.Context, id string) (*entities.Scenario, error) {
	scenario, err := s.relationalDB.FindScenarioByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding scenario: %w", err)
	}
	if scenario == nil {
		return nil, &entities.NotFoundError{Kind: "scenario", ID: id}
	}
	return scenario, nil
}

// List returns all scenarios.
func (s *ScenarioService) List(ctx context.Context) ([]*entities.Scenario, error) {
	scenarios, err := s.relationalDB.ListScenarios(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}
	return scenarios, nil
}

// Delete removes a scenario and its index entry.
func (s *ScenarioService) Delete(ctx context.Context, id string) error {
	if err := s.relationalDB.DeleteScenario(ctx, id); err != nil {
		return fmt.Errorf("deleting scenario: %w", err)
	}
	if s.index != nil {
		if err := s.index.DeleteScenario(ctx, id); err != nil {
			s.logger.Warn("removing scenario from index failed", slog.String("scenario_id", id), slog.Any("error", err))
		}
	}
	logAudit(ctx, s.relationalDB, s.logger, entities.ActionScenarioDeleted, id, nil)
	return nil
}

// LoadGraph reads every dependency and relationship from the store.
func (s *ScenarioService) LoadGraph(ctx context.Context) (simulation.Graph, error) {
	deps, err := s.relationalDB.ListDependencies(ctx, "", 0, 0)
	if err != nil {
		return simulation.Graph{}, fmt.Errorf("loading dependencies: %w", err)
	}
	rels, err := s.relationalDB.ListRelationships(ctx)
	if err != nil {
		return simulation.Graph{}, fmt.Errorf("loading relationships: %w", err)
	}

	graph := simulation.Graph{
		Dependencies:  make([]entities.Dependency, len(deps)),
		Relationships: rels,
	}
	for i, d := range deps {
		graph.Dependencies[i] = *d
	}
	return graph, nil
}

// Run simulates a stored scenario against the current graph and saves the
// result as the scenario's latest results.
func (s *ScenarioService) Run(ctx context.Context, id string, opts RunOptions) (*RunOutcome, error) {
	scenario, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := s.simulate(ctx, scenario.TriggerID, scenario.Severity, opts)
	if err != nil {
		return nil, err
	}

	if err := s.relationalDB.SaveScenarioResults(ctx, scenario.ID, outcome.Result); err != nil {
		return nil, fmt.Errorf("saving results: %w", err)
	}
	scenario.Results = outcome.Result
	scenario.UpdatedAt = outcome.Result.SimulatedAt
	outcome.Scenario = scenario

	logAudit(ctx, s.relationalDB, s.logger, entities.ActionSimulationRun, scenario.ID, map[string]any{
		"total_affected": outcome.Result.TotalAffected,
		"downtime_hours": outcome.Result.EstimatedTotalDowntimeHours,
		"runs":           opts.Runs,
	})

	return outcome, nil
}

// Simulate runs an ad-hoc simulation from a trigger without saving anything.
func (s *ScenarioService) Simulate(ctx context.Context, triggerRef string, severity entities.Severity, opts RunOptions) (*RunOutcome, error) {
	trigger, err := resolveDependency(ctx, s.relationalDB, triggerRef)
	if err != nil {
		return nil, err
	}
	return s.simulate(ctx, trigger.ID, severity, opts)
}

func (s *ScenarioService) simulate(ctx context.Context, triggerID string, severity entities.Severity, opts RunOptions) (*RunOutcome, error) {
	graph, err := s.LoadGraph(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.newSimulator(opts).Simulate(graph, triggerID, severity)
	duration := time.Since(start)
	if err != nil {
		s.record(ports.OutcomeError, nil, duration)
		return nil, fmt.Errorf("simulating: %w", err)
	}
	s.record(ports.OutcomeSuccess, result, duration)

	s.logger.Info("simulation complete",
		slog.String("trigger_id", triggerID),
		slog.String("severity", severity.String()),
		slog.Int("affected", result.TotalAffected),
		slog.Float64("downtime_hours", result.EstimatedTotalDowntimeHours),
		slog.Duration("duration", duration),
	)

	outcome := &RunOutcome{Result: result}
	if opts.Runs > 1 {
		summary, err := s.newSimulator(opts).SimulateMany(graph, triggerID, severity, opts.Runs)
		if err != nil {
			return nil, fmt.Errorf("simulating %d runs: %w", opts.Runs, err)
		}
		outcome.Summary = summary
	}
	return outcome, nil
}

func (s *ScenarioService) newSimulator(opts RunOptions) *simulation.Simulator {
	simOpts := []simulation.Option{simulation.WithClock(timeNow)}
	switch {
	case opts.Seed != nil:
		simOpts = append(simOpts, simulation.WithSeed(*opts.Seed))
	case s.rng != nil:
		simOpts = append(simOpts, simulation.WithRandomSource(s.rng))
	}
	return simulation.New(s.simConfig, simOpts...)
}

func (s *ScenarioService) record(outcome string, result *entities.SimulationResult, d time.Duration) {
	if s.recorder != nil {
		s.recorder.RecordSimulation(outcome, result, d)
	}
}
