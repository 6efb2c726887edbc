package handlers

import (
	"context"
	"errors"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// MaxRuns bounds the Monte-Carlo run count a caller may request.
const MaxRuns = 10000

// ScenarioHandler handles scenario and simulation operations.
type ScenarioHandler struct {
	service *services.ScenarioService
}

// NewScenarioHandler creates a new ScenarioHandler.
func NewScenarioHandler(service *services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{service: service}
}

// ScenarioRequest holds string-typed scenario fields.
type ScenarioRequest struct {
	Name        string
	Trigger     string // dependency ID or name
	Category    string
	Severity    string
	Description string
}

// RunRequest controls a simulation run.
type RunRequest struct {
	Seed *int64
	Runs int
}

func (r RunRequest) options() (services.RunOptions, error) {
	if r.Runs < 0 || r.Runs > MaxRuns {
		return services.RunOptions{}, &entities.ValidationError{
			Field:   "runs",
			Value:   formatFloat(float64(r.Runs)),
			Message: "must be between 0 and 10000",
		}
	}
	return services.RunOptions{Seed: r.Seed, Runs: r.Runs}, nil
}

// HandleCreate creates a new scenario.
func (h *ScenarioHandler) HandleCreate(ctx context.Context, req ScenarioRequest) (*entities.Scenario, error) {
	category, err := parseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	severity, err := parseSeverity(req.Severity)
	if err != nil {
		return nil, err
	}
	return h.service.Create(ctx, services.ScenarioInput{
		Name:        req.Name,
		TriggerRef:  req.Trigger,
		Category:    category,
		Severity:    severity,
		Description: req.Description,
	})
}

// HandleList lists all scenarios.
func (h *ScenarioHandler) HandleList(ctx context.Context) ([]*entities.Scenario, error) {
	return h.service.List(ctx)
}

// HandleShow returns one scenario with its latest results.
func (h *ScenarioHandler) HandleShow(ctx context.Context, id string) (*entities.Scenario, error) {
	return h.service.Get(ctx, id)
}

// HandleDelete removes a scenario.
func (h *ScenarioHandler) HandleDelete(ctx context.Context, id string) error {
	if _, err := h.service.Get(ctx, id); err != nil {
		return err
	}
	return h.service.Delete(ctx, id)
}

// HandleRun simulates a stored scenario and saves its results.
func (h *ScenarioHandler) HandleRun(ctx context.Context, id string, req RunRequest) (*services.RunOutcome, error) {
	opts, err := req.options()
	if err != nil {
		return nil, err
	}
	return h.service.Run(ctx, id, opts)
}

// HandleSimulate runs an ad-hoc simulation from a trigger dependency.
func (h *ScenarioHandler) HandleSimulate(ctx context.Context, trigger, severity string, req RunRequest) (*services.RunOutcome, error) {
	if trigger == "" {
		return nil, errors.New("trigger dependency is required")
	}
	sev, err := parseSeverity(severity)
	if err != nil {
		return nil, err
	}
	opts, err := req.options()
	if err != nil {
		return nil, err
	}
	return h.service.Simulate(ctx, trigger, sev, opts)
}
