package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

const scenarioColumns = `id, name, trigger_id, category, severity, description, results, created_at, updated_at`

// SaveScenario saves or updates a scenario, including its results.
func (r *Repository) SaveScenario(ctx context.Context, scenario *entities.Scenario) error {
	results, err := marshalResults(scenario.Results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scenarios (id, name, trigger_id, category, severity, description, results, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			trigger_id = excluded.trigger_id,
			category = excluded.category,
			severity = excluded.severity,
			description = excluded.description,
			results = excluded.results,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		scenario.ID,
		scenario.Name,
		scenario.TriggerID,
		string(scenario.Category),
		scenario.Severity.String(),
		scenario.Description,
		results,
		scenario.CreatedAt,
		scenario.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving scenario: %w", err)
	}
	return nil
}

// FindScenarioByID finds a scenario by its ID.
func (r *Repository) FindScenarioByID(ctx context.Context, id string) (*entities.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE id = ?`
	scenario, err := scanScenario(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return scenario, err
}

// ListScenarios lists all scenarios ordered by name.
func (r *Repository) ListScenarios(ctx context.Context) ([]*entities.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios ORDER BY name ASC`
	return r.queryScenarios(ctx, query)
}

// FindScenariosByTrigger lists scenarios triggered by the dependency.
func (r *Repository) FindScenariosByTrigger(ctx context.Context, dependencyID string) ([]*entities.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE trigger_id = ? ORDER BY name ASC`
	return r.queryScenarios(ctx, query, dependencyID)
}

// SaveScenarioResults replaces a scenario's last results and bumps its update time.
func (r *Repository) SaveScenarioResults(ctx context.Context, scenarioID string, result *entities.SimulationResult) error {
	results, err := marshalResults(result)
	if err != nil {
		return err
	}

	query := `UPDATE scenarios SET results = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, results, timeNow(), scenarioID)
	if err != nil {
		return fmt.Errorf("saving scenario results: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("scenario not found: %s", scenarioID)
	}
	return nil
}

// DeleteScenario deletes a scenario by ID.
func (r *Repository) DeleteScenario(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting scenario: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("scenario not found: %s", id)
	}
	return nil
}

func (r *Repository) queryScenarios(ctx context.Context, query string, args ...any) ([]*entities.Scenario, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]*entities.Scenario, 0, 16)
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, rows.Err()
}

func scanScenario(row scanner) (*entities.Scenario, error) {
	var s entities.Scenario
	var category, severity string
	var results sql.NullString

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.TriggerID,
		&category,
		&severity,
		&s.Description,
		&results,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning scenario: %w", err)
	}

	s.Category = entities.ScenarioCategory(category)
	if s.Severity, err = entities.ParseSeverity(severity); err != nil {
		return nil, fmt.Errorf("scanning scenario %s: %w", s.ID, err)
	}

	if results.Valid && results.String != "" {
		s.Results = &entities.SimulationResult{}
		if err := json.Unmarshal([]byte(results.String), s.Results); err != nil {
			return nil, fmt.Errorf("unmarshaling results: %w", err)
		}
	}
	return &s, nil
}

func marshalResults(result *entities.SimulationResult) (sql.NullString, error) {
	if result == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshaling results: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
