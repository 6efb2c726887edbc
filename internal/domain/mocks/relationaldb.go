package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// RelationalDB is an in-memory implementation of ports.RelationalDB.
// Err, when set, is returned from every call.
type RelationalDB struct {
	Dependencies  map[string]*entities.Dependency
	Relationships map[string]*entities.Relationship
	Scenarios     map[string]*entities.Scenario
	Metrics       map[string][]entities.MetricPoint
	Audit         []entities.AuditEntry
	Err           error

	// SaveErr fails only write calls.
	SaveErr error
	// AuditErr fails only LogAction.
	AuditErr error

	relOrder []string
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Dependencies:  make(map[string]*entities.Dependency),
		Relationships: make(map[string]*entities.Relationship),
		Scenarios:     make(map[string]*entities.Scenario),
		Metrics:       make(map[string][]entities.MetricPoint),
	}
}

func (m *RelationalDB) writeErr() error {
	if m.Err != nil {
		return m.Err
	}
	return m.SaveErr
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// Dependency methods.

func (m *RelationalDB) SaveDependency(_ context.Context, dep *entities.Dependency) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	cp := *dep
	m.Dependencies[dep.ID] = &cp
	return nil
}

func (m *RelationalDB) FindDependencyByID(_ context.Context, id string) (*entities.Dependency, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	d, ok := m.Dependencies[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *RelationalDB) FindDependencyByName(_ context.Context, name string) (*entities.Dependency, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, d := range m.Dependencies {
		if strings.EqualFold(d.Name, name) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *RelationalDB) ListDependencies(_ context.Context, businessFunction string, limit, offset int) ([]*entities.Dependency, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Dependency
	for _, d := range m.Dependencies {
		if businessFunction != "" && d.BusinessFunction != businessFunction {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if offset > len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *RelationalDB) CountDependencies(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Dependencies), nil
}

func (m *RelationalDB) DeleteDependency(_ context.Context, id string) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	if _, ok := m.Dependencies[id]; !ok {
		return fmt.Errorf("dependency not found: %s", id)
	}
	delete(m.Dependencies, id)
	return nil
}

// Relationship methods.

func (m *RelationalDB) SaveRelationship(_ context.Context, rel *entities.Relationship) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	if _, ok := m.Relationships[rel.ID]; !ok {
		m.relOrder = append(m.relOrder, rel.ID)
	}
	cp := *rel
	m.Relationships[rel.ID] = &cp
	return nil
}

func (m *RelationalDB) FindRelationshipByID(_ context.Context, id string) (*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.Relationships[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *RelationalDB) filterRelationships(keep func(r *entities.Relationship) bool) []entities.Relationship {
	var result []entities.Relationship
	for _, id := range m.relOrder {
		r, ok := m.Relationships[id]
		if ok && keep(r) {
			result = append(result, *r)
		}
	}
	return result
}

func (m *RelationalDB) FindOutgoingRelationships(_ context.Context, dependencyID string) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.filterRelationships(func(r *entities.Relationship) bool { return r.SourceID == dependencyID }), nil
}

func (m *RelationalDB) FindIncomingRelationships(_ context.Context, dependencyID string) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.filterRelationships(func(r *entities.Relationship) bool { return r.TargetID == dependencyID }), nil
}

func (m *RelationalDB) ListRelationships(_ context.Context) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.filterRelationships(func(*entities.Relationship) bool { return true }), nil
}

func (m *RelationalDB) FindRelationshipBetween(_ context.Context, sourceID, targetID string) (*entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	found := m.filterRelationships(func(r *entities.Relationship) bool {
		return r.SourceID == sourceID && r.TargetID == targetID
	})
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (m *RelationalDB) FindRelatedDependencies(_ context.Context, dependencyID string, depth int) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	visited := map[string]bool{dependencyID: true}
	frontier := []string{dependencyID}
	var result []string
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, id := range frontier {
			for _, r := range m.filterRelationships(func(r *entities.Relationship) bool {
				return r.SourceID == id || r.TargetID == id
			}) {
				other := r.TargetID
				if other == id {
					other = r.SourceID
				}
				if !visited[other] {
					visited[other] = true
					result = append(result, other)
					next = append(next, other)
				}
			}
		}
		frontier = next
	}
	return result, nil
}

func (m *RelationalDB) DeleteRelationship(_ context.Context, id string) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	if _, ok := m.Relationships[id]; !ok {
		return fmt.Errorf("relationship not found: %s", id)
	}
	delete(m.Relationships, id)
	return nil
}

func (m *RelationalDB) DeleteRelationshipsByDependency(_ context.Context, dependencyID string) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	for id, r := range m.Relationships {
		if r.SourceID == dependencyID || r.TargetID == dependencyID {
			delete(m.Relationships, id)
		}
	}
	return nil
}

func (m *RelationalDB) CountRelationships(_ context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Relationships), nil
}

// Scenario methods.

func (m *RelationalDB) SaveScenario(_ context.Context, scenario *entities.Scenario) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	cp := *scenario
	m.Scenarios[scenario.ID] = &cp
	return nil
}

func (m *RelationalDB) FindScenarioByID(_ context.Context, id string) (*entities.Scenario, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Scenarios[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *RelationalDB) ListScenarios(_ context.Context) ([]*entities.Scenario, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.Scenario, 0, len(m.Scenarios))
	for _, s := range m.Scenarios {
		cp := *s
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *RelationalDB) FindScenariosByTrigger(_ context.Context, dependencyID string) ([]*entities.Scenario, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Scenario
	for _, s := range m.Scenarios {
		if s.TriggerID == dependencyID {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *RelationalDB) SaveScenarioResults(_ context.Context, scenarioID string, result *entities.SimulationResult) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	s, ok := m.Scenarios[scenarioID]
	if !ok {
		return fmt.Errorf("scenario not found: %s", scenarioID)
	}
	s.Results = result
	s.UpdatedAt = time.Now()
	return nil
}

func (m *RelationalDB) DeleteScenario(_ context.Context, id string) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	if _, ok := m.Scenarios[id]; !ok {
		return fmt.Errorf("scenario not found: %s", id)
	}
	delete(m.Scenarios, id)
	return nil
}

// Metric methods.

func (m *RelationalDB) SaveMetricPoints(_ context.Context, points []entities.MetricPoint) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	for _, p := range points {
		series := m.Metrics[p.Metric]
		replaced := false
		for i := range series {
			if series[i].Date.Equal(p.Date) {
				series[i] = p
				replaced = true
			}
		}
		if !replaced {
			series = append(series, p)
		}
		m.Metrics[p.Metric] = series
	}
	return nil
}

func (m *RelationalDB) ListMetricSeries(_ context.Context, metric string) ([]entities.MetricPoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	series := append([]entities.MetricPoint(nil), m.Metrics[metric]...)
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

func (m *RelationalDB) ListMetricNames(_ context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	names := make([]string, 0, len(m.Metrics))
	for name, series := range m.Metrics {
		if len(series) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Audit methods.

func (m *RelationalDB) LogAction(_ context.Context, action string, subjectID string, details map[string]any) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	if m.AuditErr != nil {
		return m.AuditErr
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        int64(len(m.Audit) + 1),
		Action:    action,
		SubjectID: subjectID,
		Details:   details,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *RelationalDB) FindAuditLog(_ context.Context, subjectID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for _, e := range m.Audit {
		if e.SubjectID == subjectID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for _, e := range m.Audit {
		if e.Action == action {
			result = append(result, e)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
