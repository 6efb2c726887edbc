package entities

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationship_Validate(t *testing.T) {
	valid := func() Relationship {
		return Relationship{
			ID:           "r1",
			SourceID:     "a",
			TargetID:     "b",
			Type:         RelationDependsOn,
			Strength:     StrengthStrong,
			Likelihood:   0.5,
			DelayMinutes: 10,
		}
	}

	tests := []struct {
		name   string
		mutate func(r *Relationship)
		field  string
	}{
		{name: "valid", mutate: func(r *Relationship) {}},
		{name: "likelihood zero is valid", mutate: func(r *Relationship) { r.Likelihood = 0 }},
		{name: "likelihood one is valid", mutate: func(r *Relationship) { r.Likelihood = 1 }},
		{name: "likelihood above one", mutate: func(r *Relationship) { r.Likelihood = 1.01 }, field: "likelihood"},
		{name: "negative likelihood", mutate: func(r *Relationship) { r.Likelihood = -0.1 }, field: "likelihood"},
		{name: "NaN likelihood", mutate: func(r *Relationship) { r.Likelihood = math.NaN() }, field: "likelihood"},
		{name: "negative delay", mutate: func(r *Relationship) { r.DelayMinutes = -1 }, field: "delay_minutes"},
		{name: "infinite delay", mutate: func(r *Relationship) { r.DelayMinutes = math.Inf(1) }, field: "delay_minutes"},
		{name: "self loop", mutate: func(r *Relationship) { r.TargetID = "a" }, field: "target_id"},
		{name: "missing source", mutate: func(r *Relationship) { r.SourceID = "" }, field: "source_id"},
		{name: "unknown type", mutate: func(r *Relationship) { r.Type = "likes" }, field: "type"},
		{name: "unknown strength", mutate: func(r *Relationship) { r.Strength = "huge" }, field: "strength"},
		{name: "empty strength allowed", mutate: func(r *Relationship) { r.Strength = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, "r1", vErr.Ref)
		})
	}
}

func TestDependency_Validate(t *testing.T) {
	valid := Dependency{Name: "Core banking", Kind: KindSystem, Criticality: CriticalityCritical}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = "  "
	assert.ErrorIs(t, noName.Validate(), ErrValidation)

	badKind := valid
	badKind.Kind = "robot"
	assert.ErrorIs(t, badKind.Validate(), ErrValidation)

	negative := valid
	negative.MaxTolerableDowntimeHours = -2
	assert.ErrorIs(t, negative.Validate(), ErrValidation)
}

func TestDependency_EstimatedDowntimeHours(t *testing.T) {
	d := Dependency{}
	assert.Equal(t, DefaultDowntimeHours, d.EstimatedDowntimeHours())

	d.MaxTolerableDowntimeHours = 4
	assert.Equal(t, 4.0, d.EstimatedDowntimeHours())
}

func TestScenario_Validate(t *testing.T) {
	s := Scenario{Name: "Payment processor outage", TriggerID: "dep-1", Category: CategoryVendorFailure, Severity: SeverityHigh}
	assert.NoError(t, s.Validate())

	s.Category = "alien_invasion"
	assert.ErrorIs(t, s.Validate(), ErrValidation)
}

func TestScenario_IndexText(t *testing.T) {
	s := Scenario{Name: "Ransomware", Category: CategoryCyber, Severity: SeverityCritical, Description: "Encrypted file shares"}
	assert.Equal(t, "Ransomware (cyber, critical): Encrypted file shares", s.IndexText())
}

func TestMetricPoint_Validate(t *testing.T) {
	p := MetricPoint{Metric: "incidents", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 3}
	assert.NoError(t, p.Validate())

	p.Value = math.NaN()
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}

func TestTypedErrors(t *testing.T) {
	nf := &NotFoundError{Kind: "dependency", ID: "x"}
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.False(t, errors.Is(nf, ErrValidation))
	assert.Equal(t, "dependency not found: x", nf.Error())

	big := &GraphTooLargeError{Limit: "visited", Max: 10}
	assert.True(t, errors.Is(big, ErrGraphTooLarge))
	assert.Contains(t, big.Error(), "10 visited")
}
