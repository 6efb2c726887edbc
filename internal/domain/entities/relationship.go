package entities

import (
	"math"
	"time"
)

// RelationType defines how a source dependency relates to its target.
type RelationType string

const (
	RelationDependsOn     RelationType = "depends_on"
	RelationSupports      RelationType = "supports"
	RelationFeedsInto     RelationType = "feeds_into"
	RelationBackedBy      RelationType = "backed_by"
	RelationRedundantWith RelationType = "redundant_with"
)

// RelationTypes lists every valid relation type.
var RelationTypes = []RelationType{
	RelationDependsOn, RelationSupports, RelationFeedsInto, RelationBackedBy, RelationRedundantWith,
}

// IsValid reports whether t is a known relation type.
func (t RelationType) IsValid() bool {
	for _, known := range RelationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Strength is a qualitative coupling label. It does not affect propagation.
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthMedium   Strength = "medium"
	StrengthStrong   Strength = "strong"
	StrengthCritical Strength = "critical"
)

// IsValid reports whether s is a known strength.
func (s Strength) IsValid() bool {
	switch s {
	case StrengthWeak, StrengthMedium, StrengthStrong, StrengthCritical:
		return true
	}
	return false
}

// Relationship is a directed edge: a failure of SourceID can propagate to TargetID.
type Relationship struct {
	ID           string       `json:"id" yaml:"id"`
	SourceID     string       `json:"source_id" yaml:"source_id"`
	TargetID     string       `json:"target_id" yaml:"target_id"`
	Type         RelationType `json:"type" yaml:"type"`
	Strength     Strength     `json:"strength,omitempty" yaml:"strength,omitempty"`
	Likelihood   float64      `json:"likelihood" yaml:"likelihood"`
	DelayMinutes float64      `json:"delay_minutes" yaml:"delay_minutes"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"updated_at"`
}

// ValidatePropagation checks the fields the simulator reads: likelihood must be
// a finite probability and delay a finite non-negative number of minutes.
func (r *Relationship) ValidatePropagation() error {
	if math.IsNaN(r.Likelihood) || math.IsInf(r.Likelihood, 0) || r.Likelihood < 0 || r.Likelihood > 1 {
		return &ValidationError{Ref: r.ID, Field: "likelihood", Value: formatFloat(r.Likelihood), Message: "must be between 0 and 1"}
	}
	if !isNonNegativeFinite(r.DelayMinutes) {
		return &ValidationError{Ref: r.ID, Field: "delay_minutes", Value: formatFloat(r.DelayMinutes), Message: "must be a non-negative number"}
	}
	return nil
}

// Validate checks every field of the relationship, including endpoints.
func (r *Relationship) Validate() error {
	if r.SourceID == "" {
		return &ValidationError{Ref: r.ID, Field: "source_id", Message: "is required"}
	}
	if r.TargetID == "" {
		return &ValidationError{Ref: r.ID, Field: "target_id", Message: "is required"}
	}
	if r.SourceID == r.TargetID {
		return &ValidationError{Ref: r.ID, Field: "target_id", Value: r.TargetID, Message: "must differ from source_id"}
	}
	if !r.Type.IsValid() {
		return &ValidationError{Ref: r.ID, Field: "type", Value: string(r.Type), Message: "is not a known relation type"}
	}
	if r.Strength != "" && !r.Strength.IsValid() {
		return &ValidationError{Ref: r.ID, Field: "strength", Value: string(r.Strength), Message: "must be one of weak, medium, strong, critical"}
	}
	return r.ValidatePropagation()
}
