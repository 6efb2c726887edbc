// Package entities contains core domain data structures.
package entities

import (
	"math"
	"strings"
	"time"
)

// DefaultDowntimeHours is used when a dependency has no maximum tolerable downtime.
const DefaultDowntimeHours = 1.0

// DependencyKind classifies what a dependency is.
type DependencyKind string

const (
	KindVendor   DependencyKind = "vendor"
	KindSystem   DependencyKind = "system"
	KindStaff    DependencyKind = "staff"
	KindData     DependencyKind = "data"
	KindLocation DependencyKind = "location"
)

// DependencyKinds lists every valid kind in display order.
var DependencyKinds = []DependencyKind{KindVendor, KindSystem, KindStaff, KindData, KindLocation}

// IsValid reports whether k is a known kind.
func (k DependencyKind) IsValid() bool {
	for _, known := range DependencyKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Criticality is the tier an operator assigns to a dependency.
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

// IsValid reports whether c is a known tier.
func (c Criticality) IsValid() bool {
	switch c {
	case CriticalityCritical, CriticalityHigh, CriticalityMedium, CriticalityLow:
		return true
	}
	return false
}

// RedundancyLevel describes how much fallback capacity a dependency has.
type RedundancyLevel string

const (
	RedundancyNone        RedundancyLevel = "none"
	RedundancyBasic       RedundancyLevel = "basic"
	RedundancyFull        RedundancyLevel = "full"
	RedundancyDistributed RedundancyLevel = "distributed"
)

// IsValid reports whether r is a known redundancy level.
func (r RedundancyLevel) IsValid() bool {
	switch r {
	case RedundancyNone, RedundancyBasic, RedundancyFull, RedundancyDistributed:
		return true
	}
	return false
}

// DependencyStatus is the operational state of a dependency.
type DependencyStatus string

const (
	StatusActive   DependencyStatus = "active"
	StatusDegraded DependencyStatus = "degraded"
	StatusInactive DependencyStatus = "inactive"
)

// IsValid reports whether s is a known status.
func (s DependencyStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusDegraded, StatusInactive:
		return true
	}
	return false
}

// Dependency is an operational building block (vendor, system, staff role,
// data asset or location) that a business function relies on.
type Dependency struct {
	ID                         string           `json:"id" yaml:"id"`
	Name                       string           `json:"name" yaml:"name"`
	BusinessFunction           string           `json:"business_function,omitempty" yaml:"business_function,omitempty"`
	Kind                       DependencyKind   `json:"kind" yaml:"kind"`
	Criticality                Criticality      `json:"criticality" yaml:"criticality"`
	MaxTolerableDowntimeHours  float64          `json:"max_tolerable_downtime_hours,omitempty" yaml:"max_tolerable_downtime_hours,omitempty"`
	RecoveryTimeObjectiveHours float64          `json:"recovery_time_objective_hours,omitempty" yaml:"recovery_time_objective_hours,omitempty"`
	Redundancy                 RedundancyLevel  `json:"redundancy" yaml:"redundancy"`
	Status                     DependencyStatus `json:"status" yaml:"status"`
	CreatedAt                  time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt                  time.Time        `json:"updated_at" yaml:"updated_at"`
}

// EstimatedDowntimeHours returns the downtime a failure of d is expected to
// cause, falling back to DefaultDowntimeHours when none is configured.
func (d *Dependency) EstimatedDowntimeHours() float64 {
	if d.MaxTolerableDowntimeHours > 0 {
		return d.MaxTolerableDowntimeHours
	}
	return DefaultDowntimeHours
}

// Validate checks the dependency's fields.
func (d *Dependency) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if !d.Kind.IsValid() {
		return &ValidationError{Field: "kind", Value: string(d.Kind), Message: "must be one of vendor, system, staff, data, location"}
	}
	if !d.Criticality.IsValid() {
		return &ValidationError{Field: "criticality", Value: string(d.Criticality), Message: "must be one of critical, high, medium, low"}
	}
	if d.Redundancy != "" && !d.Redundancy.IsValid() {
		return &ValidationError{Field: "redundancy", Value: string(d.Redundancy), Message: "must be one of none, basic, full, distributed"}
	}
	if d.Status != "" && !d.Status.IsValid() {
		return &ValidationError{Field: "status", Value: string(d.Status), Message: "must be one of active, degraded, inactive"}
	}
	if !isNonNegativeFinite(d.MaxTolerableDowntimeHours) {
		return &ValidationError{Field: "max_tolerable_downtime_hours", Value: formatFloat(d.MaxTolerableDowntimeHours), Message: "must be a non-negative number"}
	}
	if !isNonNegativeFinite(d.RecoveryTimeObjectiveHours) {
		return &ValidationError{Field: "recovery_time_objective_hours", Value: formatFloat(d.RecoveryTimeObjectiveHours), Message: "must be a non-negative number"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isNonNegativeFinite(v float64) bool {
	return isFinite(v) && v >= 0
}
