// Package parsers reads dependency graph documents from JSON, YAML and CSV.
package parsers

import (
	"io"
	"path/filepath"
	"strings"
)

// RawDependency is a dependency row before validation.
type RawDependency struct {
	ID                         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name                       string   `json:"name" yaml:"name" validate:"required"`
	BusinessFunction           string   `json:"business_function,omitempty" yaml:"business_function,omitempty"`
	Kind                       string   `json:"kind" yaml:"kind" validate:"required,oneof=vendor system staff data location"`
	Criticality                string   `json:"criticality" yaml:"criticality" validate:"required,oneof=critical high medium low"`
	MaxTolerableDowntimeHours  *float64 `json:"max_tolerable_downtime_hours,omitempty" yaml:"max_tolerable_downtime_hours,omitempty" validate:"omitempty,gte=0"`
	RecoveryTimeObjectiveHours *float64 `json:"recovery_time_objective_hours,omitempty" yaml:"recovery_time_objective_hours,omitempty" validate:"omitempty,gte=0"`
	Redundancy                 string   `json:"redundancy,omitempty" yaml:"redundancy,omitempty" validate:"omitempty,oneof=none basic full distributed"`
	Status                     string   `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=active degraded inactive"`
	LineNum                    int      `json:"-" yaml:"-"` // Line number in source file (set by parser)
}

// RawRelationship is a relationship row before validation. Source and
// Target hold a dependency ID or name.
type RawRelationship struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"`
	Source       string   `json:"source" yaml:"source" validate:"required"`
	Target       string   `json:"target" yaml:"target" validate:"required,nefield=Source"`
	Type         string   `json:"type" yaml:"type" validate:"required,oneof=depends_on supports feeds_into backed_by redundant_with"`
	Strength     string   `json:"strength,omitempty" yaml:"strength,omitempty" validate:"omitempty,oneof=weak medium strong critical"`
	Likelihood   *float64 `json:"likelihood" yaml:"likelihood" validate:"required,gte=0,lte=1"`
	DelayMinutes *float64 `json:"delay_minutes,omitempty" yaml:"delay_minutes,omitempty" validate:"omitempty,gte=0"`
	LineNum      int      `json:"-" yaml:"-"`
}

// RawMetricPoint is a metric reading before validation. Date is YYYY-MM-DD
// or RFC 3339.
type RawMetricPoint struct {
	Metric  string   `json:"metric" yaml:"metric" validate:"required"`
	Date    string   `json:"date" yaml:"date" validate:"required"`
	Value   *float64 `json:"value" yaml:"value" validate:"required"`
	LineNum int      `json:"-" yaml:"-"`
}

// Document is everything one import file can carry.
type Document struct {
	Dependencies  []RawDependency   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Relationships []RawRelationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Metrics       []RawMetricPoint  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Len returns the number of rows in the document.
func (d *Document) Len() int {
	return len(d.Dependencies) + len(d.Relationships) + len(d.Metrics)
}

// Parser defines the interface for parsing graph documents.
type Parser interface {
	Parse(r io.Reader) (*Document, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "yaml", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}
