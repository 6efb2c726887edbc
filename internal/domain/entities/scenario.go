package entities

import (
	"strings"
	"time"
)

// ScenarioCategory groups scenarios by the kind of disruption they model.
type ScenarioCategory string

const (
	CategoryOperational     ScenarioCategory = "operational"
	CategoryCyber           ScenarioCategory = "cyber"
	CategoryNaturalDisaster ScenarioCategory = "natural_disaster"
	CategoryVendorFailure   ScenarioCategory = "vendor_failure"
	CategoryDataBreach      ScenarioCategory = "data_breach"
)

// ScenarioCategories lists every valid category.
var ScenarioCategories = []ScenarioCategory{
	CategoryOperational, CategoryCyber, CategoryNaturalDisaster, CategoryVendorFailure, CategoryDataBreach,
}

// IsValid reports whether c is a known category.
func (c ScenarioCategory) IsValid() bool {
	for _, known := range ScenarioCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Scenario is a named what-if case: "what happens if this dependency fails at this severity".
type Scenario struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	TriggerID   string            `json:"trigger_id" yaml:"trigger_id"`
	Category    ScenarioCategory  `json:"category" yaml:"category"`
	Severity    Severity          `json:"severity" yaml:"severity"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Results     *SimulationResult `json:"results,omitempty" yaml:"results,omitempty"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" yaml:"updated_at"`
}

// Validate checks the scenario's fields.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if s.TriggerID == "" {
		return &ValidationError{Field: "trigger_id", Message: "is required"}
	}
	if !s.Category.IsValid() {
		return &ValidationError{Field: "category", Value: string(s.Category), Message: "is not a known scenario category"}
	}
	if !s.Severity.IsValid() {
		return &ValidationError{Field: "severity", Value: s.Severity.String(), Message: "must be one of low, medium, high, critical"}
	}
	return nil
}

// IndexText is the text embedded when the scenario is added to the similarity index.
func (s *Scenario) IndexText() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(" (")
	b.WriteString(string(s.Category))
	b.WriteString(", ")
	b.WriteString(s.Severity.String())
	b.WriteString(")")
	if s.Description != "" {
		b.WriteString(": ")
		b.WriteString(s.Description)
	}
	return b.String()
}

// ScenarioMatch is a scenario returned by a similarity search.
type ScenarioMatch struct {
	ScenarioID string           `json:"scenario_id"`
	Name       string           `json:"name"`
	Category   ScenarioCategory `json:"category"`
	Severity   Severity         `json:"severity"`
	Score      float32          `json:"score"`
}

// Briefing is a narrative summary of a simulation written for executives.
type Briefing struct {
	ScenarioID      string   `json:"scenario_id"`
	Summary         string   `json:"summary"`
	KeyRisks        []string `json:"key_risks"`
	Recommendations []string `json:"recommendations"`
}
