package entities

import (
	"fmt"
	"strings"
)

// Severity is an ordered impact level. The zero value is SeverityLow.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"low", "medium", "high", "critical"}

// Severities lists every level from lowest to highest.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(s string) (Severity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return SeverityLow, &ValidationError{Field: "severity", Value: s, Message: "must be one of low, medium, high, critical"}
}

// IsValid reports whether s is a known level.
func (s Severity) IsValid() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// Decay returns the next level down, flooring at low.
func (s Severity) Decay() Severity {
	if s <= SeverityLow {
		return SeverityLow
	}
	return s - 1
}

func (s Severity) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MultiplierTable maps each severity to the factor applied to edge likelihood.
type MultiplierTable map[Severity]float64

// DefaultMultipliers returns the standard table.
func DefaultMultipliers() MultiplierTable {
	return MultiplierTable{
		SeverityLow:      0.3,
		SeverityMedium:   0.6,
		SeverityHigh:     0.8,
		SeverityCritical: 1.0,
	}
}

// For returns the multiplier for s, or 0 when s is missing from the table.
func (m MultiplierTable) For(s Severity) float64 {
	return m[s]
}

// Validate checks that every level has a finite multiplier in [0, 1].
func (m MultiplierTable) Validate() error {
	for _, s := range Severities {
		v, ok := m[s]
		if !ok {
			return &ValidationError{Field: "multipliers." + s.String(), Message: "is required"}
		}
		if !isFinite(v) || v < 0 || v > 1 {
			return &ValidationError{Field: "multipliers." + s.String(), Value: formatFloat(v), Message: "must be between 0 and 1"}
		}
	}
	if len(m) != len(Severities) {
		return &ValidationError{Field: "multipliers", Message: "must only contain low, medium, high, critical"}
	}
	return nil
}
