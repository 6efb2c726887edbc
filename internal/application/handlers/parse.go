package handlers

import (
	"strconv"
	"strings"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// ValidRelationTypes lists all valid relationship type strings.
var ValidRelationTypes = enumNames(entities.RelationTypes)

// ValidCategories lists all valid scenario category strings.
var ValidCategories = enumNames(entities.ScenarioCategories)

// ValidKinds lists all valid dependency kind strings.
var ValidKinds = enumNames(entities.DependencyKinds)

func enumNames[T ~string](values []T) []string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return names
}

func invalidEnum(field, value string, valid []string) error {
	return &entities.ValidationError{
		Field:   field,
		Value:   value,
		Message: "must be one of " + strings.Join(valid, ", "),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseSeverity(s string) (entities.Severity, error) {
	return entities.ParseSeverity(s)
}

func parseRelationType(s string) (entities.RelationType, error) {
	rt := entities.RelationType(normalize(s))
	if !rt.IsValid() {
		return "", invalidEnum("type", s, ValidRelationTypes)
	}
	return rt, nil
}

func parseCategory(s string) (entities.ScenarioCategory, error) {
	c := entities.ScenarioCategory(normalize(s))
	if !c.IsValid() {
		return "", invalidEnum("category", s, ValidCategories)
	}
	return c, nil
}

// parseOptionalCategory allows an empty category, meaning "any".
func parseOptionalCategory(s string) (entities.ScenarioCategory, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return parseCategory(s)
}

func parseKind(s string) (entities.DependencyKind, error) {
	k := entities.DependencyKind(normalize(s))
	if !k.IsValid() {
		return "", invalidEnum("kind", s, ValidKinds)
	}
	return k, nil
}

func parseCriticality(s string) (entities.Criticality, error) {
	c := entities.Criticality(normalize(s))
	if !c.IsValid() {
		return "", invalidEnum("criticality", s, []string{"critical", "high", "medium", "low"})
	}
	return c, nil
}

// parseRedundancy allows an empty level, which the service defaults to none.
func parseRedundancy(s string) (entities.RedundancyLevel, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	r := entities.RedundancyLevel(normalize(s))
	if !r.IsValid() {
		return "", invalidEnum("redundancy", s, []string{"none", "basic", "full", "distributed"})
	}
	return r, nil
}

func parseStatus(s string) (entities.DependencyStatus, error) {
	st := entities.DependencyStatus(normalize(s))
	if !st.IsValid() {
		return "", invalidEnum("status", s, []string{"active", "degraded", "inactive"})
	}
	return st, nil
}

// parseStrength allows an empty strength.
func parseStrength(s string) (entities.Strength, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	st := entities.Strength(normalize(s))
	if !st.IsValid() {
		return "", invalidEnum("strength", s, []string{"weak", "medium", "strong", "critical"})
	}
	return st, nil
}

func parseConflictStrategy(s string) (services.ConflictStrategy, error) {
	switch normalize(s) {
	case "", string(services.ConflictSkip):
		return services.ConflictSkip, nil
	case string(services.ConflictOverwrite):
		return services.ConflictOverwrite, nil
	default:
		return "", invalidEnum("on-conflict", s, []string{"skip", "overwrite"})
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
