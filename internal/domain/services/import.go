package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/ports"
	"github.com/ersonp/resilience-core/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle existing records during import.
type ConflictStrategy string

const (
	// ConflictSkip keeps records that already exist (by ID or name).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces existing records with the imported data.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing records
}

// ImportError represents an error for a specific row during import.
type ImportError struct {
	Section string // "dependencies", "relationships" or "metrics"
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: %s", e.Section, e.Line, msg)
	}
	return msg
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Dependencies  int
	Relationships int
	MetricPoints  int
	Skipped       int
	Errors        []ImportError
}

// Imported returns the total number of rows imported.
func (r *ImportResult) Imported() int {
	return r.Dependencies + r.Relationships + r.MetricPoints
}

var importValidate = newImportValidator()

func newImportValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// metricDateLayouts are the accepted date formats for metric readings.
var metricDateLayouts = []string{"2006-01-02", time.RFC3339}

// ImportService loads dependency graphs and metric history from documents.
type ImportService struct {
	relationalDB ports.RelationalDB
	logger       *slog.Logger
}

// NewImportService creates a new import service. A nil logger uses slog.Default().
func NewImportService(relationalDB ports.RelationalDB, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{relationalDB: relationalDB, logger: logger}
}

// Import validates every row and stores the valid ones. Dependencies are
// stored before relationships so that edges may reference dependencies
// defined in the same document by name.
func (s *ImportService) Import(ctx context.Context, doc *parsers.Document, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}
	now := timeNow()

	// name (lowercased) and id -> dependency ID, for resolving edges
	known := make(map[string]string)

	for i := range doc.Dependencies {
		raw := &doc.Dependencies[i]
		dep, ierr := convertDependency(raw, now)
		if ierr != nil {
			result.Errors = append(result.Errors, *ierr)
			continue
		}

		saved, skipped, err := s.saveDependency(ctx, dep, opts)
		if err != nil {
			return nil, err
		}
		known[strings.ToLower(saved.Name)] = saved.ID
		known[saved.ID] = saved.ID
		if skipped {
			result.Skipped++
		} else {
			result.Dependencies++
		}
	}

	for i := range doc.Relationships {
		raw := &doc.Relationships[i]
		imported, skipped, ierr, err := s.importRelationship(ctx, raw, known, opts, now)
		if err != nil {
			return nil, err
		}
		switch {
		case ierr != nil:
			result.Errors = append(result.Errors, *ierr)
		case skipped:
			result.Skipped++
		case imported:
			result.Relationships++
		}
	}

	points := make([]entities.MetricPoint, 0, len(doc.Metrics))
	for i := range doc.Metrics {
		point, ierr := convertMetricPoint(&doc.Metrics[i])
		if ierr != nil {
			result.Errors = append(result.Errors, *ierr)
			continue
		}
		points = append(points, point)
	}
	if len(points) > 0 && !opts.DryRun {
		if err := s.relationalDB.SaveMetricPoints(ctx, points); err != nil {
			return nil, fmt.Errorf("saving metric points: %w", err)
		}
	}
	result.MetricPoints = len(points)

	if !opts.DryRun && result.Imported() > 0 {
		logAudit(ctx, s.relationalDB, s.logger, entities.ActionImport, "", map[string]any{
			"dependencies":  result.Dependencies,
			"relationships": result.Relationships,
			"metric_points": result.MetricPoints,
			"skipped":       result.Skipped,
			"errors":        len(result.Errors),
		})
	}

	s.logger.Info("import finished",
		slog.Bool("dry_run", opts.DryRun),
		slog.Int("imported", result.Imported()),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// saveDependency applies the conflict strategy and stores dep unless this is
// a dry run. It returns the record that ends up representing dep.
func (s *ImportService) saveDependency(ctx context.Context, dep *entities.Dependency, opts ImportOptions) (*entities.Dependency, bool, error) {
	existing, err := s.findExistingDependency(ctx, dep)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		if opts.OnConflict != ConflictOverwrite {
			return existing, true, nil
		}
		dep.ID = existing.ID
		dep.CreatedAt = existing.CreatedAt
	}
	if dep.ID == "" {
		dep.ID = uuid.New().String()
	}

	if !opts.DryRun {
		if err := s.relationalDB.SaveDependency(ctx, dep); err != nil {
			return nil, false, fmt.Errorf("saving dependency %s: %w", dep.Name, err)
		}
	}
	return dep, false, nil
}

func (s *ImportService) findExistingDependency(ctx context.Context, dep *entities.Dependency) (*entities.Dependency, error) {
	if dep.ID != "" {
		existing, err := s.relationalDB.FindDependencyByID(ctx, dep.ID)
		if err != nil {
			return nil, fmt.Errorf("checking dependency %s: %w", dep.ID, err)
		}
		if existing != nil {
			return existing, nil
		}
	}
	existing, err := s.relationalDB.FindDependencyByName(ctx, dep.Name)
	if err != nil {
		return nil, fmt.Errorf("checking dependency %s: %w", dep.Name, err)
	}
	return existing, nil
}

func (s *ImportService) importRelationship(
	ctx context.Context,
	raw *parsers.RawRelationship,
	known map[string]string,
	opts ImportOptions,
	now time.Time,
) (imported, skipped bool, ierr *ImportError, err error) {
	if ierr := validateRow("relationships", raw, raw.LineNum); ierr != nil {
		return false, false, ierr, nil
	}

	sourceID, ierr, err := s.resolveEndpoint(ctx, raw.Source, "source", raw.LineNum, known)
	if ierr != nil || err != nil {
		return false, false, ierr, err
	}
	targetID, ierr, err := s.resolveEndpoint(ctx, raw.Target, "target", raw.LineNum, known)
	if ierr != nil || err != nil {
		return false, false, ierr, err
	}

	rel := &entities.Relationship{
		ID:         raw.ID,
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       entities.RelationType(raw.Type),
		Strength:   entities.Strength(raw.Strength),
		Likelihood: *raw.Likelihood,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if raw.DelayMinutes != nil {
		rel.DelayMinutes = *raw.DelayMinutes
	}
	if err := rel.Validate(); err != nil {
		return false, false, toImportError("relationships", raw.LineNum, err), nil
	}

	existing, err := s.relationalDB.FindRelationshipBetween(ctx, sourceID, targetID)
	if err != nil {
		return false, false, nil, fmt.Errorf("checking relationship: %w", err)
	}
	if existing != nil {
		if opts.OnConflict != ConflictOverwrite {
			return false, true, nil, nil
		}
		rel.ID = existing.ID
		rel.CreatedAt = existing.CreatedAt
	}
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}

	if !opts.DryRun {
		if err := s.relationalDB.SaveRelationship(ctx, rel); err != nil {
			return false, false, nil, fmt.Errorf("saving relationship: %w", err)
		}
	}
	return true, false, nil, nil
}

func (s *ImportService) resolveEndpoint(ctx context.Context, ref, field string, line int, known map[string]string) (string, *ImportError, error) {
	if id, ok := known[ref]; ok {
		return id, nil, nil
	}
	if id, ok := known[strings.ToLower(ref)]; ok {
		return id, nil, nil
	}
	dep, err := resolveDependency(ctx, s.relationalDB, ref)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return "", &ImportError{Section: "relationships", Line: line, Field: field, Value: ref, Message: "unknown dependency"}, nil
		}
		return "", nil, err
	}
	return dep.ID, nil, nil
}

func convertDependency(raw *parsers.RawDependency, now time.Time) (*entities.Dependency, *ImportError) {
	if ierr := validateRow("dependencies", raw, raw.LineNum); ierr != nil {
		return nil, ierr
	}

	dep := &entities.Dependency{
		ID:               raw.ID,
		Name:             strings.TrimSpace(raw.Name),
		BusinessFunction: raw.BusinessFunction,
		Kind:             entities.DependencyKind(raw.Kind),
		Criticality:      entities.Criticality(raw.Criticality),
		Redundancy:       entities.RedundancyLevel(raw.Redundancy),
		Status:           entities.DependencyStatus(raw.Status),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if raw.MaxTolerableDowntimeHours != nil {
		dep.MaxTolerableDowntimeHours = *raw.MaxTolerableDowntimeHours
	}
	if raw.RecoveryTimeObjectiveHours != nil {
		dep.RecoveryTimeObjectiveHours = *raw.RecoveryTimeObjectiveHours
	}
	if dep.Redundancy == "" {
		dep.Redundancy = entities.RedundancyNone
	}
	if dep.Status == "" {
		dep.Status = entities.StatusActive
	}
	if err := dep.Validate(); err != nil {
		return nil, toImportError("dependencies", raw.LineNum, err)
	}
	return dep, nil
}

func convertMetricPoint(raw *parsers.RawMetricPoint) (entities.MetricPoint, *ImportError) {
	if ierr := validateRow("metrics", raw, raw.LineNum); ierr != nil {
		return entities.MetricPoint{}, ierr
	}

	date, err := ParseMetricDate(raw.Date)
	if err != nil {
		return entities.MetricPoint{}, &ImportError{Section: "metrics", Line: raw.LineNum, Field: "date", Value: raw.Date, Message: "must be YYYY-MM-DD or RFC 3339"}
	}
	point := entities.MetricPoint{Metric: raw.Metric, Date: date, Value: *raw.Value}
	if err := point.Validate(); err != nil {
		return entities.MetricPoint{}, toImportError("metrics", raw.LineNum, err)
	}
	return point, nil
}

// ParseMetricDate parses a metric reading date as YYYY-MM-DD or RFC 3339, in UTC.
func ParseMetricDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range metricDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// validateRow runs struct-tag validation and reports the first failure.
func validateRow(section string, row any, line int) *ImportError {
	err := importValidate.Struct(row)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &ImportError{Section: section, Line: line, Message: err.Error()}
	}

	e := validationErrs[0]
	ierr := &ImportError{Section: section, Line: line, Field: e.Field(), Value: fmt.Sprint(derefValue(e.Value()))}
	switch e.Tag() {
	case "required":
		ierr.Message = "missing required field"
		ierr.Value = ""
	case "oneof":
		ierr.Message = "must be one of " + e.Param()
	case "gte":
		ierr.Message = "must be at least " + e.Param()
	case "lte":
		ierr.Message = "must be at most " + e.Param()
	case "nefield":
		ierr.Message = "must differ from " + strings.ToLower(e.Param())
	default:
		ierr.Message = fmt.Sprintf("validation failed (%s)", e.Tag())
	}
	return ierr
}

func derefValue(v any) any {
	if p, ok := v.(*float64); ok && p != nil {
		return *p
	}
	return v
}

func toImportError(section string, line int, err error) *ImportError {
	var vErr *entities.ValidationError
	if errors.As(err, &vErr) {
		return &ImportError{Section: section, Line: line, Field: vErr.Field, Value: vErr.Value, Message: vErr.Message}
	}
	return &ImportError{Section: section, Line: line, Message: err.Error()}
}
