// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// An in-memory database exists per connection.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// connPragmas run on every new pooled connection, not just the first.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// dsn appends the per-connection pragmas to path. File databases also get
// WAL journaling.
func dsn(path string) string {
	pragmas := connPragmas
	if path != ":memory:" {
		pragmas = append(pragmas[:len(pragmas):len(pragmas)], "journal_mode(WAL)")
	}
	params := make([]string, len(pragmas))
	for i, p := range pragmas {
		params[i] = "_pragma=" + p
	}
	return path + "?" + strings.Join(params, "&")
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Dependencies (systems, vendors, staff, data and locations a business function relies on)
	CREATE TABLE IF NOT EXISTS dependencies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		business_function TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		criticality TEXT NOT NULL,
		max_tolerable_downtime_hours REAL NOT NULL DEFAULT 0,
		recovery_time_objective_hours REAL NOT NULL DEFAULT 0,
		redundancy TEXT NOT NULL DEFAULT 'none',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_dependencies_function ON dependencies(business_function);

	-- Directed failure propagation edges
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL REFERENCES dependencies(id) ON DELETE CASCADE,
		target_id TEXT NOT NULL REFERENCES dependencies(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		strength TEXT NOT NULL DEFAULT '',
		likelihood REAL NOT NULL,
		delay_minutes REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_id, target_id)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);

	-- Disruption scenarios and their most recent simulation result
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		trigger_id TEXT NOT NULL REFERENCES dependencies(id),
		category TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		results TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_scenarios_trigger ON scenarios(trigger_id);

	-- Key risk indicator readings, one per metric and date
	CREATE TABLE IF NOT EXISTS metric_points (
		metric TEXT NOT NULL,
		date TIMESTAMP NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (metric, date)
	);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		subject_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_subject ON audit_log(subject_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

const dependencyColumns = `id, name, business_function, kind, criticality,
	max_tolerable_downtime_hours, recovery_time_objective_hours,
	redundancy, status, created_at, updated_at`

// SaveDependency saves or updates a dependency.
func (r *Repository) SaveDependency(ctx context.Context, dep *entities.Dependency) error {
	query := `
		INSERT INTO dependencies (id, name, normalized_name, business_function, kind, criticality,
			max_tolerable_downtime_hours, recovery_time_objective_hours, redundancy, status,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name,
			business_function = excluded.business_function,
			kind = excluded.kind,
			criticality = excluded.criticality,
			max_tolerable_downtime_hours = excluded.max_tolerable_downtime_hours,
			recovery_time_objective_hours = excluded.recovery_time_objective_hours,
			redundancy = excluded.redundancy,
			status = excluded.status,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		dep.ID,
		dep.Name,
		normalizeName(dep.Name),
		dep.BusinessFunction,
		string(dep.Kind),
		string(dep.Criticality),
		dep.MaxTolerableDowntimeHours,
		dep.RecoveryTimeObjectiveHours,
		string(dep.Redundancy),
		string(dep.Status),
		dep.CreatedAt,
		dep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving dependency: %w", err)
	}
	return nil
}

// FindDependencyByID finds a dependency by its ID.
func (r *Repository) FindDependencyByID(ctx context.Context, id string) (*entities.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE id = ?`
	dep, err := scanDependency(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return dep, err
}

// FindDependencyByName finds a dependency by name (case-insensitive).
func (r *Repository) FindDependencyByName(ctx context.Context, name string) (*entities.Dependency, error) {
	query := `SELECT ` + dependencyColumns + ` FROM dependencies WHERE normalized_name = ?`
	dep, err := scanDependency(r.db.QueryRowContext(ctx, query, normalizeName(name)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return dep, err
}

// ListDependencies lists dependencies ordered by name. An empty
// businessFunction lists all of them; limit <= 0 means no limit.
func (r *Repository) ListDependencies(ctx context.Context, businessFunction string, limit, offset int) ([]*entities.Dependency, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative limit as unbounded
	}
	query := `
		SELECT ` + dependencyColumns + `
		FROM dependencies
		WHERE ? = '' OR business_function = ?
		ORDER BY name ASC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, businessFunction, businessFunction, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying dependencies: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Dependency, 0, 16)
	for rows.Next() {
		dep, err := scanDependency(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, dep)
	}
	return result, rows.Err()
}

// CountDependencies returns the total number of dependencies.
func (r *Repository) CountDependencies(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dependencies`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting dependencies: %w", err)
	}
	return count, nil
}

// DeleteDependency deletes a dependency by ID. Relationships touching it are
// removed by the foreign key cascade.
func (r *Repository) DeleteDependency(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("dependency not found: %s", id)
	}
	return nil
}

func scanDependency(row scanner) (*entities.Dependency, error) {
	var dep entities.Dependency
	var kind, criticality, redundancy, status string
	err := row.Scan(
		&dep.ID,
		&dep.Name,
		&dep.BusinessFunction,
		&kind,
		&criticality,
		&dep.MaxTolerableDowntimeHours,
		&dep.RecoveryTimeObjectiveHours,
		&redundancy,
		&status,
		&dep.CreatedAt,
		&dep.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning dependency: %w", err)
	}
	dep.Kind = entities.DependencyKind(kind)
	dep.Criticality = entities.Criticality(criticality)
	dep.Redundancy = entities.RedundancyLevel(redundancy)
	dep.Status = entities.DependencyStatus(status)
	return &dep, nil
}

const relationshipColumns = `id, source_id, target_id, type, strength, likelihood, delay_minutes, created_at, updated_at`

// SaveRelationship saves or updates a relationship.
func (r *Repository) SaveRelationship(ctx context.Context, rel *entities.Relationship) error {
	query := `
		INSERT INTO relationships (id, source_id, target_id, type, strength, likelihood, delay_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			target_id = excluded.target_id,
			type = excluded.type,
			strength = excluded.strength,
			likelihood = excluded.likelihood,
			delay_minutes = excluded.delay_minutes,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID,
		rel.SourceID,
		rel.TargetID,
		string(rel.Type),
		string(rel.Strength),
		rel.Likelihood,
		rel.DelayMinutes,
		rel.CreatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

// FindRelationshipByID finds a relationship by its ID.
func (r *Repository) FindRelationshipByID(ctx context.Context, id string) (*entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE id = ?`
	rel, err := scanRelationship(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rel, err
}

// FindOutgoingRelationships finds relationships whose source is the dependency.
func (r *Repository) FindOutgoingRelationships(ctx context.Context, dependencyID string) ([]entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE source_id = ? ORDER BY rowid`
	return r.queryRelationships(ctx, query, dependencyID)
}

// FindIncomingRelationships finds relationships whose target is the dependency.
func (r *Repository) FindIncomingRelationships(ctx context.Context, dependencyID string) ([]entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE target_id = ? ORDER BY rowid`
	return r.queryRelationships(ctx, query, dependencyID)
}

// ListRelationships lists every relationship in creation order.
func (r *Repository) ListRelationships(ctx context.Context) ([]entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships ORDER BY rowid`
	return r.queryRelationships(ctx, query)
}

// FindRelationshipBetween finds a direct edge from source to target.
// Returns nil if no relationship exists.
func (r *Repository) FindRelationshipBetween(ctx context.Context, sourceID, targetID string) (*entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE source_id = ? AND target_id = ? LIMIT 1`
	rel, err := scanRelationship(r.db.QueryRowContext(ctx, query, sourceID, targetID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rel, err
}

// FindRelatedDependencies finds all dependency IDs connected to the given
// dependency up to the specified depth, following edges in either direction.
// Uses a recursive CTE for efficient graph traversal.
func (r *Repository) FindRelatedDependencies(ctx context.Context, dependencyID string, depth int) ([]string, error) {
	if depth < 1 {
		return []string{}, nil
	}

	query := `
		WITH RECURSIVE related(dep_id, level) AS (
			SELECT ?, 0

			UNION

			SELECT CASE WHEN r.source_id = related.dep_id THEN r.target_id ELSE r.source_id END,
			       related.level + 1
			FROM relationships r
			JOIN related ON r.source_id = related.dep_id OR r.target_id = related.dep_id
			WHERE related.level < ?
		)
		SELECT DISTINCT dep_id
		FROM related
		WHERE dep_id != ?
		ORDER BY dep_id
	`

	rows, err := r.db.QueryContext(ctx, query, dependencyID, depth, dependencyID)
	if err != nil {
		return nil, fmt.Errorf("querying related dependencies: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning dependency id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteRelationship deletes a relationship by ID.
func (r *Repository) DeleteRelationship(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("relationship not found: %s", id)
	}
	return nil
}

// DeleteRelationshipsByDependency deletes all relationships touching a dependency.
func (r *Repository) DeleteRelationshipsByDependency(ctx context.Context, dependencyID string) error {
	query := `DELETE FROM relationships WHERE source_id = ? OR target_id = ?`
	_, err := r.db.ExecContext(ctx, query, dependencyID, dependencyID)
	if err != nil {
		return fmt.Errorf("deleting relationships by dependency: %w", err)
	}
	return nil
}

// CountRelationships returns the total number of relationships in the database.
func (r *Repository) CountRelationships(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

// queryRelationships is a helper to execute relationship queries.
func (r *Repository) queryRelationships(ctx context.Context, query string, args ...any) ([]entities.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	relationships := make([]entities.Relationship, 0, 16)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, *rel)
	}
	return relationships, rows.Err()
}

func scanRelationship(row scanner) (*entities.Relationship, error) {
	var rel entities.Relationship
	var relType, strength string
	err := row.Scan(
		&rel.ID,
		&rel.SourceID,
		&rel.TargetID,
		&relType,
		&strength,
		&rel.Likelihood,
		&rel.DelayMinutes,
		&rel.CreatedAt,
		&rel.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relationship: %w", err)
	}
	rel.Type = entities.RelationType(relType)
	rel.Strength = entities.Strength(strength)
	return &rel, nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, subjectID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var subject sql.NullString
	if subjectID != "" {
		subject = sql.NullString{String: subjectID, Valid: true}
	}

	query := `INSERT INTO audit_log (action, subject_id, details, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, subject, detailsJSON, timeNow())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a subject, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, subjectID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, subject_id, details, created_at
		FROM audit_log
		WHERE subject_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.queryAuditLog(ctx, query, subjectID)
}

// FindAuditLogByAction finds audit log entries by action type, newest first.
// limit <= 0 means no limit.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, action, subject_id, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	// Use limit parameter as capacity hint if available
	var entries []entities.AuditEntry
	if len(args) > 0 {
		if limit, ok := args[len(args)-1].(int); ok && limit > 0 {
			entries = make([]entities.AuditEntry, 0, limit)
		}
	}

	for rows.Next() {
		var entry entities.AuditEntry
		var subjectID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&subjectID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.SubjectID = subjectID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
