package sqlite

import (
	"context"
	"fmt"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// SaveMetricPoints stores readings in one transaction, replacing any existing
// reading for the same metric and date.
func (r *Repository) SaveMetricPoints(ctx context.Context, points []entities.MetricPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metric_points (metric, date, value)
		VALUES (?, ?, ?)
		ON CONFLICT(metric, date) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("preparing metric insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.Metric, p.Date.UTC(), p.Value); err != nil {
			return fmt.Errorf("saving metric point %s: %w", p.Metric, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing metric points: %w", err)
	}
	return nil
}

// ListMetricSeries returns a metric's readings ordered by date.
func (r *Repository) ListMetricSeries(ctx context.Context, metric string) ([]entities.MetricPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT metric, date, value
		FROM metric_points
		WHERE metric = ?
		ORDER BY date ASC
	`, metric)
	if err != nil {
		return nil, fmt.Errorf("querying metric series: %w", err)
	}
	defer rows.Close()

	points := make([]entities.MetricPoint, 0, 32)
	for rows.Next() {
		var p entities.MetricPoint
		if err := rows.Scan(&p.Metric, &p.Date, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning metric point: %w", err)
		}
		p.Date = p.Date.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

// ListMetricNames returns every metric with at least one reading.
func (r *Repository) ListMetricNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT metric FROM metric_points ORDER BY metric ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying metric names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0, 16)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning metric name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
