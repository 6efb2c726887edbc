package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/forecast"
	"github.com/ersonp/resilience-core/internal/domain/ports"
)

// DefaultForecastConcurrency bounds ForecastAll when no limit is given.
const DefaultForecastConcurrency = 4

// ForecastService records metric readings and projects them forward.
type ForecastService struct {
	relationalDB ports.RelationalDB
	calculator   *forecast.Calculator
	recorder     ports.SimulationRecorder
	logger       *slog.Logger
}

// NewForecastService creates a new ForecastService. recorder may be nil; a
// nil logger uses slog.Default().
func NewForecastService(relationalDB ports.RelationalDB, calculator *forecast.Calculator, recorder ports.SimulationRecorder, logger *slog.Logger) *ForecastService {
	if calculator == nil {
		calculator = forecast.NewCalculator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastService{
		relationalDB: relationalDB,
		calculator:   calculator,
		recorder:     recorder,
		logger:       logger,
	}
}

// Record stores one reading, replacing any reading for the same date.
func (s *ForecastService) Record(ctx context.Context, metric string, date time.Time, value float64) (*entities.MetricPoint, error) {
	point := entities.MetricPoint{Metric: metric, Date: date, Value: value}
	if err := s.RecordBatch(ctx, []entities.MetricPoint{point}); err != nil {
		return nil, err
	}
	return &point, nil
}

// RecordBatch validates and stores readings.
func (s *ForecastService) RecordBatch(ctx context.Context, points []entities.MetricPoint) error {
	for i := range points {
		if err := points[i].Validate(); err != nil {
			return err
		}
	}
	if err := s.relationalDB.SaveMetricPoints(ctx, points); err != nil {
		return fmt.Errorf("saving metric points: %w", err)
	}
	return nil
}

// Series returns a metric's readings ordered by date.
func (s *ForecastService) Series(ctx context.Context, metric string) ([]entities.MetricPoint, error) {
	points, err := s.relationalDB.ListMetricSeries(ctx, metric)
	if err != nil {
		return nil, fmt.Errorf("loading series %s: %w", metric, err)
	}
	return points, nil
}

// Forecast projects one metric. A metric with fewer than two readings gets
// a flat forecast rather than an error.
func (s *ForecastService) Forecast(ctx context.Context, metric string) (*entities.Forecast, error) {
	points, err := s.Series(ctx, metric)
	if err != nil {
		return nil, err
	}

	f := s.calculator.Calculate(metric, points)
	if s.recorder != nil {
		s.recorder.RecordForecast(f)
	}
	return &f, nil
}

// ForecastAll projects every stored metric concurrently, at most limit at a
// time. Results follow the metric name order.
func (s *ForecastService) ForecastAll(ctx context.Context, limit int) ([]entities.Forecast, error) {
	names, err := s.relationalDB.ListMetricNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing metrics: %w", err)
	}
	if limit <= 0 {
		limit = DefaultForecastConcurrency
	}

	results := make([]entities.Forecast, len(names))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, name := range names {
		g.Go(func() error {
			f, err := s.Forecast(gCtx, name)
			if err != nil {
				return err
			}
			results[i] = *f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("forecast complete", slog.Int("metrics", len(names)))
	return results, nil
}
