package handlers

import (
	"context"

	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// ForecastHandler handles metric readings and forecasts.
type ForecastHandler struct {
	service *services.ForecastService
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(service *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// HandleRecord stores one reading. date is YYYY-MM-DD or RFC 3339.
func (h *ForecastHandler) HandleRecord(ctx context.Context, metric, date string, value float64) (*entities.MetricPoint, error) {
	t, err := services.ParseMetricDate(date)
	if err != nil {
		return nil, &entities.ValidationError{Field: "date", Value: date, Message: "must be YYYY-MM-DD or RFC 3339"}
	}
	return h.service.Record(ctx, metric, t, value)
}

// HandleSeries returns a metric's readings in date order.
func (h *ForecastHandler) HandleSeries(ctx context.Context, metric string) ([]entities.MetricPoint, error) {
	return h.service.Series(ctx, metric)
}

// HandleForecast projects one metric.
func (h *ForecastHandler) HandleForecast(ctx context.Context, metric string) (*entities.Forecast, error) {
	return h.service.Forecast(ctx, metric)
}

// HandleForecastAll projects every recorded metric.
func (h *ForecastHandler) HandleForecastAll(ctx context.Context) ([]entities.Forecast, error) {
	return h.service.ForecastAll(ctx, 0)
}
