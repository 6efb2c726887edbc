package entities

import (
	"strings"
	"time"
)

// MetricPoint is one dated reading of a key risk indicator or incident count.
type MetricPoint struct {
	Metric string    `json:"metric" yaml:"metric"`
	Date   time.Time `json:"date" yaml:"date"`
	Value  float64   `json:"value" yaml:"value"`
}

// Validate checks the point's fields.
func (p *MetricPoint) Validate() error {
	if strings.TrimSpace(p.Metric) == "" {
		return &ValidationError{Field: "metric", Message: "is required"}
	}
	if p.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	if !isFinite(p.Value) {
		return &ValidationError{Field: "value", Value: formatFloat(p.Value), Message: "must be a finite number"}
	}
	return nil
}

// Trend is the direction of a fitted series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Forecast is a linear projection of a metric series.
type Forecast struct {
	Metric          string          `json:"metric"`
	SampleCount     int             `json:"sample_count"`
	CurrentValue    float64         `json:"current_value"`
	Slope           float64         `json:"slope"`
	Trend           Trend           `json:"trend"`
	Predicted30Days float64         `json:"predicted_30_days"`
	Predicted90Days float64         `json:"predicted_90_days"`
	Confidence      float64         `json:"confidence"`
	Predictions     map[int]float64 `json:"predictions,omitempty"`
}
