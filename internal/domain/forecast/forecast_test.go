package forecast

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func series(values ...float64) []entities.MetricPoint {
	points := make([]entities.MetricPoint, len(values))
	for i, v := range values {
		points[i] = entities.MetricPoint{Metric: "kri", Date: day0.AddDate(0, 0, i), Value: v}
	}
	return points
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		slope      float64
		trend      entities.Trend
		p30        float64
		p90        float64
		confidence float64
	}{
		{
			name:       "perfect linear increase",
			values:     []float64{10, 12, 14, 16},
			slope:      2,
			trend:      entities.TrendIncreasing,
			p30:        76,
			p90:        196,
			confidence: 0.4,
		},
		{
			name:       "flat series",
			values:     []float64{5, 5, 5},
			slope:      0,
			trend:      entities.TrendStable,
			p30:        5,
			p90:        5,
			confidence: 0.3,
		},
		{
			name:       "steep decrease floors at zero",
			values:     []float64{100, 80, 60, 40},
			slope:      -20,
			trend:      entities.TrendDecreasing,
			p30:        0,
			p90:        0,
			confidence: 0.4,
		},
		{
			name:       "single point",
			values:     []float64{7},
			slope:      0,
			trend:      entities.TrendStable,
			p30:        7,
			p90:        7,
			confidence: 0.1,
		},
		{
			name:       "empty series",
			values:     nil,
			slope:      0,
			trend:      entities.TrendStable,
			p30:        0,
			p90:        0,
			confidence: 0,
		},
		{
			name:       "confidence caps at 0.9",
			values:     []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			slope:      0,
			trend:      entities.TrendStable,
			p30:        1,
			p90:        1,
			confidence: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Calculate("kri", series(tt.values...))
			assert.Equal(t, "kri", f.Metric)
			assert.Equal(t, len(tt.values), f.SampleCount)
			assert.InDelta(t, tt.slope, f.Slope, 1e-9)
			assert.Equal(t, tt.trend, f.Trend)
			assert.InDelta(t, tt.p30, f.Predicted30Days, 1e-9)
			assert.InDelta(t, tt.p90, f.Predicted90Days, 1e-9)
			assert.InDelta(t, tt.confidence, f.Confidence, 1e-9)
		})
	}
}

func TestCalculate_SortsByDate(t *testing.T) {
	points := series(10, 12, 14, 16)
	shuffled := []entities.MetricPoint{points[2], points[0], points[3], points[1]}

	f := Calculate("kri", shuffled)
	assert.Equal(t, 16.0, f.CurrentValue)
	assert.InDelta(t, 76, f.Predicted30Days, 1e-9)
	assert.Equal(t, 10.0, shuffled[1].Value, "input slice is not reordered")
}

func TestCalculator_Horizons(t *testing.T) {
	c := NewCalculator(7, 30, -1, 180)
	assert.Equal(t, []int{7, 30, 90, 180}, c.Horizons())

	f := c.Calculate("kri", series(10, 12, 14, 16))
	require.Len(t, f.Predictions, 4)
	assert.InDelta(t, 30, f.Predictions[7], 1e-9)
	assert.InDelta(t, 376, f.Predictions[180], 1e-9)
	assert.Equal(t, f.Predicted30Days, f.Predictions[30])
}

func TestSlope(t *testing.T) {
	assert.Equal(t, 0.0, Slope(nil))
	assert.Equal(t, 0.0, Slope([]float64{3}))
	assert.InDelta(t, 1.0, Slope([]float64{1, 2}), 1e-9)
	assert.InDelta(t, -0.5, Slope([]float64{2, 1.5, 1}), 1e-9)
}

func TestForecastNeverNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("predictions are floored at zero", prop.ForAll(
		func(values []float64) bool {
			f := NewCalculator(7, 365).Calculate("kri", series(values...))
			if f.Predicted30Days < 0 || f.Predicted90Days < 0 {
				return false
			}
			for _, p := range f.Predictions {
				if p < 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
	))

	properties.Property("confidence stays within [0, 0.9]", prop.ForAll(
		func(values []float64) bool {
			f := Calculate("kri", series(values...))
			return f.Confidence >= 0 && f.Confidence <= MaxConfidence
		},
		gen.SliceOf(gen.Float64Range(0, 50)),
	))

	properties.TestingRun(t)
}
