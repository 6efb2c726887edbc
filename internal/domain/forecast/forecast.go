// Package forecast projects metric series forward with a least-squares line.
package forecast

import (
	"math"
	"sort"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// DefaultHorizons are the step counts reported on every forecast.
var DefaultHorizons = []int{30, 90}

// MaxConfidence caps the sample-count confidence heuristic.
const MaxConfidence = 0.9

// Calculator fits a linear trend to a metric series.
type Calculator struct {
	horizons []int
}

// NewCalculator creates a Calculator reporting the given horizons in
// addition to 30 and 90 steps. Non-positive horizons are ignored.
func NewCalculator(horizons ...int) *Calculator {
	seen := make(map[int]bool)
	var hs []int
	for _, h := range append(append([]int{}, DefaultHorizons...), horizons...) {
		if h <= 0 || seen[h] {
			continue
		}
		seen[h] = true
		hs = append(hs, h)
	}
	sort.Ints(hs)
	return &Calculator{horizons: hs}
}

// Horizons returns the step counts this calculator predicts.
func (c *Calculator) Horizons() []int {
	return append([]int(nil), c.horizons...)
}

// Calculate sorts points by date and fits value against position.
// Samples are treated as evenly spaced regardless of their actual dates.
func (c *Calculator) Calculate(metric string, points []entities.MetricPoint) entities.Forecast {
	sorted := append([]entities.MetricPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	n := len(sorted)
	values := make([]float64, n)
	for i, p := range sorted {
		values[i] = p.Value
	}

	slope := Slope(values)
	current := 0.0
	if n > 0 {
		current = values[n-1]
	}

	f := entities.Forecast{
		Metric:       metric,
		SampleCount:  n,
		CurrentValue: current,
		Slope:        slope,
		Trend:        trendOf(slope),
		Confidence:   math.Min(MaxConfidence, float64(n)/10),
		Predictions:  make(map[int]float64, len(c.horizons)),
	}
	for _, h := range c.horizons {
		f.Predictions[h] = project(current, slope, h)
	}
	f.Predicted30Days = project(current, slope, 30)
	f.Predicted90Days = project(current, slope, 90)
	return f
}

// Calculate runs a default Calculator.
func Calculate(metric string, points []entities.MetricPoint) entities.Forecast {
	return NewCalculator().Calculate(metric, points)
}

// Slope is the ordinary least-squares slope of values against their index.
// Fewer than two values give zero.
func Slope(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func project(current, slope float64, steps int) float64 {
	return math.Max(0, current+slope*float64(steps))
}

func trendOf(slope float64) entities.Trend {
	switch {
	case slope > 0:
		return entities.TrendIncreasing
	case slope < 0:
		return entities.TrendDecreasing
	default:
		return entities.TrendStable
	}
}
