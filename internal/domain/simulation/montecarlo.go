package simulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// SimulateMany repeats the walk runs times with successive draws from the
// simulator's random source and aggregates the outcomes.
func (s *Simulator) SimulateMany(graph Graph, triggerID string, severity entities.Severity, runs int) (*entities.SimulationSummary, error) {
	if runs < 1 {
		return nil, &entities.ValidationError{Field: "runs", Value: fmt.Sprint(runs), Message: "must be at least 1"}
	}

	hits := make(map[string]*entities.DependencyHit)
	downtimes := make([]float64, 0, runs)
	summary := &entities.SimulationSummary{Runs: runs, Seed: s.seed}
	totalAffected := 0

	for i := 0; i < runs; i++ {
		result, err := s.Simulate(graph, triggerID, severity)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		totalAffected += result.TotalAffected
		if result.TotalAffected > summary.MaxAffected {
			summary.MaxAffected = result.TotalAffected
		}
		downtimes = append(downtimes, result.EstimatedTotalDowntimeHours)
		for _, rec := range result.PropagationPath {
			h, ok := hits[rec.DependencyID]
			if !ok {
				h = &entities.DependencyHit{DependencyID: rec.DependencyID, DependencyName: rec.DependencyName}
				hits[rec.DependencyID] = h
			}
			h.Hits++
		}
		summary.SimulatedAt = result.SimulatedAt
	}

	summary.MeanAffected = float64(totalAffected) / float64(runs)
	summary.MeanDowntimeHours = mean(downtimes)
	summary.P95DowntimeHours = percentile(downtimes, 0.95)

	summary.Hits = make([]entities.DependencyHit, 0, len(hits))
	for _, h := range hits {
		h.Frequency = float64(h.Hits) / float64(runs)
		summary.Hits = append(summary.Hits, *h)
	}
	sort.Slice(summary.Hits, func(i, j int) bool {
		if summary.Hits[i].Hits != summary.Hits[j].Hits {
			return summary.Hits[i].Hits > summary.Hits[j].Hits
		}
		return summary.Hits[i].DependencyID < summary.Hits[j].DependencyID
	})

	return summary, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile uses the nearest-rank method.
func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(q*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}
