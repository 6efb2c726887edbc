package ports

import (
	"time"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// Simulation outcomes reported to a SimulationRecorder.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// SimulationRecorder receives measurements of simulations and forecasts.
type SimulationRecorder interface {
	// RecordSimulation records one walk. result is nil when the walk failed.
	RecordSimulation(outcome string, result *entities.SimulationResult, duration time.Duration)

	// RecordForecast records one computed forecast.
	RecordForecast(forecast entities.Forecast)
}
