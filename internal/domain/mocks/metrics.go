package mocks

import (
	"sync"
	"time"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// Recorder is a mock implementation of ports.SimulationRecorder.
type Recorder struct {
	mu        sync.Mutex
	Outcomes  []string
	Forecasts []entities.Forecast
}

// RecordSimulation records the outcome.
func (m *Recorder) RecordSimulation(outcome string, _ *entities.SimulationResult, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, outcome)
}

// RecordForecast records the forecast.
func (m *Recorder) RecordForecast(forecast entities.Forecast) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Forecasts = append(m.Forecasts, forecast)
}

// ForecastCount returns how many forecasts were recorded.
func (m *Recorder) ForecastCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Forecasts)
}
