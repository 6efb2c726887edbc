package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/domain/entities"
	"github.com/ersonp/resilience-core/internal/domain/services"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeGraphTooLarge  = "GRAPH_TOO_LARGE"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the body of GET /v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SimulateRequest is the body of POST /v1/simulate.
type SimulateRequest struct {
	TriggerID string `json:"trigger_id" binding:"required"`
	Severity  string `json:"severity" binding:"required"`
	Seed      *int64 `json:"seed,omitempty"`
	Runs      int    `json:"runs,omitempty" binding:"gte=0,lte=10000"`
}

// RunScenarioRequest is the optional body of POST /v1/scenarios/:id/run.
type RunScenarioRequest struct {
	Seed *int64 `json:"seed,omitempty"`
	Runs int    `json:"runs,omitempty" binding:"gte=0,lte=10000"`
}

// ListResponse wraps list results with their count.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

func (s *Server) handleListDependencies(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}

	deps, err := s.handlers.Dependencies.HandleList(c.Request.Context(), c.Query("business_function"), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(deps))
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
		return
	}

	outcome, err := s.handlers.Scenarios.HandleSimulate(c.Request.Context(), req.TriggerID, req.Severity,
		handlers.RunRequest{Seed: req.Seed, Runs: req.Runs})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleListScenarios(c *gin.Context) {
	scenarios, err := s.handlers.Scenarios.HandleList(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(scenarios))
}

func (s *Server) handleGetScenario(c *gin.Context) {
	scenario, err := s.handlers.Scenarios.HandleShow(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

func (s *Server) handleRunScenario(c *gin.Context) {
	var req RunScenarioRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
			return
		}
	}

	outcome, err := s.handlers.Scenarios.HandleRun(c.Request.Context(), c.Param("id"),
		handlers.RunRequest{Seed: req.Seed, Runs: req.Runs})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleForecast(c *gin.Context) {
	forecast, err := s.handlers.Forecasts.HandleForecast(c.Request.Context(), c.Param("metric"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (s *Server) handleForecastAll(c *gin.Context) {
	forecasts, err := s.handlers.Forecasts.HandleForecastAll(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(forecasts))
}

// respondError maps domain errors to HTTP statuses. Unexpected errors are
// logged and reported without detail.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entities.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
	case errors.Is(err, entities.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})
	case errors.Is(err, entities.ErrGraphTooLarge):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: CodeGraphTooLarge})
	case errors.Is(err, services.ErrDependencyInUse):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeConflict})
	default:
		s.logger.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: CodeInternal})
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &entities.ValidationError{Field: key, Value: raw, Message: "must be a non-negative integer"}
	}
	return v, nil
}
