// Package simulation walks a dependency graph outward from a failed node to
// estimate which dependencies are affected, when, and how badly.
package simulation

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/ersonp/resilience-core/internal/domain/entities"
)

// Default limits for a single walk.
const (
	DefaultDecayProbability = 0.3
	DefaultMaxVisited       = 10_000
	DefaultMaxIterations    = 100_000
)

// RandomSource yields uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Config holds the policy knobs of the propagation walk.
type Config struct {
	Multipliers      entities.MultiplierTable `yaml:"multipliers"`
	// DecayProbability is the chance a non-critical failure steps down one
	// level per hop. Zero disables decay.
	DecayProbability float64                  `yaml:"decay_probability"`
	MaxVisited       int                      `yaml:"max_visited"`
	MaxIterations    int                      `yaml:"max_iterations"`
	// Strict turns references to unknown non-trigger dependencies into errors
	// instead of skipping them.
	Strict bool `yaml:"strict"`
}

// DefaultConfig returns the standard multiplier table and limits.
func DefaultConfig() Config {
	return Config{
		Multipliers:      entities.DefaultMultipliers(),
		DecayProbability: DefaultDecayProbability,
		MaxVisited:       DefaultMaxVisited,
		MaxIterations:    DefaultMaxIterations,
	}
}

// Validate checks the multiplier table and the decay probability. A nil
// table is allowed and means the default table.
func (c Config) Validate() error {
	if c.Multipliers != nil {
		if err := c.Multipliers.Validate(); err != nil {
			return err
		}
	}
	if math.IsNaN(c.DecayProbability) || c.DecayProbability < 0 || c.DecayProbability > 1 {
		return &entities.ValidationError{
			Field:   "decay_probability",
			Value:   strconv.FormatFloat(c.DecayProbability, 'g', -1, 64),
			Message: "must be between 0 and 1",
		}
	}
	return nil
}

// Graph is the full set of nodes and edges available to a walk.
type Graph struct {
	Dependencies  []entities.Dependency
	Relationships []entities.Relationship
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRandomSource sets the source of propagation and decay draws.
func WithRandomSource(src RandomSource) Option {
	return func(s *Simulator) {
		s.rng = src
		s.seed = nil
	}
}

// WithSeed uses a deterministic source seeded with seed and records the seed
// on every result.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed))
		s.seed = &seed
	}
}

// WithClock overrides the clock used for SimulatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		s.now = now
	}
}

// Simulator runs stochastic failure propagation walks.
//
// A Simulator is not safe for concurrent use: its default random source is
// a *rand.Rand. Build one per goroutine.
type Simulator struct {
	cfg  Config
	rng  RandomSource
	seed *int64
	now  func() time.Time
}

// New creates a Simulator. Zero-valued limits in cfg fall back to defaults.
func New(cfg Config, opts ...Option) *Simulator {
	if cfg.Multipliers == nil {
		cfg.Multipliers = entities.DefaultMultipliers()
	}
	if cfg.MaxVisited <= 0 {
		cfg.MaxVisited = DefaultMaxVisited
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	s := &Simulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the simulator's effective configuration.
func (s *Simulator) Config() Config {
	return s.cfg
}

type queueItem struct {
	id       string
	minutes  float64
	severity entities.Severity
}

// Simulate walks the graph breadth-first from triggerID.
//
// Each outgoing edge of a reached node propagates when a draw falls below
// likelihood × multiplier(severity). Propagated failures arrive after the
// edge delay and, unless critical, may decay one severity level.
func (s *Simulator) Simulate(graph Graph, triggerID string, severity entities.Severity) (*entities.SimulationResult, error) {
	if err := s.validate(graph, severity); err != nil {
		return nil, err
	}

	nodes := make(map[string]*entities.Dependency, len(graph.Dependencies))
	for i := range graph.Dependencies {
		nodes[graph.Dependencies[i].ID] = &graph.Dependencies[i]
	}
	if _, ok := nodes[triggerID]; !ok {
		return nil, &entities.NotFoundError{Kind: "dependency", ID: triggerID}
	}

	outgoing := make(map[string][]*entities.Relationship)
	for i := range graph.Relationships {
		rel := &graph.Relationships[i]
		outgoing[rel.SourceID] = append(outgoing[rel.SourceID], rel)
	}

	visited := make(map[string]bool)
	queue := []queueItem{{id: triggerID, minutes: 0, severity: severity}}
	var path []entities.ImpactRecord
	iterations := 0

	for len(queue) > 0 {
		if iterations >= s.cfg.MaxIterations {
			return nil, &entities.GraphTooLargeError{Limit: "iterations", Max: s.cfg.MaxIterations}
		}
		item := queue[0]
		queue = queue[1:]
		iterations++

		if visited[item.id] {
			continue
		}
		if len(visited) >= s.cfg.MaxVisited {
			return nil, &entities.GraphTooLargeError{Limit: "visited", Max: s.cfg.MaxVisited}
		}
		visited[item.id] = true

		dep, ok := nodes[item.id]
		if !ok {
			if s.cfg.Strict {
				return nil, &entities.NotFoundError{Kind: "dependency", ID: item.id}
			}
			continue
		}

		path = append(path, entities.ImpactRecord{
			DependencyID:           dep.ID,
			DependencyName:         dep.Name,
			AffectedAtMinutes:      item.minutes,
			Severity:               item.severity,
			EstimatedDowntimeHours: dep.EstimatedDowntimeHours(),
		})

		for _, rel := range outgoing[item.id] {
			if visited[rel.TargetID] {
				continue
			}
			p := rel.Likelihood * s.cfg.Multipliers.For(item.severity)
			if s.rng.Float64() >= p {
				continue
			}
			next := item.severity
			if next != entities.SeverityCritical && s.rng.Float64() < s.cfg.DecayProbability {
				next = next.Decay()
			}
			queue = append(queue, queueItem{id: rel.TargetID, minutes: item.minutes + rel.DelayMinutes, severity: next})
		}
	}

	return s.summarize(path, iterations), nil
}

func (s *Simulator) validate(graph Graph, severity entities.Severity) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if !severity.IsValid() {
		return &entities.ValidationError{Field: "severity", Value: severity.String(), Message: "must be one of low, medium, high, critical"}
	}
	for i := range graph.Relationships {
		if err := graph.Relationships[i].ValidatePropagation(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) summarize(path []entities.ImpactRecord, iterations int) *entities.SimulationResult {
	result := &entities.SimulationResult{
		PropagationPath:  path,
		TotalAffected:    len(path),
		CriticalPath:     []entities.ImpactRecord{},
		RecoverySequence: make([]entities.ImpactRecord, len(path)),
		Iterations:       iterations,
		Seed:             s.seed,
	}
	for _, rec := range path {
		result.EstimatedTotalDowntimeHours += rec.EstimatedDowntimeHours
		if rec.Severity == entities.SeverityCritical {
			result.CriticalPath = append(result.CriticalPath, rec)
		}
	}
	copy(result.RecoverySequence, path)
	sort.SliceStable(result.RecoverySequence, func(i, j int) bool {
		return result.RecoverySequence[i].AffectedAtMinutes < result.RecoverySequence[j].AffectedAtMinutes
	})
	result.SimulatedAt = s.now()
	return result
}
