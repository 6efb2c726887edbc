package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/domain/forecast"
	"github.com/ersonp/resilience-core/internal/domain/services"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
	embedder "github.com/ersonp/resilience-core/internal/infrastructure/embedder/openai"
	llm "github.com/ersonp/resilience-core/internal/infrastructure/llm/openai"
	"github.com/ersonp/resilience-core/internal/infrastructure/logging"
	"github.com/ersonp/resilience-core/internal/infrastructure/metrics"
	"github.com/ersonp/resilience-core/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/resilience-core/internal/infrastructure/vectordb/qdrant"
)

var (
	errNoEmbedder = errors.New("similarity search needs an embedder API key (set OPENAI_API_KEY or embedder.api_key)")
	errNoLLM      = errors.New("briefings need an LLM API key (set OPENAI_API_KEY or llm.api_key)")
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Orgs          *config.OrgsConfig
	Logger        *slog.Logger
	Metrics       *metrics.Registry
	Dependencies  *handlers.DependencyHandler
	Relationships *handlers.RelationshipHandler
	Scenarios     *handlers.ScenarioHandler
	Forecasts     *handlers.ForecastHandler
	Imports       *handlers.ImportHandler
	Exports       *handlers.ExportHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
	index        *qdrant.Repository // nil without an embedder key
	embedder     *embedder.Embedder // nil without an embedder key
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
// Used by commands that need direct repository or service access.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	orgs, err := config.LoadOrgs(cwd)
	if err != nil {
		return fmt.Errorf("loading orgs: %w", err)
	}

	if globalOrg == "" {
		return errors.New("org is required (use --org flag)")
	}

	collection, err := orgs.GetCollection(globalOrg)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	registry := metrics.NewRegistry()

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: config.SQLitePathForOrg(cwd, globalOrg)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	if err := relationalDB.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	deps := &internalDeps{relationalDB: relationalDB}

	scenarioOpts := []services.ScenarioOption{services.WithRecorder(registry)}
	if cfg.Embedder.APIKey != "" {
		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		qdrantCfg := cfg.Qdrant
		qdrantCfg.Collection = collection
		index, err := qdrant.NewRepository(qdrantCfg)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer index.Close()

		deps.embedder = emb
		deps.index = index
		scenarioOpts = append(scenarioOpts, services.WithScenarioIndex(index, emb))
	}

	dependencyService := services.NewDependencyService(relationalDB, logger)
	relationshipService := services.NewRelationshipService(relationalDB, logger)
	scenarioService := services.NewScenarioService(relationalDB, cfg.Simulation, logger, scenarioOpts...)
	forecastService := services.NewForecastService(relationalDB, forecast.NewCalculator(cfg.Forecast.Horizons...), registry, logger)

	deps.Deps = Deps{
		Config:        cfg,
		Orgs:          orgs,
		Logger:        logger,
		Metrics:       registry,
		Dependencies:  handlers.NewDependencyHandler(dependencyService, relationshipService),
		Relationships: handlers.NewRelationshipHandler(relationshipService, dependencyService),
		Scenarios:     handlers.NewScenarioHandler(scenarioService),
		Forecasts:     handlers.NewForecastHandler(forecastService),
		Imports:       handlers.NewImportHandler(services.NewImportService(relationalDB, logger)),
		Exports:       handlers.NewExportHandler(scenarioService),
	}

	err = fn(deps)

	if path := cfg.Metrics.Textfile; path != "" {
		if werr := registry.WriteTextfile(path); werr != nil {
			logger.Warn("metrics textfile not written", slog.String("path", path), slog.String("error", werr.Error()))
		}
	}

	return err
}

// withSearchHandler provides the SearchHandler. It fails when no embedder is configured.
func withSearchHandler(fn func(*handlers.SearchHandler) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		if d.embedder == nil || d.index == nil {
			return errNoEmbedder
		}
		return fn(handlers.NewSearchHandler(services.NewSearchService(d.embedder, d.index, d.relationalDB)))
	})
}

// withBriefHandler provides the BriefHandler. The LLM client is only built here.
func withBriefHandler(fn func(*handlers.BriefHandler) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		if d.Config.LLM.APIKey == "" {
			return errNoLLM
		}
		client, err := llm.NewClient(d.Config.LLM)
		if err != nil {
			return fmt.Errorf("creating llm client: %w", err)
		}
		return fn(handlers.NewBriefHandler(services.NewBriefingService(d.relationalDB, client)))
	})
}

// loadConfigOrDefault loads the config when it exists and falls back to the
// defaults, with environment overrides, before the first org is created.
func loadConfigOrDefault(basePath string) (*config.Config, error) {
	if !config.Exists(basePath) {
		return config.Parse(nil)
	}
	return config.Load(basePath)
}
