// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/resilience-core/internal/domain/ports"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
	"github.com/ersonp/resilience-core/internal/infrastructure/relationaldb/sqlite"
)

// InitHandler handles organization initialization and removal.
type InitHandler struct {
	collectionManager ports.CollectionManager
	vectorSize        uint64
}

// NewInitHandler creates a new init handler. collectionManager may be nil
// when no scenario index is configured.
func NewInitHandler(collectionManager ports.CollectionManager, vectorSize uint64) *InitHandler {
	return &InitHandler{
		collectionManager: collectionManager,
		vectorSize:        vectorSize,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	DatabasePath   string
	CollectionName string
	// Initialized is true when this call created the config directory.
	Initialized bool
}

// Handle creates an organization: its database, its scenario collection and
// its registry entry. The config directory is created on first use.
func (h *InitHandler) Handle(ctx context.Context, basePath, org, description string) (*InitResult, error) {
	result := &InitResult{
		ConfigPath:     config.ConfigFilePath(basePath),
		DatabasePath:   config.SQLitePathForOrg(basePath, org),
		CollectionName: config.GenerateCollectionName(org),
	}

	if !config.Exists(basePath) {
		if err := config.WriteDefault(basePath); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
		result.Initialized = true
	}

	orgs, err := config.LoadOrgs(basePath)
	if err != nil {
		return nil, err
	}
	if orgs.Exists(org) {
		return nil, fmt.Errorf("org %q already exists", org)
	}

	if err := os.MkdirAll(config.OrgDir(basePath, org), 0755); err != nil {
		return nil, fmt.Errorf("creating org directory: %w", err)
	}
	if err := createSchema(ctx, result.DatabasePath); err != nil {
		return nil, err
	}

	if h.collectionManager != nil {
		if err := h.collectionManager.EnsureCollection(ctx, h.vectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
	}

	orgs.Add(org, config.OrgEntry{
		Collection:  result.CollectionName,
		Description: description,
	})
	if err := orgs.Save(basePath); err != nil {
		return nil, err
	}

	return result, nil
}

// HandleDelete removes an organization's collection, database and registry entry.
func (h *InitHandler) HandleDelete(ctx context.Context, basePath, org string) error {
	orgs, err := config.LoadOrgs(basePath)
	if err != nil {
		return err
	}
	if _, err := orgs.Get(org); err != nil {
		return err
	}

	if h.collectionManager != nil {
		if err := h.collectionManager.DeleteCollection(ctx); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
	}

	if err := os.RemoveAll(config.OrgDir(basePath, org)); err != nil {
		return fmt.Errorf("removing org directory: %w", err)
	}

	orgs.Remove(org)
	return orgs.Save(basePath)
}

func createSchema(ctx context.Context, path string) error {
	db, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
