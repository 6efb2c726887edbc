package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/resilience-core/internal/domain/services"
	"github.com/ersonp/resilience-core/internal/infrastructure/parsers"
)

// ImportHandler handles importing dependency graphs from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string // "json", "csv", "yaml", or "auto"
	DryRun     bool   // Validate without saving
	OnConflict string // "skip" or "overwrite"
}

// Handle imports dependencies, relationships and metric readings from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*services.ImportResult, error) {
	strategy, err := parseConflictStrategy(opts.OnConflict)
	if err != nil {
		return nil, err
	}

	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	doc, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if doc.Len() == 0 {
		return &services.ImportResult{}, nil
	}

	return h.service.Import(ctx, doc, services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: strategy,
	})
}
