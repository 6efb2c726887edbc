package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/domain/ports"
	"github.com/ersonp/resilience-core/internal/infrastructure/config"
	embedder "github.com/ersonp/resilience-core/internal/infrastructure/embedder/openai"
	"github.com/ersonp/resilience-core/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/resilience-core/internal/infrastructure/vectordb/qdrant"
)

func newOrgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Manage organizations",
		RunE:  runOrgsList,
	}

	cmd.AddCommand(
		newOrgsListCmd(),
		newOrgsCreateCmd(),
		newOrgsDeleteCmd(),
	)

	return cmd
}

func newOrgsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all organizations",
		RunE:  runOrgsList,
	}
}

func runOrgsList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	orgs, err := config.LoadOrgs(cwd)
	if err != nil {
		return fmt.Errorf("loading orgs: %w", err)
	}

	printOrgs(cmd.OutOrStdout(), orgs)
	return nil
}

func printOrgs(w io.Writer, orgs *config.OrgsConfig) {
	names := orgs.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, "No organizations configured.")
		fmt.Fprintln(w, "Use 'resil orgs create NAME' to create one.")
		return
	}

	fmt.Fprintf(w, "%-20s %-25s %s\n", "NAME", "COLLECTION", "DESCRIPTION")
	fmt.Fprintf(w, "%-20s %-25s %s\n", "----", "----------", "-----------")
	for _, name := range names {
		org := orgs.Orgs[name]
		fmt.Fprintf(w, "%-20s %-25s %s\n", name, org.Collection, org.Description)
	}
}

func newOrgsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrgsCreate(cmd, args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Organization description")

	return cmd
}

func runOrgsCreate(cmd *cobra.Command, name, description string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	return withInitHandler(cwd, name, func(handler *handlers.InitHandler) error {
		result, err := handler.Handle(ctx, cwd, name, description)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Initialized {
			fmt.Fprintf(out, "Initialized resil in %s\n", config.ConfigDir(cwd))
		}
		fmt.Fprintf(out, "Created org %q\n", name)
		fmt.Fprintf(out, "  Database:   %s\n", result.DatabasePath)
		fmt.Fprintf(out, "  Collection: %s\n", result.CollectionName)
		return nil
	})
}

func newOrgsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrgsDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if the org has dependencies")

	return cmd
}

func runOrgsDelete(cmd *cobra.Command, name string, force bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if !force {
		count, err := countDependencies(ctx, config.SQLitePathForOrg(cwd, name))
		if err == nil && count > 0 {
			return fmt.Errorf("org %q contains %d dependencies, use --force to delete", name, count)
		}
	}

	return withInitHandler(cwd, name, func(handler *handlers.InitHandler) error {
		if err := handler.HandleDelete(ctx, cwd, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted org %q\n", name)
		return nil
	})
}

// withInitHandler builds an InitHandler whose collection manager targets the
// org's collection. Without an embedder key no collection is managed.
func withInitHandler(basePath, org string, fn func(*handlers.InitHandler) error) error {
	cfg, err := loadConfigOrDefault(basePath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var (
		manager    ports.CollectionManager
		vectorSize uint64
	)
	if cfg.Embedder.APIKey != "" {
		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		vectorSize = emb.Dimensions()

		qdrantCfg := cfg.Qdrant
		qdrantCfg.Collection = config.GenerateCollectionName(org)
		repo, err := qdrant.NewRepository(qdrantCfg)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer repo.Close()
		manager = repo
	}

	return fn(handlers.NewInitHandler(manager, vectorSize))
}

func countDependencies(ctx context.Context, path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	db, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.CountDependencies(ctx)
}
