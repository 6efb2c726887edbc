package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func newSearchCmd() *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find scenarios similar to a description",
		Long: `Embeds the text and returns the closest stored scenarios.
Requires an embedder API key and a reachable Qdrant.

Examples:
  resil search "ransomware on the payments platform"
  resil search "regional power cut" --category natural_disaster`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSearchHandler(func(h *handlers.SearchHandler) error {
				matches, err := h.HandleSimilar(cmd.Context(), args[0], category, limit)
				if err != nil {
					return fmt.Errorf("searching: %w", err)
				}
				printMatches(cmd.OutOrStdout(), matches)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only match scenarios in this category")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")

	cmd.AddCommand(newSearchReindexCmd())

	return cmd
}

func printMatches(w io.Writer, matches []entities.ScenarioMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No similar scenarios found.")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(w, "%.3f  %-28s %-18s %-9s %s\n", m.Score, truncate(m.Name, 28), m.Category, m.Severity, m.ScenarioID)
	}
}

func newSearchReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Re-embed every scenario into the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSearchHandler(func(h *handlers.SearchHandler) error {
				n, err := h.HandleReindex(cmd.Context())
				if err != nil {
					return fmt.Errorf("reindexing: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d scenarios\n", n)
				return nil
			})
		},
	}
}
