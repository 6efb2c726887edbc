package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/resilience-core/internal/application/handlers"
	"github.com/ersonp/resilience-core/internal/domain/entities"
)

func newBriefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brief <scenario-id>",
		Short: "Write a narrative briefing of a scenario's last result",
		Long:  "Asks the configured LLM for a board-level briefing of a scenario's stored result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBriefHandler(func(h *handlers.BriefHandler) error {
				briefing, err := h.Handle(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("briefing: %w", err)
				}
				printBriefing(cmd.OutOrStdout(), briefing)
				return nil
			})
		},
	}
}

func printBriefing(w io.Writer, b *entities.Briefing) {
	fmt.Fprintln(w, b.Summary)
	if len(b.KeyRisks) > 0 {
		fmt.Fprintln(w, "\nKey risks:")
		for _, r := range b.KeyRisks {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	if len(b.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range b.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}
