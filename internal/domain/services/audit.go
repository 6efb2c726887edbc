package services

import (
	"context"
	"log/slog"

	"github.com/ersonp/resilience-core/internal/domain/ports"
)

// logAudit appends an audit entry. The change being audited is already
// stored, so a failed write is logged at Warn and not returned.
func logAudit(ctx context.Context, db ports.RelationalDB, logger *slog.Logger, action, subjectID string, details map[string]any) {
	if err := db.LogAction(ctx, action, subjectID, details); err != nil {
		logger.Warn("audit log write failed",
			slog.String("action", action),
			slog.String("subject_id", subjectID),
			slog.Any("error", err),
		)
	}
}
