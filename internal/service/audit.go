package service

import (
	"context"

	"bizledger/internal/model"
	"bizledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// audit appends a best-effort audit row. Failures are reported to the log
// and never abort the calling workflow.
func audit(ctx context.Context, repo repository.AuditLogRepository, actorID *uuid.UUID, action, entity string, entityID *uuid.UUID, detail string) {
	if repo == nil {
		return
	}
	entry := &model.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Str("entity", entity).Msg("audit log write failed")
	}
}
