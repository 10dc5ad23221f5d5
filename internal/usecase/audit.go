package usecase

import (
	"context"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
	"github.com/sirupsen/logrus"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditUseCase appends and queries the audit trail. Appends are best-effort:
// a storage failure is logged, never propagated, so audit can never block
// the business operation it records. This is a known, accepted consistency
// gap, not a bug.
type AuditUseCase struct {
	repo  ports.AuditRepository
	clock ports.Clock
	log   *logrus.Logger
}

func NewAuditUseCase(repo ports.AuditRepository, clock ports.Clock, log *logrus.Logger) *AuditUseCase {
	return &AuditUseCase{repo: repo, clock: clock, log: log}
}

// Append writes one immutable record with a server-assigned timestamp.
func (uc *AuditUseCase) Append(ctx context.Context, entityType domain.EntityType, entityID string, action domain.AuditAction, changes map[string]interface{}, actorID string) {
	record := domain.NewAuditRecord(entityType, entityID, action, changes, actorID, uc.clock.Now())

	if err := uc.repo.Create(ctx, record); err != nil {
		failure := domain.NewAuditWriteFailure(err)
		uc.log.WithFields(logrus.Fields{
			"entity_type": entityType,
			"entity_id":   entityID,
			"action":      action,
			"actor_id":    actorID,
		}).WithError(failure).Error("audit write failed")
	}
}

// HistoryByEntity returns records for one entity, newest first.
func (uc *AuditUseCase) HistoryByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit int) ([]*domain.AuditRecord, error) {
	if !domain.IsKnownEntityType(entityType) {
		return nil, domain.NewNotFound("entity type", string(entityType))
	}
	records, err := uc.repo.ListByEntity(ctx, entityType, entityID, capLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("audit history: %w", err)
	}
	return records, nil
}

// ActionsByActor returns records produced by one actor, newest first.
func (uc *AuditUseCase) ActionsByActor(ctx context.Context, actorID string, limit int) ([]*domain.AuditRecord, error) {
	records, err := uc.repo.ListByActor(ctx, actorID, capLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("audit actions by actor: %w", err)
	}
	return records, nil
}

// HistoryByEntityType returns records across all entities of one type.
func (uc *AuditUseCase) HistoryByEntityType(ctx context.Context, entityType domain.EntityType, limit int) ([]*domain.AuditRecord, error) {
	if !domain.IsKnownEntityType(entityType) {
		return nil, domain.NewNotFound("entity type", string(entityType))
	}
	records, err := uc.repo.ListByEntityType(ctx, entityType, capLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("audit history by type: %w", err)
	}
	return records, nil
}

// List returns records unfiltered with offset/limit pagination.
func (uc *AuditUseCase) List(ctx context.Context, limit, offset int) ([]*domain.AuditRecord, error) {
	if offset < 0 {
		offset = 0
	}
	records, err := uc.repo.List(ctx, capLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("audit list: %w", err)
	}
	return records, nil
}

// EntityTypes returns the distinct entity types that have records.
func (uc *AuditUseCase) EntityTypes(ctx context.Context) ([]domain.EntityType, error) {
	types, err := uc.repo.DistinctEntityTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit entity types: %w", err)
	}
	return types, nil
}

// Actors returns the distinct actors that have records, resolved to display
// identity.
func (uc *AuditUseCase) Actors(ctx context.Context) ([]domain.ActorRef, error) {
	actors, err := uc.repo.DistinctActors(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit actors: %w", err)
	}
	return actors, nil
}

func capLimit(limit int) int {
	if limit <= 0 {
		return defaultAuditLimit
	}
	if limit > maxAuditLimit {
		return maxAuditLimit
	}
	return limit
}
