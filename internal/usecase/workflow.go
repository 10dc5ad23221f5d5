package usecase

import (
	"context"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
	"github.com/sirupsen/logrus"
)

// WorkflowUseCase owns order state. It is the only component that mutates
// state, stage actors and stage timestamps, and the synchronization point
// for concurrent transitions on the same order.
type WorkflowUseCase struct {
	orders ports.OrderRepository
	audit  *AuditUseCase
	cache  ports.OrderCache
	clock  ports.Clock
	log    *logrus.Logger
}

func NewWorkflowUseCase(
	orders ports.OrderRepository,
	audit *AuditUseCase,
	cache ports.OrderCache,
	clock ports.Clock,
	log *logrus.Logger,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		orders: orders,
		audit:  audit,
		cache:  cache,
		clock:  clock,
		log:    log,
	}
}

// Transition advances an order into target. target must be the single
// permitted successor of the current state, the actor's role must admit the
// target, and the persisted update is compare-and-swapped on the state read
// here, so at most one concurrent caller wins.
func (uc *WorkflowUseCase) Transition(ctx context.Context, orderID string, target domain.OrderState, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	if !domain.ValidState(target) {
		return nil, domain.NewNotFound("order state", string(target))
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	next, ok := domain.NextState(order.State)
	if !ok || next != target {
		return nil, domain.NewIllegalTransition(order.State, target)
	}

	if !domain.RoleMayEnter(target, role) {
		return nil, domain.NewForbidden(role, target)
	}

	previous := order.State
	now := uc.clock.Now()

	if err := uc.orders.UpdateState(ctx, orderID, previous, target, actorID, now); err != nil {
		return nil, err
	}

	if err := order.ApplyTransition(target, actorID, now); err != nil {
		// Cannot happen after a successful CAS; keep the persisted truth.
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, orderID); err != nil {
			uc.log.WithError(err).WithField("order_id", orderID).Warn("order cache invalidation failed")
		}
	}

	uc.audit.Append(ctx, domain.EntityOrder, orderID, domain.AuditStateTransition, map[string]interface{}{
		"previous_state": previous,
		"new_state":      target,
		"actor_id":       actorID,
	}, actorID)

	uc.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       target,
		"actor_id": actorID,
		"role":     role,
	}).Info("order transitioned")

	return order, nil
}

// Named wrappers over Transition. They exist for call-site clarity, not
// distinct semantics.

func (uc *WorkflowUseCase) Validate(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	return uc.Transition(ctx, orderID, domain.StateValidated, actorID, role)
}

func (uc *WorkflowUseCase) Calculate(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	return uc.Transition(ctx, orderID, domain.StateCalculated, actorID, role)
}

func (uc *WorkflowUseCase) Schedule(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	return uc.Transition(ctx, orderID, domain.StateScheduled, actorID, role)
}

func (uc *WorkflowUseCase) Produce(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	return uc.Transition(ctx, orderID, domain.StateProduced, actorID, role)
}

func (uc *WorkflowUseCase) ApproveQC(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	return uc.Transition(ctx, orderID, domain.StateQC, actorID, role)
}

func (uc *WorkflowUseCase) Label(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	return uc.Transition(ctx, orderID, domain.StateLabeled, actorID, role)
}

func (uc *WorkflowUseCase) Finalize(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	return uc.Transition(ctx, orderID, domain.StateFinalized, actorID, role)
}
