package ports

import (
	"context"
	"time"

	"github.com/admixflow/admixflow/internal/domain"
)

// OrderRepository defines persistence for production orders.
type OrderRepository interface {
	// Create saves a new order with its mixes and stage maps.
	Create(ctx context.Context, order *domain.ProductionOrder) error

	// FindByID retrieves an order by its ID.
	FindByID(ctx context.Context, id string) (*domain.ProductionOrder, error)

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.ProductionOrder, error)

	// Count returns the number of orders matching the filter.
	Count(ctx context.Context, filter domain.OrderFilter) (int, error)

	// UpdateState conditionally advances an order: the update applies only if
	// the stored state still equals expected (compare-and-swap), and writes
	// state, stage actor and stage timestamp as a single atomic unit. A lost
	// race yields an IllegalTransition domain error, a missing order NotFound.
	UpdateState(ctx context.Context, id string, expected, next domain.OrderState, actorID string, at time.Time) error
}

// CatalogRepository is read-only access to the compounding catalog.
type CatalogRepository interface {
	FindMedicine(ctx context.Context, id string) (*domain.Medicine, error)
	FindLaboratory(ctx context.Context, id string) (*domain.Laboratory, error)
	FindVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	FindContainer(ctx context.Context, id string) (*domain.Container, error)

	// FindStability matches the exact four-tuple; partial matches are never
	// substituted.
	FindStability(ctx context.Context, medicineID, laboratoryID, vehicleID, containerID string) (*domain.Stability, error)
}

// AuditRepository defines append-only audit persistence. No operation
// mutates or deletes existing records.
type AuditRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) error

	// ListByEntity returns records for one entity, newest first, capped.
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit int) ([]*domain.AuditRecord, error)

	// ListByActor returns records produced by one actor, newest first, capped.
	ListByActor(ctx context.Context, actorID string, limit int) ([]*domain.AuditRecord, error)

	// ListByEntityType returns records across all entities of one type.
	ListByEntityType(ctx context.Context, entityType domain.EntityType, limit int) ([]*domain.AuditRecord, error)

	// List returns records unfiltered with offset/limit pagination.
	List(ctx context.Context, limit, offset int) ([]*domain.AuditRecord, error)

	// DistinctEntityTypes returns every entity type that has records.
	DistinctEntityTypes(ctx context.Context) ([]domain.EntityType, error)

	// DistinctActors returns every actor that has records, resolved to
	// display identity.
	DistinctActors(ctx context.Context) ([]domain.ActorRef, error)
}

// UserRepository looks up operator accounts for authentication and audit
// actor resolution.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// OrderCache is a best-effort snapshot cache in front of OrderRepository.
// Misses and failures fall through to the repository.
type OrderCache interface {
	Get(ctx context.Context, id string) (*domain.ProductionOrder, error)
	Set(ctx context.Context, order *domain.ProductionOrder) error
	Invalidate(ctx context.Context, id string) error
}
