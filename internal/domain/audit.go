package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction tags what happened to an entity.
type AuditAction string

const (
	AuditCreate          AuditAction = "CREATE"
	AuditUpdate          AuditAction = "UPDATE"
	AuditDelete          AuditAction = "DELETE"
	AuditStateTransition AuditAction = "STATE_TRANSITION"
)

// EntityType enumerates the closed set of auditable entities. The registry
// is fixed at compile time; there is no runtime string-to-type resolution.
type EntityType string

const (
	EntityOrder      EntityType = "production_order"
	EntityMedicine   EntityType = "medicine"
	EntityLaboratory EntityType = "laboratory"
	EntityVehicle    EntityType = "vehicle"
	EntityContainer  EntityType = "container"
	EntityStability  EntityType = "stability"
	EntityUser       EntityType = "user"
)

var knownEntityTypes = []EntityType{
	EntityOrder,
	EntityMedicine,
	EntityLaboratory,
	EntityVehicle,
	EntityContainer,
	EntityStability,
	EntityUser,
}

// KnownEntityTypes returns the closed registry of auditable entity types.
func KnownEntityTypes() []EntityType {
	out := make([]EntityType, len(knownEntityTypes))
	copy(out, knownEntityTypes)
	return out
}

// IsKnownEntityType reports whether t names a registered entity type.
func IsKnownEntityType(t EntityType) bool {
	for _, k := range knownEntityTypes {
		if k == t {
			return true
		}
	}
	return false
}

// AuditRecord is append-only and immutable once written.
type AuditRecord struct {
	ID         string                 `json:"id"`
	EntityType EntityType             `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Action     AuditAction            `json:"action"`
	Changes    map[string]interface{} `json:"changes,omitempty"`
	ActorID    string                 `json:"actor_id"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewAuditRecord builds a record with a server-assigned id and timestamp.
func NewAuditRecord(entityType EntityType, entityID string, action AuditAction, changes map[string]interface{}, actorID string, now time.Time) *AuditRecord {
	return &AuditRecord{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    changes,
		ActorID:    actorID,
		CreatedAt:  now,
	}
}

// ActorRef is a distinct audit actor resolved to display identity.
type ActorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
