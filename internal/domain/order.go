package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Mix is one patient/drug preparation within an order. Immutable once its
// quantities are calculated.
type Mix struct {
	ID               string    `json:"id"`
	PatientName      string    `json:"patient_name"`
	PatientRecord    string    `json:"patient_record"`
	MedicineID       string    `json:"medicine_id"`
	LaboratoryID     string    `json:"laboratory_id"`
	VehicleID        string    `json:"vehicle_id"`
	ContainerID      string    `json:"container_id"`
	Dose             float64   `json:"dose"`
	DoseUnit         string    `json:"dose_unit"`
	VehicleVolume    float64   `json:"vehicle_volume"`
	ExtractionVolume float64   `json:"extraction_volume"`
	TotalVolume      float64   `json:"total_volume"`
	Supplies         int       `json:"supplies"`
	LotCode          string    `json:"lot_code"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// ProductionOrder is the aggregate root: one batch of patient-specific
// admixtures moving through the eight production stages.
type ProductionOrder struct {
	ID              string                   `json:"id"`
	Code            string                   `json:"code"`
	ProductionLine  ProductionLine           `json:"production_line"`
	State           OrderState               `json:"state"`
	Mixes           []Mix                    `json:"mixes"`
	StageActors     map[OrderState]string    `json:"stage_actors"`
	StageTimestamps map[OrderState]time.Time `json:"stage_timestamps"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// NewProductionOrder creates an order in CREATED, stamping the creator as
// the first stage actor.
func NewProductionOrder(line ProductionLine, createdBy string, now time.Time) *ProductionOrder {
	return &ProductionOrder{
		ID:              uuid.NewString(),
		Code:            NewOrderCode(now),
		ProductionLine:  line,
		State:           StateCreated,
		StageActors:     map[OrderState]string{StateCreated: createdBy},
		StageTimestamps: map[OrderState]time.Time{StateCreated: now},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewOrderCode generates the human-readable order code: date plus a random
// suffix. Unique per creation in practice, enforced by the orders table.
func NewOrderCode(now time.Time) string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "OP" + now.Format("060102-150405")
	}
	return "OP" + now.Format("060102") + "-" + hex.EncodeToString(suffix)
}

// ApplyTransition advances the order in memory after a successful
// conditional update. target must be the single successor of the current
// state.
func (o *ProductionOrder) ApplyTransition(target OrderState, actorID string, at time.Time) error {
	next, ok := NextState(o.State)
	if !ok || next != target {
		return NewIllegalTransition(o.State, target)
	}
	o.State = target
	o.StageActors[target] = actorID
	o.StageTimestamps[target] = at
	o.UpdatedAt = at
	return nil
}

// StageMapsConsistent checks the stage invariant: actors and timestamps
// exist for the current state and every state before it, and for nothing
// after it.
func (o *ProductionOrder) StageMapsConsistent() bool {
	idx, ok := StateIndex(o.State)
	if !ok {
		return false
	}
	for i, s := range AllStates() {
		_, hasActor := o.StageActors[s]
		_, hasStamp := o.StageTimestamps[s]
		if i <= idx && (!hasActor || !hasStamp) {
			return false
		}
		if i > idx && (hasActor || hasStamp) {
			return false
		}
	}
	return true
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Line   *ProductionLine `json:"line,omitempty"`
	State  *OrderState     `json:"state,omitempty"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
