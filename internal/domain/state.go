package domain

// OrderState is one of the eight mandated production stages.
type OrderState string

const (
	StateCreated    OrderState = "CREATED"
	StateValidated  OrderState = "VALIDATED"
	StateCalculated OrderState = "CALCULATED"
	StateScheduled  OrderState = "SCHEDULED"
	StateProduced   OrderState = "PRODUCED"
	StateQC         OrderState = "QC"
	StateLabeled    OrderState = "LABELED"
	StateFinalized  OrderState = "FINALIZED"
)

// Role identifies who is acting on an order.
type Role string

const (
	RoleAuxiliary   Role = "AUXILIARY"
	RolePharmacist  Role = "PHARMACIST"
	RoleCoordinator Role = "COORDINATOR"
)

// stateChain is the closed, linear transition set. Each state has exactly one
// successor; backward and cancel transitions are intentionally unsupported.
var stateChain = []OrderState{
	StateCreated,
	StateValidated,
	StateCalculated,
	StateScheduled,
	StateProduced,
	StateQC,
	StateLabeled,
	StateFinalized,
}

// stateRoles maps each target state to the roles allowed to cause a
// transition into it.
var stateRoles = map[OrderState][]Role{
	StateCreated:    {RoleAuxiliary, RolePharmacist, RoleCoordinator},
	StateValidated:  {RolePharmacist, RoleCoordinator},
	StateCalculated: {RolePharmacist, RoleCoordinator},
	StateScheduled:  {RoleCoordinator},
	StateProduced:   {RolePharmacist, RoleCoordinator},
	StateQC:         {RolePharmacist, RoleCoordinator},
	StateLabeled:    {RoleAuxiliary, RolePharmacist, RoleCoordinator},
	StateFinalized:  {RoleCoordinator},
}

// AllStates returns the lifecycle states in canonical order.
func AllStates() []OrderState {
	out := make([]OrderState, len(stateChain))
	copy(out, stateChain)
	return out
}

// StateIndex returns the position of s in the canonical ordering.
func StateIndex(s OrderState) (int, bool) {
	for i, st := range stateChain {
		if st == s {
			return i, true
		}
	}
	return 0, false
}

// NextState returns the single permitted successor of s. The terminal state
// has no successor.
func NextState(s OrderState) (OrderState, bool) {
	i, ok := StateIndex(s)
	if !ok || i == len(stateChain)-1 {
		return "", false
	}
	return stateChain[i+1], true
}

// RoleMayEnter reports whether role is permitted to move an order into
// target.
func RoleMayEnter(target OrderState, role Role) bool {
	for _, r := range stateRoles[target] {
		if r == role {
			return true
		}
	}
	return false
}

// ValidRole reports whether r is a known actor role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAuxiliary, RolePharmacist, RoleCoordinator:
		return true
	}
	return false
}

// ValidState reports whether s is a known lifecycle state.
func ValidState(s OrderState) bool {
	_, ok := StateIndex(s)
	return ok
}
