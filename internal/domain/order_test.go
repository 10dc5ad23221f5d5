package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewProductionOrder(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	o := NewProductionOrder(LineOnco, "user-1", now)

	if o.State != StateCreated {
		t.Errorf("state = %s, want %s", o.State, StateCreated)
	}
	if o.ID == "" {
		t.Error("order id should not be empty")
	}
	if !strings.HasPrefix(o.Code, "OP260828-") {
		t.Errorf("code %q missing date prefix", o.Code)
	}
	if o.StageActors[StateCreated] != "user-1" {
		t.Errorf("creation actor = %q, want user-1", o.StageActors[StateCreated])
	}
	if !o.StageTimestamps[StateCreated].Equal(now) {
		t.Errorf("creation timestamp = %v, want %v", o.StageTimestamps[StateCreated], now)
	}
	if !o.StageMapsConsistent() {
		t.Error("fresh order should have consistent stage maps")
	}
}

func TestApplyTransition(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	t.Run("advances through the whole chain", func(t *testing.T) {
		o := NewProductionOrder(LineSterile, "creator", now)
		at := now
		for {
			next, ok := NextState(o.State)
			if !ok {
				break
			}
			at = at.Add(time.Minute)
			if err := o.ApplyTransition(next, "actor-"+string(next), at); err != nil {
				t.Fatalf("ApplyTransition(%s) failed: %v", next, err)
			}
			if !o.StageMapsConsistent() {
				t.Fatalf("stage maps inconsistent after entering %s", next)
			}
		}
		if o.State != StateFinalized {
			t.Errorf("final state = %s, want %s", o.State, StateFinalized)
		}
		if !o.UpdatedAt.Equal(at) {
			t.Errorf("updated at = %v, want %v", o.UpdatedAt, at)
		}
	})

	t.Run("rejects skipping a stage", func(t *testing.T) {
		o := NewProductionOrder(LineOnco, "creator", now)
		err := o.ApplyTransition(StateCalculated, "actor", now)
		if err == nil {
			t.Fatal("expected error when skipping VALIDATED")
		}
		if !IsKind(err, KindIllegalTransition) {
			t.Errorf("error kind = %s, want %s", KindOf(err), KindIllegalTransition)
		}
		if o.State != StateCreated {
			t.Errorf("state mutated on failed transition: %s", o.State)
		}
	})

	t.Run("rejects moving backward", func(t *testing.T) {
		o := NewProductionOrder(LineOnco, "creator", now)
		if err := o.ApplyTransition(StateValidated, "actor", now); err != nil {
			t.Fatal(err)
		}
		err := o.ApplyTransition(StateCreated, "actor", now)
		if err == nil {
			t.Fatal("expected error when moving backward")
		}
		if !IsKind(err, KindIllegalTransition) {
			t.Errorf("error kind = %s, want %s", KindOf(err), KindIllegalTransition)
		}
	})

	t.Run("rejects leaving the terminal state", func(t *testing.T) {
		o := NewProductionOrder(LineOnco, "creator", now)
		o.State = StateFinalized
		if err := o.ApplyTransition(StateCreated, "actor", now); err == nil {
			t.Fatal("expected error on transition out of FINALIZED")
		}
	})
}

func TestStageMapsConsistent(t *testing.T) {
	now := time.Now()

	t.Run("missing actor for a past stage", func(t *testing.T) {
		o := NewProductionOrder(LineOnco, "creator", now)
		if err := o.ApplyTransition(StateValidated, "actor", now); err != nil {
			t.Fatal(err)
		}
		delete(o.StageActors, StateCreated)
		if o.StageMapsConsistent() {
			t.Error("expected inconsistency after dropping a past actor")
		}
	})

	t.Run("timestamp recorded for a future stage", func(t *testing.T) {
		o := NewProductionOrder(LineOnco, "creator", now)
		o.StageTimestamps[StateProduced] = now
		if o.StageMapsConsistent() {
			t.Error("expected inconsistency with a future timestamp present")
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		o := NewProductionOrder(LineOnco, "creator", now)
		o.State = OrderState("LIMBO")
		if o.StageMapsConsistent() {
			t.Error("unknown state can never be consistent")
		}
	})
}
