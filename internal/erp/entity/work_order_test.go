package entity

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{WOStatusPlanned, WOStatusInProgress, true},
		{WOStatusPlanned, WOStatusCancelled, true},
		{WOStatusPlanned, WOStatusCompleted, false}, // 必须先开工
		{WOStatusInProgress, WOStatusCompleted, true},
		{WOStatusInProgress, WOStatusCancelled, true},
		{WOStatusInProgress, WOStatusPlanned, false},
		{WOStatusCompleted, WOStatusInProgress, false}, // 终态
		{WOStatusCompleted, WOStatusCancelled, false},
		{WOStatusCancelled, WOStatusPlanned, false},
		{WOStatusCancelled, WOStatusInProgress, false},
		{"UNKNOWN", WOStatusInProgress, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidWOStatus(t *testing.T) {
	for _, s := range []string{WOStatusPlanned, WOStatusInProgress, WOStatusCompleted, WOStatusCancelled} {
		if !ValidWOStatus(s) {
			t.Errorf("ValidWOStatus(%s) = false, want true", s)
		}
	}
	if ValidWOStatus("RELEASED") {
		t.Error("ValidWOStatus(RELEASED) = true, want false")
	}
}

func TestValidOperation(t *testing.T) {
	for _, op := range Operations {
		if !ValidOperation(op) {
			t.Errorf("ValidOperation(%s) = false, want true", op)
		}
	}
	if ValidOperation("POLISHING") {
		t.Error("ValidOperation(POLISHING) = true, want false")
	}
}

func TestIsMaster(t *testing.T) {
	parent := "some-id"
	master := &WorkOrder{}
	child := &WorkOrder{ParentWOID: &parent, OperationType: OpCutting}
	if !master.IsMaster() {
		t.Error("work order without parent should be master")
	}
	if child.IsMaster() {
		t.Error("work order with parent should not be master")
	}
}
