package jobs

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusAssigned, StatusInProgress, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusAssigned, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusAssigned, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusInProgress, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestValidJobType(t *testing.T) {
	for _, jt := range []JobType{TypeDelivery, TypePickup, TypeService, TypeInstallation} {
		if !ValidJobType(jt) {
			t.Errorf("ValidJobType(%s) = false", jt)
		}
	}
	if ValidJobType("REPAIR") {
		t.Error("ValidJobType(REPAIR) = true, want false")
	}
}
