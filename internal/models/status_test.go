package models

import (
	"errors"
	"math"
	"testing"
)

func TestCanTransition(t *testing.T) {
	all := []GroupStatus{StatusForming, StatusActive, StatusCompleted, StatusCancelled}
	legal := map[[2]GroupStatus]bool{
		{StatusForming, StatusActive}:    true,
		{StatusForming, StatusCancelled}: true,
		{StatusActive, StatusCompleted}:  true,
		{StatusActive, StatusCancelled}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]GroupStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestValidateTransitionReportsStates(t *testing.T) {
	err := ValidateTransition(StatusForming, StatusCompleted)
	if err == nil {
		t.Fatal("expected Forming -> Completed to be rejected")
	}

	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if te.From != StatusForming || te.To != StatusCompleted {
		t.Errorf("got %s -> %s", te.From, te.To)
	}
	if err.Error() != "illegal status transition forming -> completed" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTerminalStatuses(t *testing.T) {
	if StatusForming.IsTerminal() || StatusActive.IsTerminal() {
		t.Error("forming and active must not be terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestParseStatusRoundTrip(t *testing.T) {
	for _, s := range []GroupStatus{StatusForming, StatusActive, StatusCompleted, StatusCancelled} {
		got, ok := ParseStatus(s.String())
		if !ok || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Error("expected unknown label to fail")
	}
}

func TestGroupIsActive(t *testing.T) {
	tests := []struct {
		name    string
		status  GroupStatus
		members uint32
		want    bool
	}{
		{"forming group", StatusForming, 3, false},
		{"active with zero members", StatusActive, 0, false},
		{"active with one member", StatusActive, 1, true},
		{"active at capacity", StatusActive, 10, true},
		{"active above capacity", StatusActive, 11, false},
		{"completed group", StatusCompleted, 5, false},
		{"cancelled group", StatusCancelled, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGroup(1, "admin", "Test Group", 1000, 86400, 10, 0)
			g.Status = tt.status
			g.MemberCount = tt.members
			if got := g.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextPayoutAt(t *testing.T) {
	g := NewGroup(1, "admin", "Test Group", 1000, 100, 3, 0)
	if g.NextPayoutAt() != 0 {
		t.Errorf("expected zero before activation")
	}
	g.StartTime = 1_000
	if got := g.NextPayoutAt(); got != 1_100 {
		t.Errorf("NextPayoutAt() = %d, want 1100", got)
	}
	g.CurrentCycle = 2
	if got := g.NextPayoutAt(); got != 1_300 {
		t.Errorf("NextPayoutAt() = %d, want 1300", got)
	}
}

func TestNextPayoutAtSaturates(t *testing.T) {
	tests := []struct {
		name     string
		duration int64
		cycle    uint32
	}{
		{"duration alone overflows", math.MaxInt64, 0},
		{"cycles times duration overflows", math.MaxInt64/2 + 1, 1},
		{"cursor past uint32 wrap", math.MaxInt64 / 4, math.MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGroup(1, "admin", "Test Group", 1000, tt.duration, 3, 0)
			g.StartTime = 1_700_000_000
			g.CurrentCycle = tt.cycle
			if got := g.NextPayoutAt(); got != math.MaxInt64 {
				t.Errorf("NextPayoutAt() = %d, want math.MaxInt64", got)
			}
		})
	}
}
