package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestPoolAmount(t *testing.T) {
	tests := []struct {
		name         string
		contribution int64
		members      uint32
		want         int64
		wantErr      bool
	}{
		{
			name:         "ten members of 1000",
			contribution: 1000,
			members:      10,
			want:         10000,
		},
		{
			name:         "single member",
			contribution: 250,
			members:      1,
			want:         250,
		},
		{
			name:         "zero members should error",
			contribution: 1000,
			members:      0,
			wantErr:      true,
		},
		{
			name:         "non-positive contribution should error",
			contribution: 0,
			members:      3,
			wantErr:      true,
		},
		{
			name:         "overflow should error",
			contribution: math.MaxInt64/2 + 1,
			members:      2,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PoolAmount(tt.contribution, tt.members)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PoolAmount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("PoolAmount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPoolAmountOverflowIsTyped(t *testing.T) {
	_, err := PoolAmount(math.MaxInt64, 3)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestRotationLength(t *testing.T) {
	tests := []struct {
		name     string
		duration int64
		members  uint32
		want     int64
		wantErr  error
	}{
		{name: "weekly cycles of four", duration: 604800, members: 4, want: 2419200},
		{name: "single member", duration: 60, members: 1, want: 60},
		{name: "max duration single member", duration: math.MaxInt64, members: 1, want: math.MaxInt64},
		{name: "max duration two members overflows", duration: math.MaxInt64, members: 2, wantErr: ErrOverflow},
		{name: "just past half overflows", duration: math.MaxInt64/2 + 1, members: 2, wantErr: ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RotationLength(tt.duration, tt.members)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("RotationLength() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RotationLength() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RotationLength() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := RotationLength(0, 3); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := RotationLength(60, 0); err == nil {
		t.Error("expected error for zero members")
	}
}

func TestIsFinalCycle(t *testing.T) {
	if IsFinalCycle(0, 3) || IsFinalCycle(1, 3) {
		t.Error("early cycles must not be final")
	}
	if !IsFinalCycle(2, 3) {
		t.Error("cycle 2 of 3 must be final")
	}
	if !IsFinalCycle(0, 1) {
		t.Error("single member group finishes after one payout")
	}
	if IsFinalCycle(0, 0) {
		t.Error("empty group has no final cycle")
	}
}

func TestCovers(t *testing.T) {
	tests := []struct {
		balance, pool int64
		want          bool
	}{
		{0, 0, false},
		{0, 100, false},
		{99, 100, false},
		{100, 100, true},
		{150, 100, true},
	}
	for _, tt := range tests {
		if got := Covers(tt.balance, tt.pool); got != tt.want {
			t.Errorf("Covers(%d, %d) = %v, want %v", tt.balance, tt.pool, got, tt.want)
		}
	}
}

func TestSchedule(t *testing.T) {
	slots := Schedule([]string{"alice", "bob", "carol"}, 1000, 100, 1)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}

	// alice was paid at cycle 0, bob is next, carol last
	if !slots[0].Paid || slots[1].Paid || slots[2].Paid {
		t.Errorf("unexpected paid flags: %+v", slots)
	}
	for i, want := range []int64{1100, 1200, 1300} {
		if slots[i].DueAt != want {
			t.Errorf("slot %d DueAt = %d, want %d", i, slots[i].DueAt, want)
		}
		if slots[i].Cycle != uint32(i) {
			t.Errorf("slot %d Cycle = %d", i, slots[i].Cycle)
		}
	}
	if slots[2].Recipient != "carol" {
		t.Errorf("last recipient = %s, want carol", slots[2].Recipient)
	}

	unstarted := Schedule([]string{"alice"}, 0, 100, 0)
	if unstarted[0].DueAt != 0 {
		t.Errorf("expected zero DueAt before activation, got %d", unstarted[0].DueAt)
	}
}
