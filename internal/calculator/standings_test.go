package calculator

import (
	"testing"

	"github.com/xoulomon/stellarsave/internal/models"
)

func TestStandings(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	contributions := []*models.Contribution{
		{Cycle: 0, Member: "alice", Amount: 100},
		{Cycle: 0, Member: "bob", Amount: 100},
		{Cycle: 0, Member: "carol", Amount: 100},
		{Cycle: 1, Member: "alice", Amount: 100, Refunded: true},
		{Cycle: 1, Member: "bob", Amount: 100, Refunded: true},
		{Cycle: 1, Member: "mallory", Amount: 100},
	}
	payouts := []*models.PayoutRecord{
		{CycleIndex: 0, Recipient: "alice", Amount: 300},
	}

	got := Standings(members, contributions, payouts)

	tests := []struct {
		name        string
		index       int
		member      string
		contributed int64
		received    int64
		refunded    int64
		net         int64
	}{
		{
			name:        "paid early member is ahead",
			index:       0,
			member:      "alice",
			contributed: 200,
			received:    300,
			refunded:    100,
			net:         200,
		},
		{
			name:        "refund offsets contribution",
			index:       1,
			member:      "bob",
			contributed: 200,
			refunded:    100,
			net:         -100,
		},
		{
			name:        "unpaid member is owed",
			index:       2,
			member:      "carol",
			contributed: 100,
			net:         -100,
		},
	}

	if len(got) != len(members) {
		t.Fatalf("got %d standings, want %d", len(got), len(members))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := got[tt.index]
			if s.Member != tt.member {
				t.Errorf("Member = %q, want %q", s.Member, tt.member)
			}
			if s.Contributed != tt.contributed {
				t.Errorf("Contributed = %d, want %d", s.Contributed, tt.contributed)
			}
			if s.Received != tt.received {
				t.Errorf("Received = %d, want %d", s.Received, tt.received)
			}
			if s.Refunded != tt.refunded {
				t.Errorf("Refunded = %d, want %d", s.Refunded, tt.refunded)
			}
			if s.Net != tt.net {
				t.Errorf("Net = %d, want %d", s.Net, tt.net)
			}
		})
	}
}

func TestStandingsWithoutActivity(t *testing.T) {
	got := Standings([]string{"alice"}, nil, nil)
	if len(got) != 1 || got[0] != (MemberStanding{Member: "alice"}) {
		t.Errorf("Standings() = %+v, want zero standing for alice", got)
	}
}
