package calculator

import "github.com/xoulomon/stellarsave/internal/models"

// MemberStanding is one member's position in a group's rotation.
type MemberStanding struct {
	Member      string `json:"member"`
	Contributed int64  `json:"contributed"`
	Received    int64  `json:"received"`
	Refunded    int64  `json:"refunded"`
	// Net is Received + Refunded - Contributed. Positive means the member
	// was paid ahead of their contributions, negative that the pool still
	// owes them.
	Net int64 `json:"net"`
}

// Standings aggregates contributions, refunds and payouts per member.
// Results follow the order of members; records naming anyone else are
// ignored.
func Standings(members []string, contributions []*models.Contribution, payouts []*models.PayoutRecord) []MemberStanding {
	byMember := make(map[string]*MemberStanding, len(members))
	standings := make([]MemberStanding, len(members))
	for i, m := range members {
		standings[i].Member = m
		byMember[m] = &standings[i]
	}

	for _, c := range contributions {
		s, ok := byMember[c.Member]
		if !ok {
			continue
		}
		s.Contributed += c.Amount
		if c.Refunded {
			s.Refunded += c.Amount
		}
	}

	for _, p := range payouts {
		if s, ok := byMember[p.Recipient]; ok {
			s.Received += p.Amount
		}
	}

	for i := range standings {
		s := &standings[i]
		s.Net = s.Received + s.Refunded - s.Contributed
	}
	return standings
}
