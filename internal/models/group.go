package models

import "math"

// Group is the authoritative record of one savings circle.
// Only the engine mutates it; everything else reads copies.
type Group struct {
	// ID is the sequence number assigned at creation, starting at 1.
	ID uint64 `json:"id"`

	// Admin is the principal that created the group. Only the admin may
	// activate or cancel it.
	Admin string `json:"admin"`

	// Name is the display label chosen at creation.
	Name string `json:"name"`

	// ContributionAmount is what each member pays into the pool per cycle.
	ContributionAmount int64 `json:"contribution_amount"`

	// CycleDuration is the number of seconds between payouts.
	CycleDuration int64 `json:"cycle_duration"`

	// MaxMembers caps MemberCount.
	MaxMembers uint32 `json:"max_members"`

	// MemberCount is the number of members that have joined.
	MemberCount uint32 `json:"member_count"`

	Status GroupStatus `json:"status"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`

	// StartTime is the Unix timestamp of activation, zero while forming.
	StartTime int64 `json:"start_time"`

	// CurrentCycle is the rotation cursor: the join index of the next
	// recipient, which is also the number of payouts made so far.
	CurrentCycle uint32 `json:"current_cycle"`

	// PoolBalance is the amount held in custody for this group.
	PoolBalance int64 `json:"pool_balance"`

	CompletedAt int64 `json:"completed_at,omitempty"`
	CancelledAt int64 `json:"cancelled_at,omitempty"`
}

// NewGroup returns a forming group with no members.
func NewGroup(id uint64, admin, name string, contribution, cycleDuration int64, maxMembers uint32, now int64) *Group {
	return &Group{
		ID:                 id,
		Admin:              admin,
		Name:               name,
		ContributionAmount: contribution,
		CycleDuration:      cycleDuration,
		MaxMembers:         maxMembers,
		Status:             StatusForming,
		CreatedAt:          now,
	}
}

// IsActive reports whether the group is active with a member count inside
// [1, MaxMembers]. A count outside that range should not occur but is
// treated as inactive rather than trusted.
func (g *Group) IsActive() bool {
	if g == nil || g.Status != StatusActive {
		return false
	}
	return g.MemberCount >= 1 && g.MemberCount <= g.MaxMembers
}

// IsFull reports whether no more members can join.
func (g *Group) IsFull() bool {
	return g.MemberCount >= g.MaxMembers
}

// NextPayoutAt returns the Unix time at which the current cycle is due to pay
// out, or zero if the group has not started. A due time past the int64 range
// saturates at math.MaxInt64, which is never reached.
func (g *Group) NextPayoutAt() int64 {
	if g.StartTime == 0 {
		return 0
	}
	cycles := int64(g.CurrentCycle) + 1
	if g.CycleDuration > 0 && cycles > math.MaxInt64/g.CycleDuration {
		return math.MaxInt64
	}
	offset := cycles * g.CycleDuration
	if g.StartTime > 0 && offset > math.MaxInt64-g.StartTime {
		return math.MaxInt64
	}
	return g.StartTime + offset
}
