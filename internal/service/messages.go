package service

import (
	"github.com/xoulomon/stellarsave/internal/calculator"
	"github.com/xoulomon/stellarsave/internal/models"
)

// Group is the wire form of a group record.
type Group struct {
	ID                 uint64 `json:"id"`
	Admin              string `json:"admin"`
	Name               string `json:"name"`
	ContributionAmount int64  `json:"contribution_amount"`
	CycleDuration      int64  `json:"cycle_duration"`
	MaxMembers         uint32 `json:"max_members"`
	MemberCount        uint32 `json:"member_count"`
	Status             string `json:"status"`
	CreatedAt          int64  `json:"created_at"`
	StartTime          int64  `json:"start_time"`
	CurrentCycle       uint32 `json:"current_cycle"`
	PoolBalance        int64  `json:"pool_balance"`
	NextPayoutAt       int64  `json:"next_payout_at,omitempty"`
	CompletedAt        int64  `json:"completed_at,omitempty"`
	CancelledAt        int64  `json:"cancelled_at,omitempty"`
}

func toGroup(g *models.Group) *Group {
	out := &Group{
		ID:                 g.ID,
		Admin:              g.Admin,
		Name:               g.Name,
		ContributionAmount: g.ContributionAmount,
		CycleDuration:      g.CycleDuration,
		MaxMembers:         g.MaxMembers,
		MemberCount:        g.MemberCount,
		Status:             g.Status.String(),
		CreatedAt:          g.CreatedAt,
		StartTime:          g.StartTime,
		CurrentCycle:       g.CurrentCycle,
		PoolBalance:        g.PoolBalance,
		CompletedAt:        g.CompletedAt,
		CancelledAt:        g.CancelledAt,
	}
	if g.Status == models.StatusActive {
		out.NextPayoutAt = g.NextPayoutAt()
	}
	return out
}

type CreateGroupRequest struct {
	Name               string `json:"name"`
	ContributionAmount int64  `json:"contribution_amount"`
	CycleDuration      int64  `json:"cycle_duration"`
	MaxMembers         uint32 `json:"max_members"`
}

type CreateGroupResponse struct {
	GroupID uint64 `json:"group_id"`
	Group   *Group `json:"group"`
}

// GroupRequest addresses one group. Join, activate, get, cancel and the
// per-group listings all take it.
type GroupRequest struct {
	GroupID uint64 `json:"group_id"`
}

type GroupResponse struct {
	Group *Group `json:"group"`
}

type IsGroupActiveResponse struct {
	Active bool `json:"active"`
}

type GetTotalGroupsCreatedRequest struct{}

type GetTotalGroupsCreatedResponse struct {
	Total uint64 `json:"total"`
}

type ContributeRequest struct {
	GroupID uint64 `json:"group_id"`
	Amount  int64  `json:"amount"`
}

type RunPayoutCycleResponse struct {
	Payout *models.PayoutRecord `json:"payout"`
	Group  *Group               `json:"group"`
}

type ListGroupsRequest struct {
	// Statuses filters by status label; empty returns every group.
	Statuses []string `json:"statuses,omitempty"`
}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type ListMembersResponse struct {
	Members []*models.Member `json:"members"`
}

type ListPayoutsResponse struct {
	Payouts []*models.PayoutRecord `json:"payouts"`
}

type CycleRequest struct {
	GroupID uint64 `json:"group_id"`
	Cycle   uint32 `json:"cycle"`
}

type GetPayoutResponse struct {
	Payout *models.PayoutRecord `json:"payout"`
}

type ListContributionsResponse struct {
	Contributions []*models.Contribution `json:"contributions"`
}

type GetScheduleResponse struct {
	Slots []calculator.ScheduledPayout `json:"slots"`
}

type GetStandingsResponse struct {
	Standings []calculator.MemberStanding `json:"standings"`
}

type RegisterRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Address string `json:"address"`
	Token   string `json:"token"`
}
