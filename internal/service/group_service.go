package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/xoulomon/stellarsave/internal/auth"
	"github.com/xoulomon/stellarsave/internal/engine"
	"github.com/xoulomon/stellarsave/internal/middleware"
	"github.com/xoulomon/stellarsave/internal/models"
)

const GroupServiceName = "stellarsave.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure           = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceJoinGroupProcedure             = "/" + GroupServiceName + "/JoinGroup"
	GroupServiceActivateGroupProcedure         = "/" + GroupServiceName + "/ActivateGroup"
	GroupServiceGetGroupProcedure              = "/" + GroupServiceName + "/GetGroup"
	GroupServiceIsGroupActiveProcedure         = "/" + GroupServiceName + "/IsGroupActive"
	GroupServiceGetTotalGroupsCreatedProcedure = "/" + GroupServiceName + "/GetTotalGroupsCreated"
	GroupServiceContributeProcedure            = "/" + GroupServiceName + "/Contribute"
	GroupServiceRunPayoutCycleProcedure        = "/" + GroupServiceName + "/RunPayoutCycle"
	GroupServiceCancelGroupProcedure           = "/" + GroupServiceName + "/CancelGroup"
	GroupServiceListGroupsProcedure            = "/" + GroupServiceName + "/ListGroups"
	GroupServiceListMembersProcedure           = "/" + GroupServiceName + "/ListMembers"
	GroupServiceListPayoutsProcedure           = "/" + GroupServiceName + "/ListPayouts"
	GroupServiceGetPayoutProcedure             = "/" + GroupServiceName + "/GetPayout"
	GroupServiceListContributionsProcedure     = "/" + GroupServiceName + "/ListContributions"
	GroupServiceGetScheduleProcedure           = "/" + GroupServiceName + "/GetSchedule"
	GroupServiceGetStandingsProcedure          = "/" + GroupServiceName + "/GetStandings"
)

// GroupService exposes the engine over Connect. The acting principal always
// comes from the verified token, never from the request body.
type GroupService struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewGroupService creates a GroupService backed by e.
func NewGroupService(e *engine.Engine, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{engine: e, logger: logger}
}

// NewGroupServiceHandler builds the HTTP handler for svc and returns the
// path to mount it on. Mutating procedures require a token; reads accept
// anonymous callers. opts are applied after the auth interceptors.
func NewGroupServiceHandler(svc *GroupService, jwtManager *auth.JWTManager, opts ...connect.HandlerOption) (string, http.Handler) {
	authed := append([]connect.HandlerOption{
		WithJSON(),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	}, opts...)
	public := append([]connect.HandlerOption{
		WithJSON(),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, authed...))
	mux.Handle(GroupServiceJoinGroupProcedure, connect.NewUnaryHandler(GroupServiceJoinGroupProcedure, svc.JoinGroup, authed...))
	mux.Handle(GroupServiceActivateGroupProcedure, connect.NewUnaryHandler(GroupServiceActivateGroupProcedure, svc.ActivateGroup, authed...))
	mux.Handle(GroupServiceContributeProcedure, connect.NewUnaryHandler(GroupServiceContributeProcedure, svc.Contribute, authed...))
	mux.Handle(GroupServiceRunPayoutCycleProcedure, connect.NewUnaryHandler(GroupServiceRunPayoutCycleProcedure, svc.RunPayoutCycle, authed...))
	mux.Handle(GroupServiceCancelGroupProcedure, connect.NewUnaryHandler(GroupServiceCancelGroupProcedure, svc.CancelGroup, authed...))

	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, public...))
	mux.Handle(GroupServiceIsGroupActiveProcedure, connect.NewUnaryHandler(GroupServiceIsGroupActiveProcedure, svc.IsGroupActive, public...))
	mux.Handle(GroupServiceGetTotalGroupsCreatedProcedure, connect.NewUnaryHandler(GroupServiceGetTotalGroupsCreatedProcedure, svc.GetTotalGroupsCreated, public...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, public...))
	mux.Handle(GroupServiceListMembersProcedure, connect.NewUnaryHandler(GroupServiceListMembersProcedure, svc.ListMembers, public...))
	mux.Handle(GroupServiceListPayoutsProcedure, connect.NewUnaryHandler(GroupServiceListPayoutsProcedure, svc.ListPayouts, public...))
	mux.Handle(GroupServiceGetPayoutProcedure, connect.NewUnaryHandler(GroupServiceGetPayoutProcedure, svc.GetPayout, public...))
	mux.Handle(GroupServiceListContributionsProcedure, connect.NewUnaryHandler(GroupServiceListContributionsProcedure, svc.ListContributions, public...))
	mux.Handle(GroupServiceGetScheduleProcedure, connect.NewUnaryHandler(GroupServiceGetScheduleProcedure, svc.GetSchedule, public...))
	mux.Handle(GroupServiceGetStandingsProcedure, connect.NewUnaryHandler(GroupServiceGetStandingsProcedure, svc.GetStandings, public...))

	return "/" + GroupServiceName + "/", mux
}

// CreateGroup creates a forming group administered by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	caller := middleware.GetPrincipal(ctx)
	s.logger.Info("CreateGroup request received",
		"caller", caller,
		"name", req.Msg.Name,
		"contribution_amount", req.Msg.ContributionAmount,
		"max_members", req.Msg.MaxMembers,
	)

	id, err := s.engine.CreateGroup(ctx, caller, req.Msg.Name, req.Msg.ContributionAmount, req.Msg.CycleDuration, req.Msg.MaxMembers)
	if err != nil {
		s.logger.Error("CreateGroup failed", "caller", caller, "error", err)
		return nil, toConnectError(err)
	}

	group, err := s.engine.GetGroup(ctx, id)
	if err != nil {
		s.logger.Error("CreateGroup failed", "group_id", id, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Group created", "group_id", id, "admin", caller)
	return connect.NewResponse(&CreateGroupResponse{GroupID: id, Group: toGroup(group)}), nil
}

// JoinGroup adds the caller to a forming group.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GroupResponse], error) {
	caller := middleware.GetPrincipal(ctx)
	s.logger.Info("JoinGroup request received", "group_id", req.Msg.GroupID, "caller", caller)

	if err := s.engine.JoinGroup(ctx, caller, req.Msg.GroupID); err != nil {
		s.logger.Error("JoinGroup failed", "group_id", req.Msg.GroupID, "caller", caller, "error", err)
		return nil, toConnectError(err)
	}
	return s.groupResponse(ctx, req.Msg.GroupID)
}

// ActivateGroup starts the rotation of a forming group.
func (s *GroupService) ActivateGroup(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GroupResponse], error) {
	caller := middleware.GetPrincipal(ctx)
	s.logger.Info("ActivateGroup request received", "group_id", req.Msg.GroupID, "caller", caller)

	if err := s.engine.ActivateGroup(ctx, caller, req.Msg.GroupID); err != nil {
		s.logger.Error("ActivateGroup failed", "group_id", req.Msg.GroupID, "caller", caller, "error", err)
		return nil, toConnectError(err)
	}
	return s.groupResponse(ctx, req.Msg.GroupID)
}

// Contribute pays the caller's contribution for the current cycle.
func (s *GroupService) Contribute(ctx context.Context, req *connect.Request[ContributeRequest]) (*connect.Response[GroupResponse], error) {
	caller := middleware.GetPrincipal(ctx)
	s.logger.Info("Contribute request received",
		"group_id", req.Msg.GroupID,
		"caller", caller,
		"amount", req.Msg.Amount,
	)

	if err := s.engine.Contribute(ctx, caller, req.Msg.GroupID, req.Msg.Amount); err != nil {
		s.logger.Error("Contribute failed", "group_id", req.Msg.GroupID, "caller", caller, "error", err)
		return nil, toConnectError(err)
	}
	return s.groupResponse(ctx, req.Msg.GroupID)
}

// RunPayoutCycle pays the pool to the next member in the rotation.
func (s *GroupService) RunPayoutCycle(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[RunPayoutCycleResponse], error) {
	caller := middleware.GetPrincipal(ctx)
	s.logger.Info("RunPayoutCycle request received", "group_id", req.Msg.GroupID, "caller", caller)

	record, err := s.engine.RunPayoutCycle(ctx, caller, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("RunPayoutCycle failed", "group_id", req.Msg.GroupID, "caller", caller, "error", err)
		return nil, toConnectError(err)
	}

	group, err := s.engine.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Payout completed",
		"group_id", record.GroupID,
		"cycle", record.CycleIndex,
		"recipient", record.Recipient,
		"amount", record.Amount,
	)
	return connect.NewResponse(&RunPayoutCycleResponse{Payout: record, Group: toGroup(group)}), nil
}

// CancelGroup refunds the current cycle and cancels the group.
func (s *GroupService) CancelGroup(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GroupResponse], error) {
	caller := middleware.GetPrincipal(ctx)
	s.logger.Info("CancelGroup request received", "group_id", req.Msg.GroupID, "caller", caller)

	if err := s.engine.CancelGroup(ctx, caller, req.Msg.GroupID); err != nil {
		s.logger.Error("CancelGroup failed", "group_id", req.Msg.GroupID, "caller", caller, "error", err)
		return nil, toConnectError(err)
	}
	return s.groupResponse(ctx, req.Msg.GroupID)
}

// GetGroup returns one group.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GroupResponse], error) {
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupID)
	return s.groupResponse(ctx, req.Msg.GroupID)
}

// IsGroupActive reports whether the group accepts contributions and payouts.
func (s *GroupService) IsGroupActive(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[IsGroupActiveResponse], error) {
	s.logger.Info("IsGroupActive request received", "group_id", req.Msg.GroupID)

	active, err := s.engine.IsGroupActive(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("IsGroupActive failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&IsGroupActiveResponse{Active: active}), nil
}

// GetTotalGroupsCreated returns the group counter.
func (s *GroupService) GetTotalGroupsCreated(ctx context.Context, _ *connect.Request[GetTotalGroupsCreatedRequest]) (*connect.Response[GetTotalGroupsCreatedResponse], error) {
	total, err := s.engine.GetTotalGroupsCreated(ctx)
	if err != nil {
		s.logger.Error("GetTotalGroupsCreated failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetTotalGroupsCreatedResponse{Total: total}), nil
}

// ListGroups returns groups, optionally filtered by status.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	s.logger.Info("ListGroups request received", "statuses", req.Msg.Statuses)

	statuses := make([]models.GroupStatus, 0, len(req.Msg.Statuses))
	for _, label := range req.Msg.Statuses {
		status, ok := models.ParseStatus(label)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown status %q", label))
		}
		statuses = append(statuses, status)
	}

	groups, err := s.engine.ListGroups(ctx, statuses...)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}

	s.logger.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&ListGroupsResponse{Groups: out}), nil
}

// ListMembers returns the members of a group in rotation order.
func (s *GroupService) ListMembers(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[ListMembersResponse], error) {
	members, err := s.engine.ListMembers(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListMembersResponse{Members: members}), nil
}

// ListPayouts returns the payout history of a group.
func (s *GroupService) ListPayouts(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[ListPayoutsResponse], error) {
	payouts, err := s.engine.ListPayouts(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListPayouts failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListPayoutsResponse{Payouts: payouts}), nil
}

// GetPayout returns the payout of one cycle.
func (s *GroupService) GetPayout(ctx context.Context, req *connect.Request[CycleRequest]) (*connect.Response[GetPayoutResponse], error) {
	payout, err := s.engine.GetPayout(ctx, req.Msg.GroupID, req.Msg.Cycle)
	if err != nil {
		s.logger.Warn("GetPayout failed", "group_id", req.Msg.GroupID, "cycle", req.Msg.Cycle, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetPayoutResponse{Payout: payout}), nil
}

// ListContributions returns the contributions of one cycle.
func (s *GroupService) ListContributions(ctx context.Context, req *connect.Request[CycleRequest]) (*connect.Response[ListContributionsResponse], error) {
	contributions, err := s.engine.ListContributions(ctx, req.Msg.GroupID, req.Msg.Cycle)
	if err != nil {
		s.logger.Error("ListContributions failed", "group_id", req.Msg.GroupID, "cycle", req.Msg.Cycle, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListContributionsResponse{Contributions: contributions}), nil
}

// GetSchedule returns the payout rotation of a group.
func (s *GroupService) GetSchedule(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GetScheduleResponse], error) {
	slots, err := s.engine.Schedule(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("GetSchedule failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetScheduleResponse{Slots: slots}), nil
}

// GetStandings returns each member's net position in the rotation.
func (s *GroupService) GetStandings(ctx context.Context, req *connect.Request[GroupRequest]) (*connect.Response[GetStandingsResponse], error) {
	standings, err := s.engine.Standings(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("GetStandings failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetStandingsResponse{Standings: standings}), nil
}

func (s *GroupService) groupResponse(ctx context.Context, groupID uint64) (*connect.Response[GroupResponse], error) {
	group, err := s.engine.GetGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("GetGroup failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GroupResponse{Group: toGroup(group)}), nil
}
