package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// WithToken makes every call of a client carry token as its bearer
// credential.
func WithToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}))
}

// call runs a unary call and converts domain error details back into
// *apperrors.Error.
func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], req *Req) (*Res, error) {
	resp, err := c.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, FromConnectError(err)
	}
	return resp.Msg, nil
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// GroupServiceClient is a typed client for GroupService.
type GroupServiceClient struct {
	createGroup           *connect.Client[CreateGroupRequest, CreateGroupResponse]
	joinGroup             *connect.Client[GroupRequest, GroupResponse]
	activateGroup         *connect.Client[GroupRequest, GroupResponse]
	getGroup              *connect.Client[GroupRequest, GroupResponse]
	isGroupActive         *connect.Client[GroupRequest, IsGroupActiveResponse]
	getTotalGroupsCreated *connect.Client[GetTotalGroupsCreatedRequest, GetTotalGroupsCreatedResponse]
	contribute            *connect.Client[ContributeRequest, GroupResponse]
	runPayoutCycle        *connect.Client[GroupRequest, RunPayoutCycleResponse]
	cancelGroup           *connect.Client[GroupRequest, GroupResponse]
	listGroups            *connect.Client[ListGroupsRequest, ListGroupsResponse]
	listMembers           *connect.Client[GroupRequest, ListMembersResponse]
	listPayouts           *connect.Client[GroupRequest, ListPayoutsResponse]
	getPayout             *connect.Client[CycleRequest, GetPayoutResponse]
	listContributions     *connect.Client[CycleRequest, ListContributionsResponse]
	getSchedule           *connect.Client[GroupRequest, GetScheduleResponse]
	getStandings          *connect.Client[GroupRequest, GetStandingsResponse]
}

// NewGroupServiceClient creates a client for the GroupService at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &GroupServiceClient{
		createGroup:           newClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		joinGroup:             newClient[GroupRequest, GroupResponse](httpClient, baseURL, GroupServiceJoinGroupProcedure, opts),
		activateGroup:         newClient[GroupRequest, GroupResponse](httpClient, baseURL, GroupServiceActivateGroupProcedure, opts),
		getGroup:              newClient[GroupRequest, GroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		isGroupActive:         newClient[GroupRequest, IsGroupActiveResponse](httpClient, baseURL, GroupServiceIsGroupActiveProcedure, opts),
		getTotalGroupsCreated: newClient[GetTotalGroupsCreatedRequest, GetTotalGroupsCreatedResponse](httpClient, baseURL, GroupServiceGetTotalGroupsCreatedProcedure, opts),
		contribute:            newClient[ContributeRequest, GroupResponse](httpClient, baseURL, GroupServiceContributeProcedure, opts),
		runPayoutCycle:        newClient[GroupRequest, RunPayoutCycleResponse](httpClient, baseURL, GroupServiceRunPayoutCycleProcedure, opts),
		cancelGroup:           newClient[GroupRequest, GroupResponse](httpClient, baseURL, GroupServiceCancelGroupProcedure, opts),
		listGroups:            newClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		listMembers:           newClient[GroupRequest, ListMembersResponse](httpClient, baseURL, GroupServiceListMembersProcedure, opts),
		listPayouts:           newClient[GroupRequest, ListPayoutsResponse](httpClient, baseURL, GroupServiceListPayoutsProcedure, opts),
		getPayout:             newClient[CycleRequest, GetPayoutResponse](httpClient, baseURL, GroupServiceGetPayoutProcedure, opts),
		listContributions:     newClient[CycleRequest, ListContributionsResponse](httpClient, baseURL, GroupServiceListContributionsProcedure, opts),
		getSchedule:           newClient[GroupRequest, GetScheduleResponse](httpClient, baseURL, GroupServiceGetScheduleProcedure, opts),
		getStandings:          newClient[GroupRequest, GetStandingsResponse](httpClient, baseURL, GroupServiceGetStandingsProcedure, opts),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*CreateGroupResponse, error) {
	return call(ctx, c.createGroup, req)
}

func (c *GroupServiceClient) JoinGroup(ctx context.Context, groupID uint64) (*GroupResponse, error) {
	return call(ctx, c.joinGroup, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) ActivateGroup(ctx context.Context, groupID uint64) (*GroupResponse, error) {
	return call(ctx, c.activateGroup, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, groupID uint64) (*GroupResponse, error) {
	return call(ctx, c.getGroup, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) IsGroupActive(ctx context.Context, groupID uint64) (*IsGroupActiveResponse, error) {
	return call(ctx, c.isGroupActive, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) GetTotalGroupsCreated(ctx context.Context) (*GetTotalGroupsCreatedResponse, error) {
	return call(ctx, c.getTotalGroupsCreated, &GetTotalGroupsCreatedRequest{})
}

func (c *GroupServiceClient) Contribute(ctx context.Context, groupID uint64, amount int64) (*GroupResponse, error) {
	return call(ctx, c.contribute, &ContributeRequest{GroupID: groupID, Amount: amount})
}

func (c *GroupServiceClient) RunPayoutCycle(ctx context.Context, groupID uint64) (*RunPayoutCycleResponse, error) {
	return call(ctx, c.runPayoutCycle, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) CancelGroup(ctx context.Context, groupID uint64) (*GroupResponse, error) {
	return call(ctx, c.cancelGroup, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, statuses ...string) (*ListGroupsResponse, error) {
	return call(ctx, c.listGroups, &ListGroupsRequest{Statuses: statuses})
}

func (c *GroupServiceClient) ListMembers(ctx context.Context, groupID uint64) (*ListMembersResponse, error) {
	return call(ctx, c.listMembers, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) ListPayouts(ctx context.Context, groupID uint64) (*ListPayoutsResponse, error) {
	return call(ctx, c.listPayouts, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) GetPayout(ctx context.Context, groupID uint64, cycle uint32) (*GetPayoutResponse, error) {
	return call(ctx, c.getPayout, &CycleRequest{GroupID: groupID, Cycle: cycle})
}

func (c *GroupServiceClient) ListContributions(ctx context.Context, groupID uint64, cycle uint32) (*ListContributionsResponse, error) {
	return call(ctx, c.listContributions, &CycleRequest{GroupID: groupID, Cycle: cycle})
}

func (c *GroupServiceClient) GetSchedule(ctx context.Context, groupID uint64) (*GetScheduleResponse, error) {
	return call(ctx, c.getSchedule, &GroupRequest{GroupID: groupID})
}

func (c *GroupServiceClient) GetStandings(ctx context.Context, groupID uint64) (*GetStandingsResponse, error) {
	return call(ctx, c.getStandings, &GroupRequest{GroupID: groupID})
}

// AuthServiceClient is a typed client for AuthService.
type AuthServiceClient struct {
	register *connect.Client[RegisterRequest, AuthResponse]
	login    *connect.Client[LoginRequest, AuthResponse]
}

// NewAuthServiceClient creates a client for the AuthService at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &AuthServiceClient{
		register: newClient[RegisterRequest, AuthResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:    newClient[LoginRequest, AuthResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, address, password string) (*AuthResponse, error) {
	return call(ctx, c.register, &RegisterRequest{Address: address, Password: password})
}

func (c *AuthServiceClient) Login(ctx context.Context, address, password string) (*AuthResponse, error) {
	return call(ctx, c.login, &LoginRequest{Address: address, Password: password})
}
