package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "settleup.v1.GroupService"

// Procedure paths of the GroupService.
const (
	GroupServiceCreateGroupProcedure = "/settleup.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure    = "/settleup.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure  = "/settleup.v1.GroupService/ListGroups"
	GroupServiceAddMemberProcedure   = "/settleup.v1.GroupService/AddMember"
	GroupServiceDeleteGroupProcedure = "/settleup.v1.GroupService/DeleteGroup"
)

// GroupServiceHandler is implemented by the server side of the service.
// GroupService manages groups and their members.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for svc. It returns the path to
// mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
}

// NewGroupServiceClient returns a client for the service at baseURL
// (for example, http://localhost:8080).
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	return &groupServiceClient{
		createGroup: newClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		getGroup:    newClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		listGroups:  newClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		addMember:   newClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL, GroupServiceAddMemberProcedure, opts),
		deleteGroup: newClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL, GroupServiceDeleteGroupProcedure, opts),
	}
}

type groupServiceClient struct {
	createGroup *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup    *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups  *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMember   *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	deleteGroup *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}
